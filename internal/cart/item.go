package cart

import (
	"fmt"
	"strings"

	"github.com/dataranlabs/storefront-backend/pkg/types"
)

// Legacy price table for catalog entries that predate platform pricing.
const (
	legacyDefaultPrice = 20.0
	legacyGrayPrice    = 40.0
)

// ProductRef is the immutable product snapshot carried on a line item.
type ProductRef struct {
	ID     string       `json:"id"`
	Handle string       `json:"handle,omitempty"`
	Title  string       `json:"title"`
	Price  *types.Money `json:"price,omitempty"`
	Image  string       `json:"image,omitempty"`
}

// VariantRef is the chosen variant snapshot, when the product has one.
type VariantRef struct {
	ID    string      `json:"id"`
	Title string      `json:"title,omitempty"`
	Price types.Money `json:"price"`
}

// LineItem is one entry in a cart. Key identifies the line for merging
// and mutation: product+variant when a variant was chosen, product+size
// otherwise.
type LineItem struct {
	Key      string      `json:"key"`
	Product  ProductRef  `json:"product"`
	Variant  *VariantRef `json:"variant,omitempty"`
	Size     int         `json:"size,omitempty"`
	Quantity int         `json:"quantity"`
}

// lineKey derives the composite identity of a line.
func lineKey(product ProductRef, variant *VariantRef, size int) string {
	if variant != nil {
		return fmt.Sprintf("%s-%s", product.ID, variant.ID)
	}
	return fmt.Sprintf("%s-%d", product.ID, size)
}

// UnitPrice resolves the price of one unit: variant price first, then
// product price, then the legacy table keyed off the product id.
func (li LineItem) UnitPrice() float64 {
	if li.Variant != nil {
		return li.Variant.Price.Float()
	}
	if li.Product.Price != nil {
		return li.Product.Price.Float()
	}
	if strings.HasPrefix(li.Product.ID, "sk") && strings.Contains(li.Product.ID, "gray") {
		return legacyGrayPrice
	}
	return legacyDefaultPrice
}

// Currency returns the line's currency code, empty when the line has no
// platform price.
func (li LineItem) Currency() string {
	if li.Variant != nil {
		return li.Variant.Price.CurrencyCode
	}
	if li.Product.Price != nil {
		return li.Product.Price.CurrencyCode
	}
	return ""
}
