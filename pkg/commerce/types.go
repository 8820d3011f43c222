package commerce

import "github.com/dataranlabs/storefront-backend/pkg/types"

// Image is a hosted product or variant image.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// SelectedOption is one chosen option value on a variant (e.g. Size: M).
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable configuration of a product with its own price
// and stock count.
type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Price             types.Money      `json:"price"`
	CompareAtPrice    *types.Money     `json:"compareAtPrice,omitempty"`
	AvailableForSale  bool             `json:"availableForSale"`
	QuantityAvailable *int             `json:"quantityAvailable,omitempty"`
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
	Image             *Image           `json:"image,omitempty"`
}

// ProductOption describes a configurable axis (Size, Color) and its values.
type ProductOption struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Collection groups products on the upstream platform.
type Collection struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// PriceRange carries the min/max variant prices of a product.
type PriceRange struct {
	MinVariantPrice types.Money `json:"minVariantPrice"`
	MaxVariantPrice types.Money `json:"maxVariantPrice"`
}

// Product is the upstream catalog entry.
type Product struct {
	ID               string          `json:"id"`
	Handle           string          `json:"handle"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Vendor           string          `json:"vendor"`
	ProductType      string          `json:"productType"`
	Tags             []string        `json:"tags"`
	Collections      []Collection    `json:"collections,omitempty"`
	Price            types.Money     `json:"price"`
	PriceRange       PriceRange      `json:"priceRange"`
	Image            Image           `json:"image"`
	Images           []Image         `json:"images"`
	Options          []ProductOption `json:"options"`
	Variants         []Variant       `json:"variants"`
	AvailableForSale bool            `json:"availableForSale"`
}

// CheckoutLine pairs a variant with a quantity for checkout creation.
type CheckoutLine struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// Checkout is the upstream checkout session handed back to the buyer.
type Checkout struct {
	ID         string      `json:"id"`
	WebURL     string      `json:"webUrl"`
	TotalPrice types.Money `json:"totalPrice"`
}

// VariantInventory is the per-variant availability record returned by the
// batched inventory query.
type VariantInventory struct {
	ID                string `json:"id"`
	AvailableForSale  bool   `json:"availableForSale"`
	QuantityAvailable *int   `json:"quantityAvailable"`
	ProductTitle      string `json:"productTitle,omitempty"`
	ProductHandle     string `json:"productHandle,omitempty"`
}

// OrderLineItem is a purchased line on a tracked order.
type OrderLineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// TrackingInfo carries carrier tracking data for a fulfillment.
type TrackingInfo struct {
	Number  string `json:"number,omitempty"`
	URL     string `json:"url,omitempty"`
	Company string `json:"company,omitempty"`
}

// Fulfillment is one shipment on an order.
type Fulfillment struct {
	DisplayStatus string         `json:"displayStatus,omitempty"`
	TrackingInfo  []TrackingInfo `json:"trackingInfo,omitempty"`
}

// Order is the admin-surface order record used for tracking lookups.
type Order struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	CreatedAt         string          `json:"createdAt"`
	UpdatedAt         string          `json:"updatedAt"`
	FinancialStatus   string          `json:"financialStatus"`
	FulfillmentStatus string          `json:"fulfillmentStatus"`
	CustomerName      string          `json:"customerName,omitempty"`
	TotalPrice        types.Money     `json:"totalPrice"`
	Fulfillments      []Fulfillment   `json:"fulfillments,omitempty"`
	LineItems         []OrderLineItem `json:"lineItems"`
}

// OrderSearchType selects the admin order-search predicate.
type OrderSearchType string

const (
	SearchByEmail       OrderSearchType = "email"
	SearchByOrderNumber OrderSearchType = "order"
)
