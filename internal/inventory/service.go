package inventory

import (
	"context"
	"fmt"

	"github.com/dataranlabs/storefront-backend/pkg/cache"
	"github.com/dataranlabs/storefront-backend/pkg/commerce"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

const unknownProductTitle = "Unknown Product"

// Item is one cart line submitted for a stock check.
type Item struct {
	VariantID    string `json:"variantId"`
	Quantity     int    `json:"quantity"`
	ProductTitle string `json:"productTitle,omitempty"`
}

// ItemError describes one variant that cannot be fulfilled as requested.
// AvailableQuantity is nil when the platform does not expose a count
// (e.g. the variant no longer exists).
type ItemError struct {
	VariantID         string `json:"variantId"`
	ProductTitle      string `json:"productTitle"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableQuantity *int   `json:"availableQuantity"`
	AvailableForSale  bool   `json:"availableForSale"`
	Message           string `json:"message"`
}

// CheckResult aggregates the per-variant outcomes of one stock check.
type CheckResult struct {
	HasErrors bool        `json:"hasErrors"`
	Errors    []ItemError `json:"errors"`
}

type variantChecker interface {
	CheckVariantsInventory(ctx context.Context, variantIDs []string) ([]commerce.VariantInventory, error)
}

// Service validates cart quantities against upstream stock levels.
type Service interface {
	CheckCart(ctx context.Context, items []Item) (*CheckResult, bool, error)
}

type service struct {
	checker variantChecker
	cache   cache.Namespace
	logg    *logger.Logger
}

// NewService builds the inventory service. Results are cached briefly:
// stock changes frequently, so the namespace TTL should be short.
func NewService(checker variantChecker, ns cache.Namespace, logg *logger.Logger) (Service, error) {
	if checker == nil {
		return nil, fmt.Errorf("variant checker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{checker: checker, cache: ns, logg: logg}, nil
}

// CheckCart batches every valid item into one upstream query and maps the
// response to per-item errors. The second return reports a cache hit.
func (s *service) CheckCart(ctx context.Context, items []Item) (*CheckResult, bool, error) {
	valid := normalizeItems(items)
	if len(valid) == 0 {
		return &CheckResult{HasErrors: false, Errors: []ItemError{}}, false, nil
	}

	key := s.cache.Key("check", cacheParts(valid))
	if cached, ok := cache.Value[*CheckResult](s.cache, key); ok {
		return cached, true, nil
	}

	variantIDs := make([]string, 0, len(valid))
	for _, item := range valid {
		variantIDs = append(variantIDs, item.VariantID)
	}

	records, err := s.checker.CheckVariantsInventory(ctx, variantIDs)
	if err != nil {
		return nil, false, err
	}

	result := buildResult(valid, records)
	s.cache.Set(key, result)
	return result, false, nil
}

// normalizeItems drops malformed entries and fills the title fallback,
// mirroring what the check endpoint accepts.
func normalizeItems(items []Item) []Item {
	valid := make([]Item, 0, len(items))
	for _, item := range items {
		if item.VariantID == "" || item.Quantity <= 0 {
			continue
		}
		if item.ProductTitle == "" {
			item.ProductTitle = unknownProductTitle
		}
		valid = append(valid, item)
	}
	return valid
}

func cacheParts(items []Item) []string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s:%d", item.VariantID, item.Quantity))
	}
	return parts
}

// buildResult applies the availability rules: a variant absent from the
// response is "not found"; present but not sellable is "unavailable";
// sellable with too little stock is "insufficient", carrying the
// available amount so the caller can offer a one-click quantity fix.
func buildResult(items []Item, records []commerce.VariantInventory) *CheckResult {
	byID := make(map[string]commerce.VariantInventory, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	errs := []ItemError{}
	for _, item := range items {
		record, found := byID[item.VariantID]
		if !found {
			errs = append(errs, ItemError{
				VariantID:         item.VariantID,
				ProductTitle:      item.ProductTitle,
				RequestedQuantity: item.Quantity,
				AvailableQuantity: nil,
				AvailableForSale:  false,
				Message:           "Product variant not found",
			})
			continue
		}

		title := record.ProductTitle
		if title == "" {
			title = item.ProductTitle
		}

		if !record.AvailableForSale {
			errs = append(errs, ItemError{
				VariantID:         item.VariantID,
				ProductTitle:      title,
				RequestedQuantity: item.Quantity,
				AvailableQuantity: record.QuantityAvailable,
				AvailableForSale:  false,
				Message:           "This item is no longer available for sale",
			})
			continue
		}

		if record.QuantityAvailable != nil && *record.QuantityAvailable < item.Quantity {
			available := *record.QuantityAvailable
			noun := "items"
			if available == 1 {
				noun = "item"
			}
			errs = append(errs, ItemError{
				VariantID:         item.VariantID,
				ProductTitle:      title,
				RequestedQuantity: item.Quantity,
				AvailableQuantity: record.QuantityAvailable,
				AvailableForSale:  true,
				Message:           fmt.Sprintf("Only %d %s available, but %d requested", available, noun, item.Quantity),
			})
		}
	}

	return &CheckResult{HasErrors: len(errs) > 0, Errors: errs}
}
