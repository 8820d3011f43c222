package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/dataranlabs/storefront-backend/pkg/commerce"
	"github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
	"github.com/dataranlabs/storefront-backend/pkg/types"
)

// TrackingView is one carrier tracking reference on a shipment.
type TrackingView struct {
	Number  string `json:"number,omitempty"`
	URL     string `json:"url,omitempty"`
	Carrier string `json:"carrier,omitempty"`
}

// LineView is one purchased line on an order.
type LineView struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// OrderView is the customer-facing order summary returned by a lookup.
type OrderView struct {
	OrderNumber       string         `json:"orderNumber"`
	PlacedAt          string         `json:"placedAt"`
	PaymentStatus     string         `json:"paymentStatus"`
	FulfillmentStatus string         `json:"fulfillmentStatus"`
	Total             string         `json:"total"`
	Items             []LineView     `json:"items"`
	Tracking          []TrackingView `json:"tracking,omitempty"`
}

type orderSearcher interface {
	SearchOrders(ctx context.Context, input string, searchType commerce.OrderSearchType) ([]commerce.Order, error)
}

// Service looks up orders on the commerce platform's admin surface.
type Service interface {
	Lookup(ctx context.Context, input string, searchType commerce.OrderSearchType) ([]OrderView, error)
}

type service struct {
	searcher orderSearcher
	logg     *logger.Logger
}

func NewService(searcher orderSearcher, logg *logger.Logger) (Service, error) {
	if searcher == nil {
		return nil, fmt.Errorf("order searcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{searcher: searcher, logg: logg}, nil
}

// Lookup validates the query and returns matching orders as the platform
// orders them. Results are never cached: order status is the one thing a
// customer expects to be live.
func (s *service) Lookup(ctx context.Context, input string, searchType commerce.OrderSearchType) ([]OrderView, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New(errors.CodeValidation, "lookup value is required")
	}

	switch searchType {
	case commerce.SearchByEmail:
		if !strings.Contains(input, "@") {
			return nil, errors.New(errors.CodeValidation, "lookup value must be an email address")
		}
		input = strings.ToLower(input)
	case commerce.SearchByOrderNumber:
	default:
		return nil, errors.New(errors.CodeValidation, "search type must be email or order")
	}

	found, err := s.searcher.SearchOrders(ctx, input, searchType)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(found))
	for _, order := range found {
		views = append(views, toView(order))
	}
	return views, nil
}

func toView(order commerce.Order) OrderView {
	view := OrderView{
		OrderNumber:       order.Name,
		PlacedAt:          order.CreatedAt,
		PaymentStatus:     statusLabel(order.FinancialStatus),
		FulfillmentStatus: statusLabel(order.FulfillmentStatus),
		Total:             types.FormatMoney(order.TotalPrice.CurrencyCode, order.TotalPrice.Float()),
		Items:             make([]LineView, 0, len(order.LineItems)),
	}
	for _, line := range order.LineItems {
		view.Items = append(view.Items, LineView{Title: line.Title, Quantity: line.Quantity})
	}
	for _, fulfillment := range order.Fulfillments {
		for _, info := range fulfillment.TrackingInfo {
			view.Tracking = append(view.Tracking, TrackingView{
				Number:  info.Number,
				URL:     info.URL,
				Carrier: info.Company,
			})
		}
	}
	return view
}

// statusLabel turns platform enums like PARTIALLY_FULFILLED into a
// lowercase human label.
func statusLabel(status string) string {
	if status == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(status, "_", " "))
}
