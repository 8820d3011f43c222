package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataranlabs/storefront-backend/pkg/commerce"
	"github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
	"github.com/dataranlabs/storefront-backend/pkg/types"
)

type stubSearcher struct {
	orders    []commerce.Order
	err       error
	lastInput string
	lastType  commerce.OrderSearchType
}

func (s *stubSearcher) SearchOrders(_ context.Context, input string, searchType commerce.OrderSearchType) ([]commerce.Order, error) {
	s.lastInput = input
	s.lastType = searchType
	return s.orders, s.err
}

func newTestService(t *testing.T, searcher *stubSearcher) Service {
	t.Helper()
	svc, err := NewService(searcher, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func TestLookup_ByEmailNormalizesInput(t *testing.T) {
	searcher := &stubSearcher{orders: []commerce.Order{{
		Name:              "#1001",
		CreatedAt:         "2026-08-01T12:00:00Z",
		FinancialStatus:   "PAID",
		FulfillmentStatus: "PARTIALLY_FULFILLED",
		TotalPrice:        types.Money{Amount: "42.50", CurrencyCode: "USD"},
		LineItems:         []commerce.OrderLineItem{{Title: "Alpha Tee", Quantity: 2}},
		Fulfillments: []commerce.Fulfillment{{
			TrackingInfo: []commerce.TrackingInfo{{Number: "1Z999", URL: "https://track.example.com/1Z999", Company: "UPS"}},
		}},
	}}}
	svc := newTestService(t, searcher)

	views, err := svc.Lookup(context.Background(), "  Buyer@Example.COM ", commerce.SearchByEmail)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", searcher.lastInput)

	require.Len(t, views, 1)
	view := views[0]
	assert.Equal(t, "#1001", view.OrderNumber)
	assert.Equal(t, "paid", view.PaymentStatus)
	assert.Equal(t, "partially fulfilled", view.FulfillmentStatus)
	assert.Equal(t, "USD 42.50", view.Total)
	require.Len(t, view.Tracking, 1)
	assert.Equal(t, "UPS", view.Tracking[0].Carrier)
}

func TestLookup_ByOrderNumber(t *testing.T) {
	searcher := &stubSearcher{orders: []commerce.Order{{Name: "#1002"}}}
	svc := newTestService(t, searcher)

	views, err := svc.Lookup(context.Background(), "#1002", commerce.SearchByOrderNumber)
	require.NoError(t, err)
	assert.Equal(t, commerce.SearchByOrderNumber, searcher.lastType)
	require.Len(t, views, 1)
	assert.Equal(t, "unknown", views[0].PaymentStatus)
}

func TestLookup_Validation(t *testing.T) {
	svc := newTestService(t, &stubSearcher{})

	_, err := svc.Lookup(context.Background(), "   ", commerce.SearchByEmail)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())

	_, err = svc.Lookup(context.Background(), "not-an-email", commerce.SearchByEmail)
	typed = errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())

	_, err = svc.Lookup(context.Background(), "x", commerce.OrderSearchType("phone"))
	typed = errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())
}

func TestLookup_AdminUnconfiguredPassesThrough(t *testing.T) {
	searcher := &stubSearcher{err: errors.New(errors.CodeUnavailable, "admin credentials are not configured")}
	svc := newTestService(t, searcher)

	_, err := svc.Lookup(context.Background(), "buyer@example.com", commerce.SearchByEmail)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeUnavailable, typed.Code())
}

func TestLookup_NoMatchesIsEmptyNotError(t *testing.T) {
	svc := newTestService(t, &stubSearcher{orders: []commerce.Order{}})

	views, err := svc.Lookup(context.Background(), "buyer@example.com", commerce.SearchByEmail)
	require.NoError(t, err)
	assert.Empty(t, views)
}
