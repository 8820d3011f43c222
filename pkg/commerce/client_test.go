package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataranlabs/storefront-backend/pkg/config"
	pkgerrors "github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

func testConfig() config.CommerceConfig {
	return config.CommerceConfig{
		StoreDomain:      "example.test",
		APIVersion:       "2024-10",
		StorefrontToken:  "storefront-token",
		AdminToken:       "admin-token",
		DefaultCurrency:  "USD",
		RequestTimeout:   2 * time.Second,
		RetryMaxAttempts: 2,
		RetryBaseDelay:   time.Millisecond,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(), logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	client.storefrontURL = server.URL
	client.adminURL = server.URL
	return client, server
}

func writeGraphQL(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"data": data})
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func TestCheckVariantsInventorySkipsUnknownNodes(t *testing.T) {
	qty := 3
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "storefront-token", r.Header.Get(storefrontTokenHeader))
		writeGraphQL(t, w, map[string]any{
			"nodes": []any{
				map[string]any{
					"id":                "gid://variant/1",
					"availableForSale":  true,
					"quantityAvailable": qty,
					"product":           map[string]any{"title": "Tee", "handle": "tee"},
				},
				nil, // deleted variant: platform returns null for unknown ids
			},
		})
	})

	records, err := client.CheckVariantsInventory(context.Background(), []string{"gid://variant/1", "gid://variant/2"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "gid://variant/1", records[0].ID)
	assert.Equal(t, "Tee", records[0].ProductTitle)
	require.NotNil(t, records[0].QuantityAvailable)
	assert.Equal(t, 3, *records[0].QuantityAvailable)
}

func TestCreateCheckoutReturnsRedirectURL(t *testing.T) {
	var captured graphqlRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		writeGraphQL(t, w, map[string]any{
			"cartCreate": map[string]any{
				"cart": map[string]any{
					"id":          "gid://cart/1",
					"checkoutUrl": "https://example.test/checkout/1",
					"cost": map[string]any{
						"totalAmount": map[string]any{"amount": "55.50", "currencyCode": "USD"},
					},
				},
				"userErrors": []any{},
			},
		})
	})

	checkout, err := client.CreateCheckout(context.Background(), []CheckoutLine{
		{VariantID: "gid://variant/1", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/checkout/1", checkout.WebURL)
	assert.Equal(t, "55.50", checkout.TotalPrice.Amount)

	input, ok := captured.Variables["input"].(map[string]any)
	require.True(t, ok)
	lines, ok := input["lines"].([]any)
	require.True(t, ok)
	assert.Len(t, lines, 1)
}

func TestCreateCheckoutSurfacesUserErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeGraphQL(t, w, map[string]any{
			"cartCreate": map[string]any{
				"cart": nil,
				"userErrors": []any{
					map[string]any{"field": []string{"lines"}, "message": "variant is sold out"},
				},
			},
		})
	})

	_, err := client.CreateCheckout(context.Background(), []CheckoutLine{{VariantID: "v", Quantity: 1}})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "variant is sold out", typed.Message())
}

func TestDoRetriesTransientStatus(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeGraphQL(t, w, map[string]any{"nodes": []any{}})
	})

	_, err := client.CheckVariantsInventory(context.Background(), []string{"gid://variant/1"})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDoMapsGraphQLErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"throttled query"}]}`))
	})

	_, err := client.GetProducts(context.Background())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestUnconfiguredClientFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.StorefrontToken = ""
	client, err := NewClient(cfg, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	assert.False(t, client.Configured())

	_, err = client.GetProducts(context.Background())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnavailable, typed.Code())
}

func TestSearchOrdersBuildsPredicate(t *testing.T) {
	var captured graphqlRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.Equal(t, "admin-token", r.Header.Get(adminTokenHeader))
		writeGraphQL(t, w, map[string]any{"orders": map[string]any{"edges": []any{}}})
	})

	_, err := client.SearchOrders(context.Background(), "#1001", SearchByOrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "name:1001", captured.Variables["query"])

	_, err = client.SearchOrders(context.Background(), "a@b.test", SearchByEmail)
	require.NoError(t, err)
	assert.Equal(t, "email:a@b.test", captured.Variables["query"])
}
