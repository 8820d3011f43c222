package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sethvargo/go-retry"

	"github.com/dataranlabs/storefront-backend/pkg/config"
	pkgerrors "github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
	"github.com/dataranlabs/storefront-backend/pkg/types"
)

const (
	storefrontTokenHeader = "X-Storefront-Access-Token"
	adminTokenHeader      = "X-Admin-Access-Token"

	defaultProductPage = 100
	maxOrderResults    = 10
)

var errLoggerRequired = errors.New("commerce logger is required")

// Client wraps the commerce platform's storefront and admin GraphQL
// surfaces with centralized auth, bounded timeouts, retry, and error
// mapping. It is safe for concurrent use.
type Client struct {
	cfg  config.CommerceConfig
	http *http.Client
	logg *logger.Logger

	storefrontURL string
	adminURL      string
}

// NewClient initializes the commerce wrapper. Missing credentials are not
// an error here: an unconfigured client reports so via Configured and its
// calls fail with a typed unavailable error, letting the storefront run
// in catalog-less mode.
func NewClient(cfg config.CommerceConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Client{
		cfg:           cfg,
		http:          &http.Client{Timeout: cfg.RequestTimeout},
		logg:          logg,
		storefrontURL: fmt.Sprintf("https://%s/api/%s/graphql.json", cfg.StoreDomain, cfg.APIVersion),
		adminURL:      fmt.Sprintf("https://%s/admin/api/%s/graphql.json", cfg.StoreDomain, cfg.APIVersion),
	}, nil
}

// Configured reports whether storefront credentials are present.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.Configured()
}

// AdminConfigured reports whether the admin surface (order lookup) is usable.
func (c *Client) AdminConfigured() bool {
	return c != nil && c.cfg.AdminConfigured()
}

// DefaultCurrency returns the configured display currency fallback.
func (c *Client) DefaultCurrency() string {
	if c == nil || c.cfg.DefaultCurrency == "" {
		return "USD"
	}
	return c.cfg.DefaultCurrency
}

// GetProducts fetches the catalog page from the storefront surface.
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	var payload struct {
		Products connection[productNode] `json:"products"`
	}
	err := c.do(ctx, c.storefrontURL, storefrontTokenHeader, c.cfg.StorefrontToken, productsQuery,
		map[string]any{"first": defaultProductPage}, &payload)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(payload.Products.Edges))
	for _, edge := range payload.Products.Edges {
		products = append(products, edge.Node.toProduct())
	}
	return products, nil
}

// GetProductByHandle fetches a single product, or a not-found error.
func (c *Client) GetProductByHandle(ctx context.Context, handle string) (*Product, error) {
	var payload struct {
		Product *productNode `json:"product"`
	}
	err := c.do(ctx, c.storefrontURL, storefrontTokenHeader, c.cfg.StorefrontToken, productByHandleQuery,
		map[string]any{"handle": handle}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product := payload.Product.toProduct()
	return &product, nil
}

// CheckVariantsInventory queries availability for the given variant ids in
// one batched request. Variants unknown upstream are simply absent from
// the result.
func (c *Client) CheckVariantsInventory(ctx context.Context, variantIDs []string) ([]VariantInventory, error) {
	var payload struct {
		Nodes []*inventoryNode `json:"nodes"`
	}
	err := c.do(ctx, c.storefrontURL, storefrontTokenHeader, c.cfg.StorefrontToken, checkVariantsInventoryQuery,
		map[string]any{"ids": variantIDs}, &payload)
	if err != nil {
		return nil, err
	}

	records := make([]VariantInventory, 0, len(payload.Nodes))
	for _, node := range payload.Nodes {
		if node == nil || node.ID == "" {
			continue
		}
		records = append(records, VariantInventory{
			ID:                node.ID,
			AvailableForSale:  node.AvailableForSale,
			QuantityAvailable: node.QuantityAvailable,
			ProductTitle:      node.Product.Title,
			ProductHandle:     node.Product.Handle,
		})
	}
	return records, nil
}

// CreateCheckout opens an upstream checkout session for the given lines
// and returns its redirect URL.
func (c *Client) CreateCheckout(ctx context.Context, lines []CheckoutLine) (*Checkout, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one line")
	}

	cartLines := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		cartLines = append(cartLines, map[string]any{
			"merchandiseId": line.VariantID,
			"quantity":      line.Quantity,
		})
	}

	var payload struct {
		CartCreate struct {
			Cart *struct {
				ID          string `json:"id"`
				CheckoutURL string `json:"checkoutUrl"`
				Cost        struct {
					TotalAmount types.Money `json:"totalAmount"`
				} `json:"cost"`
			} `json:"cart"`
			UserErrors []struct {
				Field   []string `json:"field"`
				Message string   `json:"message"`
			} `json:"userErrors"`
		} `json:"cartCreate"`
	}
	err := c.do(ctx, c.storefrontURL, storefrontTokenHeader, c.cfg.StorefrontToken, createCartMutation,
		map[string]any{"input": map[string]any{"lines": cartLines}}, &payload)
	if err != nil {
		return nil, err
	}

	if len(payload.CartCreate.UserErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, payload.CartCreate.UserErrors[0].Message)
	}
	if payload.CartCreate.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout creation returned no cart")
	}

	return &Checkout{
		ID:         payload.CartCreate.Cart.ID,
		WebURL:     payload.CartCreate.Cart.CheckoutURL,
		TotalPrice: payload.CartCreate.Cart.Cost.TotalAmount,
	}, nil
}

// SearchOrders looks up orders on the admin surface by customer email or
// order number.
func (c *Client) SearchOrders(ctx context.Context, input string, searchType OrderSearchType) ([]Order, error) {
	if !c.AdminConfigured() {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "order tracking is not configured")
	}

	predicate := fmt.Sprintf("email:%s", input)
	if searchType == SearchByOrderNumber {
		predicate = fmt.Sprintf("name:%s", strings.TrimPrefix(input, "#"))
	}

	var payload struct {
		Orders connection[orderNode] `json:"orders"`
	}
	err := c.do(ctx, c.adminURL, adminTokenHeader, c.cfg.AdminToken, ordersSearchQuery,
		map[string]any{"query": predicate, "first": maxOrderResults}, &payload)
	if err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(payload.Orders.Edges))
	for _, edge := range payload.Orders.Edges {
		orders = append(orders, edge.Node.toOrder())
	}
	return orders, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// transientStatus reports whether an upstream HTTP status is worth retrying.
func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func (c *Client) do(ctx context.Context, endpoint, tokenHeader, token, query string, variables map[string]any, out any) error {
	if !c.Configured() {
		return pkgerrors.New(pkgerrors.CodeUnavailable, "commerce platform is not configured")
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode upstream request")
	}

	backoff := retry.WithMaxRetries(uint64(c.cfg.RetryMaxAttempts), retry.NewFibonacci(c.cfg.RetryBaseDelay))

	var parsed graphqlResponse
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(tokenHeader, token)

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if transientStatus(resp.StatusCode) {
			io.Copy(io.Discard, resp.Body)
			return retry.RetryableError(fmt.Errorf("upstream status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("upstream status %d", resp.StatusCode)
		}

		parsed = graphqlResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("decode upstream response: %w", err)
		}
		return nil
	})
	if err != nil {
		c.logg.Error(ctx, "commerce request failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commerce platform call failed")
	}

	if len(parsed.Errors) > 0 {
		err := fmt.Errorf("upstream error: %s", parsed.Errors[0].Message)
		c.logg.Error(ctx, "commerce request rejected", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commerce platform rejected request")
	}

	if out != nil && len(parsed.Data) > 0 {
		if err := json.Unmarshal(parsed.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upstream payload")
		}
	}
	return nil
}
