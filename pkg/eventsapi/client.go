package eventsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dataranlabs/storefront-backend/pkg/config"
	pkgerrors "github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

const defaultBaseURL = "https://www.wixapis.com"

var errLoggerRequired = errors.New("events logger is required")

// Client talks to the events platform's REST surface.
type Client struct {
	cfg     config.EventsConfig
	http    *http.Client
	logg    *logger.Logger
	baseURL string
}

// NewClient initializes the events platform wrapper. As with the commerce
// client, missing credentials leave the client constructible but
// unconfigured.
func NewClient(cfg config.EventsConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logg:    logg,
		baseURL: defaultBaseURL,
	}, nil
}

// Configured reports whether platform credentials are present.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.Configured()
}

// SiteURL returns the public site base used to build event page links.
func (c *Client) SiteURL() string {
	if c == nil {
		return ""
	}
	return c.cfg.SiteURL
}

// ListOptions filter the event query.
type ListOptions struct {
	Limit    int
	Offset   int
	Statuses []string
}

// EventList is one page of upstream events.
type EventList struct {
	Events     []Event `json:"events"`
	TotalCount int     `json:"totalCount"`
	HasNext    bool    `json:"hasNext"`
}

// ListEvents queries the platform's event listing endpoint.
func (c *Client) ListEvents(ctx context.Context, opts ListOptions) (*EventList, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	filter := map[string]any{}
	if len(opts.Statuses) > 0 {
		filter["status"] = map[string]any{"$in": opts.Statuses}
	}
	body := map[string]any{
		"query": map[string]any{
			"filter": filter,
			"paging": map[string]any{"limit": limit, "offset": opts.Offset},
		},
	}

	var payload struct {
		Events       []Event `json:"events"`
		PagingMetadata struct {
			Total   int  `json:"total"`
			HasNext bool `json:"hasNext"`
		} `json:"pagingMetadata"`
	}
	if err := c.do(ctx, http.MethodPost, "/events/v3/events/query", body, &payload); err != nil {
		return nil, err
	}

	return &EventList{
		Events:     payload.Events,
		TotalCount: payload.PagingMetadata.Total,
		HasNext:    payload.PagingMetadata.HasNext,
	}, nil
}

// GetEvent fetches one event by id.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	var payload struct {
		Event *Event `json:"event"`
	}
	if err := c.do(ctx, http.MethodGet, "/events/v3/events/"+eventID, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	return payload.Event, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !c.Configured() {
		return pkgerrors.New(pkgerrors.CodeUnavailable, "events platform is not configured")
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode events request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build events request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.ClientID)
	req.Header.Set("wix-account-id", c.cfg.AccountID)
	if c.cfg.SiteID != "" {
		req.Header.Set("wix-site-id", c.cfg.SiteID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logg.Error(ctx, "events request failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "events platform call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("upstream status %d", resp.StatusCode)
		c.logg.Error(ctx, "events request rejected", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "events platform rejected request")
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode events payload")
		}
	}
	return nil
}
