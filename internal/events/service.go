package events

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/dataranlabs/storefront-backend/pkg/cache"
	"github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/eventsapi"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

// TicketType is a purchasable ticket tier on an event.
type TicketType struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Price            float64 `json:"price"`
	Currency         string `json:"currency"`
	LimitPerCheckout int    `json:"limitPerCheckout,omitempty"`
	Remaining        *int   `json:"remaining,omitempty"`
	Unlimited        bool   `json:"unlimited"`
}

// EventView is the storefront-facing event shape.
type EventView struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Slug                string       `json:"slug,omitempty"`
	Description         string       `json:"description,omitempty"`
	Status              string       `json:"status"`
	StartDate           string       `json:"startDate"`
	EndDate             string       `json:"endDate,omitempty"`
	TimeZone            string       `json:"timeZone,omitempty"`
	LocationName        string       `json:"locationName,omitempty"`
	LocationAddress     string       `json:"locationAddress,omitempty"`
	ImageURL            string       `json:"imageUrl,omitempty"`
	PageURL             string       `json:"pageUrl,omitempty"`
	RegistrationStatus  string       `json:"registrationStatus,omitempty"`
	Tickets             []TicketType `json:"tickets,omitempty"`
	ExternalCheckoutURL string       `json:"externalCheckoutUrl,omitempty"`
}

// Page is one page of event views with upstream paging metadata.
type Page struct {
	Events     []EventView `json:"events"`
	TotalCount int         `json:"totalCount"`
	HasNext    bool        `json:"hasNext"`
}

// ListOptions filter the event listing.
type ListOptions struct {
	Limit    int
	Offset   int
	Statuses []string
}

type eventLister interface {
	ListEvents(ctx context.Context, opts eventsapi.ListOptions) (*eventsapi.EventList, error)
	GetEvent(ctx context.Context, eventID string) (*eventsapi.Event, error)
	SiteURL() string
}

// Service serves event listings from cache, transforming the platform's
// wire shape into storefront view models.
type Service interface {
	List(ctx context.Context, opts ListOptions) (*Page, bool, error)
	Detail(ctx context.Context, eventID string) (*EventView, bool, error)
}

type service struct {
	lister eventLister
	cache  cache.Namespace
	group  singleflight.Group
	logg   *logger.Logger
}

func NewService(lister eventLister, ns cache.Namespace, logg *logger.Logger) (Service, error) {
	if lister == nil {
		return nil, fmt.Errorf("event lister required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{lister: lister, cache: ns, logg: logg}, nil
}

// List returns one page of events. Pages are cached per filter/paging
// combination; concurrent misses collapse into a single upstream call.
func (s *service) List(ctx context.Context, opts ListOptions) (*Page, bool, error) {
	key := s.cache.Key("list", opts.Statuses, opts.Limit, opts.Offset)
	if page, ok := cache.Value[*Page](s.cache, key); ok {
		return page, true, nil
	}

	fetched, err, _ := s.group.Do(key, func() (any, error) {
		if page, ok := cache.Value[*Page](s.cache, key); ok {
			return page, nil
		}
		list, err := s.lister.ListEvents(ctx, eventsapi.ListOptions{
			Limit:    opts.Limit,
			Offset:   opts.Offset,
			Statuses: opts.Statuses,
		})
		if err != nil {
			return nil, err
		}
		page := &Page{
			Events:     make([]EventView, 0, len(list.Events)),
			TotalCount: list.TotalCount,
			HasNext:    list.HasNext,
		}
		for _, event := range list.Events {
			page.Events = append(page.Events, transform(event, s.lister.SiteURL()))
		}
		s.cache.Set(key, page)
		return page, nil
	})
	if err != nil {
		return nil, false, err
	}
	return fetched.(*Page), false, nil
}

// Detail returns one event by id.
func (s *service) Detail(ctx context.Context, eventID string) (*EventView, bool, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, false, errors.New(errors.CodeValidation, "event id is required")
	}

	key := s.cache.Key("detail", eventID)
	if view, ok := cache.Value[*EventView](s.cache, key); ok {
		return view, true, nil
	}

	fetched, err, _ := s.group.Do(key, func() (any, error) {
		if view, ok := cache.Value[*EventView](s.cache, key); ok {
			return view, nil
		}
		event, err := s.lister.GetEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		view := transform(*event, s.lister.SiteURL())
		s.cache.Set(key, &view)
		return &view, nil
	})
	if err != nil {
		return nil, false, err
	}
	return fetched.(*EventView), false, nil
}

// transform flattens the platform event into the storefront view model.
func transform(event eventsapi.Event, siteURL string) EventView {
	view := EventView{
		ID:          event.EventID(),
		Title:       event.Title,
		Slug:        event.Slug,
		Description: event.PlainDescription(),
		Status:      statusLabel(event.Status),
		StartDate:   event.DateAndTime.StartDate,
		EndDate:     event.DateAndTime.EndDate,
		TimeZone:    event.DateAndTime.TimeZoneID,
		ImageURL:    event.MainImage,
		PageURL:     pageURL(event, siteURL),
	}

	if event.Location != nil {
		view.LocationName = event.Location.Name
		if event.Location.Address != nil {
			view.LocationAddress = event.Location.Address.Formatted
		}
	}

	if event.Registration != nil {
		view.RegistrationStatus = statusLabel(event.Registration.Status)
		if event.Registration.External != nil {
			view.ExternalCheckoutURL = event.Registration.External.CheckoutURL
		}
		for _, def := range event.Registration.TicketDefinitions {
			ticket := TicketType{
				ID:               def.ID,
				Name:             def.Name,
				Price:            def.Price.Value,
				Currency:         def.Price.Currency,
				LimitPerCheckout: def.LimitPerCheckout,
			}
			if def.Inventory != nil {
				ticket.Unlimited = def.Inventory.Unlimited
				if !def.Inventory.Unlimited {
					remaining := def.Inventory.Quantity
					ticket.Remaining = &remaining
				}
			}
			view.Tickets = append(view.Tickets, ticket)
		}
	}

	return view
}

// pageURL prefers the platform-provided page link, then builds one from
// the configured site base and slug.
func pageURL(event eventsapi.Event, siteURL string) string {
	if event.EventPageURL != "" {
		return event.EventPageURL
	}
	if siteURL == "" || event.Slug == "" {
		return ""
	}
	return strings.TrimRight(siteURL, "/") + "/event-details/" + event.Slug
}

// statusLabel normalizes the platform's uppercase status enums into the
// labels the storefront renders.
func statusLabel(status string) string {
	switch strings.ToUpper(status) {
	case "UPCOMING", "SCHEDULED":
		return "upcoming"
	case "STARTED":
		return "live"
	case "ENDED":
		return "past"
	case "CANCELED", "CANCELLED":
		return "cancelled"
	default:
		return strings.ToLower(status)
	}
}
