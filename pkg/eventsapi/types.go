package eventsapi

import "encoding/json"

// Event mirrors the platform's wire shape. Fields the storefront never
// reads are omitted.
type Event struct {
	ID               string           `json:"id"`
	LegacyID         string           `json:"_id,omitempty"`
	Title            string           `json:"title"`
	Slug             string           `json:"slug,omitempty"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	Description      json.RawMessage  `json:"description,omitempty"`
	Status           string           `json:"status"`
	DateAndTime      DateAndTime      `json:"dateAndTimeSettings"`
	Location         *Location        `json:"location,omitempty"`
	Registration     *Registration    `json:"registration,omitempty"`
	MainImage        string           `json:"mainImage,omitempty"`
	EventPageURL     string           `json:"eventPageUrl,omitempty"`
	Created          string           `json:"createdDate,omitempty"`
	Updated          string           `json:"updatedDate,omitempty"`
}

// EventID returns whichever id field the platform populated.
func (e Event) EventID() string {
	if e.ID != "" {
		return e.ID
	}
	return e.LegacyID
}

// PlainDescription resolves the description, which the platform returns
// either as a plain string or as a rich-content object.
func (e Event) PlainDescription() string {
	if len(e.Description) == 0 {
		return e.ShortDescription
	}

	var plain string
	if err := json.Unmarshal(e.Description, &plain); err == nil && plain != "" {
		return plain
	}

	var rich struct {
		PlainText string `json:"plainText"`
	}
	if err := json.Unmarshal(e.Description, &rich); err == nil && rich.PlainText != "" {
		return rich.PlainText
	}
	return e.ShortDescription
}

type DateAndTime struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate,omitempty"`
	TimeZoneID string `json:"timeZoneId,omitempty"`
}

type Location struct {
	Name    string   `json:"name,omitempty"`
	Address *Address `json:"address,omitempty"`
}

type Address struct {
	Formatted     string `json:"formatted,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty"`
	City          string `json:"city,omitempty"`
	Subdivision   string `json:"subdivision,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
}

type Registration struct {
	Status            string             `json:"status,omitempty"`
	TicketDefinitions []TicketDefinition `json:"ticketDefinitions,omitempty"`
	External          *ExternalCheckout  `json:"external,omitempty"`
}

type ExternalCheckout struct {
	Registration string `json:"registration,omitempty"`
	CheckoutURL  string `json:"checkoutUrl,omitempty"`
}

type TicketDefinition struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Price            TicketPrice  `json:"price"`
	LimitPerCheckout int          `json:"limitPerCheckout,omitempty"`
	Inventory        *TicketStock `json:"inventory,omitempty"`
}

type TicketPrice struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type TicketStock struct {
	Quantity  int  `json:"quantity"`
	Unlimited bool `json:"unlimited"`
}
