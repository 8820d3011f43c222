package commerce

import "github.com/dataranlabs/storefront-backend/pkg/types"

// GraphQL connection scaffolding shared by list queries.

type edge[T any] struct {
	Node T `json:"node"`
}

type connection[T any] struct {
	Edges []edge[T] `json:"edges"`
}

type productNode struct {
	ID          string              `json:"id"`
	Handle      string              `json:"handle"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Vendor      string              `json:"vendor"`
	ProductType string              `json:"productType"`
	Tags        []string            `json:"tags"`
	Collections connection[Collection] `json:"collections"`
	PriceRange  PriceRange          `json:"priceRange"`
	Images      connection[Image]   `json:"images"`
	Options     []ProductOption     `json:"options"`
	Variants    connection[Variant] `json:"variants"`

	AvailableForSale bool `json:"availableForSale"`
}

func (n productNode) toProduct() Product {
	collections := make([]Collection, 0, len(n.Collections.Edges))
	for _, e := range n.Collections.Edges {
		collections = append(collections, e.Node)
	}
	images := make([]Image, 0, len(n.Images.Edges))
	for _, e := range n.Images.Edges {
		images = append(images, e.Node)
	}
	variants := make([]Variant, 0, len(n.Variants.Edges))
	for _, e := range n.Variants.Edges {
		variants = append(variants, e.Node)
	}

	var featured Image
	if len(images) > 0 {
		featured = images[0]
	}

	return Product{
		ID:               n.ID,
		Handle:           n.Handle,
		Title:            n.Title,
		Description:      n.Description,
		Vendor:           n.Vendor,
		ProductType:      n.ProductType,
		Tags:             n.Tags,
		Collections:      collections,
		Price:            n.PriceRange.MinVariantPrice,
		PriceRange:       n.PriceRange,
		Image:            featured,
		Images:           images,
		Options:          n.Options,
		Variants:         variants,
		AvailableForSale: n.AvailableForSale,
	}
}

type inventoryNode struct {
	ID                string `json:"id"`
	AvailableForSale  bool   `json:"availableForSale"`
	QuantityAvailable *int   `json:"quantityAvailable"`
	Product           struct {
		Title  string `json:"title"`
		Handle string `json:"handle"`
	} `json:"product"`
}

type orderNode struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	Email                    string `json:"email"`
	CreatedAt                string `json:"createdAt"`
	UpdatedAt                string `json:"updatedAt"`
	DisplayFinancialStatus   string `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string `json:"displayFulfillmentStatus"`
	Customer                 struct {
		DisplayName string `json:"displayName"`
	} `json:"customer"`
	TotalPriceSet struct {
		ShopMoney types.Money `json:"shopMoney"`
	} `json:"totalPriceSet"`
	Fulfillments []Fulfillment             `json:"fulfillments"`
	LineItems    connection[OrderLineItem] `json:"lineItems"`
}

func (n orderNode) toOrder() Order {
	lineItems := make([]OrderLineItem, 0, len(n.LineItems.Edges))
	for _, e := range n.LineItems.Edges {
		lineItems = append(lineItems, e.Node)
	}
	return Order{
		ID:                n.ID,
		Name:              n.Name,
		Email:             n.Email,
		CreatedAt:         n.CreatedAt,
		UpdatedAt:         n.UpdatedAt,
		FinancialStatus:   n.DisplayFinancialStatus,
		FulfillmentStatus: n.DisplayFulfillmentStatus,
		CustomerName:      n.Customer.DisplayName,
		TotalPrice:        n.TotalPriceSet.ShopMoney,
		Fulfillments:      n.Fulfillments,
		LineItems:         lineItems,
	}
}
