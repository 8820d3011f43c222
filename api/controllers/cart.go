package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dataranlabs/storefront-backend/api/middleware"
	"github.com/dataranlabs/storefront-backend/api/responses"
	"github.com/dataranlabs/storefront-backend/api/validators"
	cartsvc "github.com/dataranlabs/storefront-backend/internal/cart"
	"github.com/dataranlabs/storefront-backend/internal/inventory"
	pkgerrors "github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
	"github.com/dataranlabs/storefront-backend/pkg/types"
)

// inventoryCacheControl advertises a short private client cache for
// stock-check responses.
const inventoryCacheControl = "private, max-age=60"

type moneyRequest struct {
	Amount       string `json:"amount" validate:"required"`
	CurrencyCode string `json:"currencyCode" validate:"required"`
}

func (m *moneyRequest) toMoney() *types.Money {
	if m == nil {
		return nil
	}
	return &types.Money{Amount: m.Amount, CurrencyCode: m.CurrencyCode}
}

type variantRequest struct {
	ID    string        `json:"id" validate:"required"`
	Title string        `json:"title"`
	Price *moneyRequest `json:"price" validate:"required"`
}

type addItemRequest struct {
	Product struct {
		ID     string        `json:"id" validate:"required"`
		Handle string        `json:"handle"`
		Title  string        `json:"title" validate:"required"`
		Price  *moneyRequest `json:"price"`
		Image  string        `json:"image"`
	} `json:"product" validate:"required"`
	Size    int             `json:"size" validate:"omitempty,min=0"`
	Variant *variantRequest `json:"variant"`
}

type updateItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type inventoryCheckRequest struct {
	Items []struct {
		VariantID    string `json:"variantId" validate:"required"`
		Quantity     int    `json:"quantity" validate:"required,min=1"`
		ProductTitle string `json:"productTitle"`
	} `json:"items" validate:"required"`
}

func sessionStore(r *http.Request, manager *cartsvc.Manager) (*cartsvc.Store, error) {
	sessionID := middleware.SessionID(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session middleware missing")
	}
	return manager.Get(r.Context(), sessionID)
}

// GetCart returns the session's cart snapshot.
func GetCart(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// AddCartItem adds one unit of a product (or its chosen variant) to the
// cart, merging with an existing line.
func AddCartItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product := cartsvc.ProductRef{
			ID:     payload.Product.ID,
			Handle: payload.Product.Handle,
			Title:  payload.Product.Title,
			Price:  payload.Product.Price.toMoney(),
			Image:  payload.Product.Image,
		}
		var variant *cartsvc.VariantRef
		if payload.Variant != nil {
			variant = &cartsvc.VariantRef{
				ID:    payload.Variant.ID,
				Title: payload.Variant.Title,
				Price: *payload.Variant.Price.toMoney(),
			}
		}

		line := store.AddItem(r.Context(), product, payload.Size, variant)
		responses.WriteSuccessStatus(w, http.StatusCreated, line)
	}
}

// UpdateCartItem applies a signed quantity delta to one line.
func UpdateCartItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := chi.URLParam(r, "itemId")
		if err := store.UpdateQuantity(r.Context(), itemID, payload.Delta); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// RemoveCartItem deletes one line.
func RemoveCartItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := chi.URLParam(r, "itemId")
		if err := store.RemoveItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// ClearCart empties the cart and its persisted copy.
func ClearCart(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Clear(r.Context())
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// CreateCheckout opens a platform checkout for the cart. A cart without
// variant-bearing lines responds with a null checkout so the client can
// fall back to its local review flow.
func CreateCheckout(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkout, err := store.CreateCheckout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if checkout == nil {
			responses.WriteSuccess(w, map[string]any{"checkout": nil})
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"checkout":    checkout,
			"checkoutUrl": checkout.WebURL,
		})
	}
}

// CheckInventory runs a stock check for the posted items. Responses are
// cacheable client-side for a minute.
func CheckInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload inventoryCheckRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]inventory.Item, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, inventory.Item{
				VariantID:    item.VariantID,
				Quantity:     item.Quantity,
				ProductTitle: item.ProductTitle,
			})
		}

		result, fromCache, err := svc.CheckCart(r.Context(), items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Cache-Control", inventoryCacheControl)
		w.Header().Set(cacheHeader, cacheStatus(fromCache))
		responses.WriteSuccess(w, result)
	}
}
