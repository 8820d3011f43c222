package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dataranlabs/storefront-backend/api/controllers"
	"github.com/dataranlabs/storefront-backend/api/middleware"
	cartsvc "github.com/dataranlabs/storefront-backend/internal/cart"
	"github.com/dataranlabs/storefront-backend/internal/catalog"
	"github.com/dataranlabs/storefront-backend/internal/digest"
	eventsvc "github.com/dataranlabs/storefront-backend/internal/events"
	"github.com/dataranlabs/storefront-backend/internal/inventory"
	ordersvc "github.com/dataranlabs/storefront-backend/internal/orders"
	"github.com/dataranlabs/storefront-backend/pkg/config"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness controllers.ReadinessProbe,
	cartManager *cartsvc.Manager,
	catalogService catalog.Service,
	inventoryService inventory.Service,
	eventsService eventsvc.Service,
	ordersService ordersvc.Service,
	digestService digest.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Get("/{handle}", controllers.GetProduct(catalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, logg))
			r.Get("/", controllers.GetCart(cartManager, logg))
			r.Delete("/", controllers.ClearCart(cartManager, logg))
			r.Post("/items", controllers.AddCartItem(cartManager, logg))
			r.Patch("/items/{itemId}", controllers.UpdateCartItem(cartManager, logg))
			r.Delete("/items/{itemId}", controllers.RemoveCartItem(cartManager, logg))
			r.Post("/checkout", controllers.CreateCheckout(cartManager, logg))
			r.Post("/inventory", controllers.CheckInventory(inventoryService, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.ListEvents(eventsService, logg))
			r.Get("/{eventId}", controllers.GetEvent(eventsService, logg))
		})

		r.Post("/orders/lookup", controllers.LookupOrders(ordersService, logg))
		r.Post("/digest", controllers.AnalyzeThread(digestService, logg))
	})

	return r
}
