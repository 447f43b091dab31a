package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moralesdev/storeapi-backend/api/controllers"
	"github.com/moralesdev/storeapi-backend/api/middleware"
	"github.com/moralesdev/storeapi-backend/internal/analysis"
	"github.com/moralesdev/storeapi-backend/internal/invoices"
	"github.com/moralesdev/storeapi-backend/internal/orders"
	"github.com/moralesdev/storeapi-backend/internal/products"
	"github.com/moralesdev/storeapi-backend/internal/stores"
	"github.com/moralesdev/storeapi-backend/pkg/config"
	"github.com/moralesdev/storeapi-backend/pkg/db"
	"github.com/moralesdev/storeapi-backend/pkg/logger"
)

// NewRouter wires every API surface onto a chi router.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	registry *prometheus.Registry,
	invoiceService invoices.Service,
	orderService orders.Service,
	storeService stores.Service,
	productService products.Service,
	analysisService analysis.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/invoices", func(r chi.Router) {
		r.Get("/", controllers.InvoiceList(invoiceService, logg))
		r.Get("/ai-analyze", controllers.InvoiceAnalyze(analysisService, logg))
		r.Get("/{id}", controllers.InvoiceDetail(invoiceService, logg))
		r.Post("/", controllers.InvoiceCreate(invoiceService, logg))
		r.Post("/bulk", controllers.InvoiceCreateBulk(invoiceService, logg))
	})

	r.Route("/api/order", func(r chi.Router) {
		r.Get("/", controllers.OrderList(orderService, logg))
		r.Get("/ai-analyze", controllers.OrderAnalyze(analysisService, logg))
		r.Get("/{id}", controllers.OrderDetail(orderService, logg))
		r.Post("/", controllers.OrderCreate(orderService, logg))
		r.Post("/bulk", controllers.OrderCreateBulk(orderService, logg))
	})

	r.Route("/api/stores", func(r chi.Router) {
		r.Get("/", controllers.StoreList(storeService, logg))
		r.Get("/{id}", controllers.StoreDetail(storeService, logg))
		r.Post("/", controllers.StoreCreate(storeService, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(productService, logg))
		r.Get("/{id}", controllers.ProductDetail(productService, logg))
		r.Post("/", controllers.ProductCreate(productService, logg))
	})

	return r
}
