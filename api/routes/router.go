package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omerfarooq187/pizza-pos-backend/api/controllers"
	"github.com/omerfarooq187/pizza-pos-backend/api/middleware"
	"github.com/omerfarooq187/pizza-pos-backend/internal/catalog"
	"github.com/omerfarooq187/pizza-pos-backend/internal/inventory"
	"github.com/omerfarooq187/pizza-pos-backend/internal/orders"
	"github.com/omerfarooq187/pizza-pos-backend/internal/reports"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/config"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	registry *prometheus.Registry,
	catalogService catalog.Service,
	inventoryService inventory.Service,
	orderService orders.Service,
	reportService reports.Service,
	exporter *reports.Exporter,
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

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(catalogService, logg))
			r.Post("/", controllers.CreateCategory(catalogService, logg))
			r.Put("/{categoryID}", controllers.UpdateCategory(catalogService, logg))
			r.Delete("/{categoryID}", controllers.DeleteCategory(catalogService, logg))
			r.Get("/{categoryID}/items", controllers.ListCategoryItems(catalogService, logg))
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.ListMenu(catalogService, logg))
			r.Route("/items", func(r chi.Router) {
				r.Post("/", controllers.CreateMenuItem(catalogService, logg))
				r.Get("/{itemID}", controllers.GetMenuItem(catalogService, logg))
				r.Put("/{itemID}", controllers.UpdateMenuItem(catalogService, logg))
				r.Delete("/{itemID}", controllers.DeleteMenuItem(catalogService, logg))
				r.Post("/{itemID}/toggle", controllers.ToggleMenuItem(catalogService, logg))
			})
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", controllers.StartDraft(orderService, logg))
			r.Route("/{draftID}", func(r chi.Router) {
				r.Get("/", controllers.GetDraft(orderService, logg))
				r.Delete("/", controllers.CancelDraft(orderService, logg))
				r.Post("/items", controllers.AddDraftItem(orderService, logg))
				r.Post("/items/remove", controllers.RemoveDraftItem(orderService, logg))
				r.Post("/items/quantity", controllers.SetDraftQuantity(orderService, logg))
				r.Post("/member", controllers.SetDraftMemberStatus(orderService, logg))
				r.Post("/contact", controllers.SetDraftContact(orderService, logg))
				r.Post("/validate", controllers.ValidateDraft(orderService, inventoryService, logg))
				r.Post("/finalize", controllers.FinalizeDraft(orderService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderID}", controllers.GetOrder(orderService, logg))
			r.Post("/{orderID}/status", controllers.UpdateOrderStatus(orderService, logg))
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", controllers.ListMembers(orderService, logg))
			r.Post("/", controllers.RegisterMember(orderService, logg))
			r.Get("/lookup", controllers.LookupMember(orderService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListRawItems(inventoryService, logg))
			r.Post("/", controllers.CreateRawItem(inventoryService, logg))
			r.Get("/low-stock", controllers.LowStock(inventoryService, logg))
			r.Get("/reconcile", controllers.ReconcileInventory(inventoryService, logg))
			r.Route("/{rawItemID}", func(r chi.Router) {
				r.Get("/", controllers.GetRawItem(inventoryService, logg))
				r.Put("/", controllers.UpdateRawItem(inventoryService, logg))
				r.Delete("/", controllers.DeleteRawItem(inventoryService, logg))
				r.Post("/restock", controllers.RestockRawItem(inventoryService, logg))
				r.Post("/adjust", controllers.AdjustRawItem(inventoryService, logg))
				r.Get("/transactions", controllers.ListStockTransactions(inventoryService, logg))
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/{variantID}", controllers.GetRecipe(inventoryService, logg))
			r.Put("/{variantID}", controllers.SetRecipe(inventoryService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/daily", controllers.DailyReport(reportService, logg))
			r.Get("/weekly", controllers.WeeklyReport(reportService, logg))
			r.Get("/monthly", controllers.MonthlyReport(reportService, logg))
			r.Get("/range", controllers.RangeReport(reportService, logg))
			r.Get("/today", controllers.TodayStats(reportService, logg))
			r.Get("/sold-items", controllers.SearchSoldItems(reportService, logg))
			r.Post("/export", controllers.ExportReport(reportService, exporter, logg))
		})
	})

	return r
}
