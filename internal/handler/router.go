package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"frontofhouse/internal/mw"
	"frontofhouse/internal/service"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Auth        *service.AuthService
	Floor       *service.FloorService
	Catalog     *service.CatalogService
	Liquidation *service.LiquidationService
	DB          Pinger
}

func NewRouter(svc Services, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/healthz", HealthHandler(svc.DB))
	r.Post("/api/staff/register", RegisterHandler(svc.Auth, jwtSecret))
	r.Post("/api/staff/login", LoginHandler(svc.Auth, jwtSecret))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(jwtSecret))

		r.Route("/api/tables", func(r chi.Router) {
			r.Get("/", OverviewHandler(svc.Floor))
			r.Post("/", AddTableHandler(svc.Floor))
			r.Delete("/last", DeleteLastTableHandler(svc.Floor))
			r.Get("/by-number/{number}", TableByNumberHandler(svc.Floor))
			r.Get("/{id}", TableHandler(svc.Floor))
			r.Post("/{id}/orders", AddProductHandler(svc.Floor))
			r.Post("/{id}/release", ReleaseTableHandler(svc.Floor))
		})

		r.Route("/api/orders/{documentId}", func(r chi.Router) {
			r.Patch("/status", UpdateStatusHandler(svc.Floor))
			r.Patch("/quantity", UpdateQuantityHandler(svc.Floor))
			r.Patch("/notes", UpdateNotesHandler(svc.Floor))
			r.Post("/notes/quick", AppendQuickNoteHandler(svc.Floor))
			r.Put("/extras", UpdateExtrasHandler(svc.Floor))
			r.Post("/paid", TogglePaidHandler(svc.Floor))
			r.Delete("/", RemoveOrderHandler(svc.Floor))
		})

		r.Get("/api/kitchen", KitchenHandler(svc.Floor))
		r.Get("/api/service", ServiceHandler(svc.Floor))
		r.Get("/api/released", ReleasedHandler(svc.Floor))

		r.Post("/api/liquidations", LiquidateHandler(svc.Liquidation))
		r.Get("/api/liquidations", ListLiquidationsHandler(svc.Liquidation))
		r.Get("/api/liquidations/{id}", GetLiquidationHandler(svc.Liquidation))

		r.Get("/api/menu", MenuHandler(svc.Catalog))
		r.Route("/api/catalog/{kind}", func(r chi.Router) {
			r.Get("/", ListCatalogHandler(svc.Catalog))
			r.Post("/", CreateCatalogHandler(svc.Catalog))
			r.Put("/{documentId}", UpdateCatalogHandler(svc.Catalog))
			r.Delete("/{documentId}", DeleteCatalogHandler(svc.Catalog))
		})
	})

	return r
}

func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
