package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/api/http/middleware"
	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/platform/observability"
)

// ServiceName имя сервиса в трейсах и логах
const ServiceName = "paymanager"

// NewRouter собирает chi роутер.
// health отдаётся без сессии; всё остальное кроме /login требует валидную сессию
func NewRouter(handler *Handler, auth middleware.Authenticator, health http.HandlerFunc, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	// trace context + span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(observability.HTTPMiddleware(ServiceName, logger))
	}

	router.Get("/health", health)
	router.Post("/login", handler.PostLogin)

	adminOnly := middleware.RequireRoles(repository.RoleAdmin)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(auth, logger))

		r.Post("/logout", handler.PostLogout)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", handler.GetUsers)
			r.Get("/{id}", handler.GetUser)
			r.With(adminOnly).Post("/", handler.PostUsers)
			r.With(adminOnly).Put("/{id}", handler.PutUser)
			r.With(adminOnly).Delete("/{id}", handler.DeleteUser)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handler.GetProducts)
			r.Post("/", handler.PostProducts)
			r.Get("/{id}", handler.GetProduct)
			r.Put("/{id}", handler.PutProduct)
			r.Delete("/{id}", handler.DeleteProduct)
		})

		r.Route("/gateways", func(r chi.Router) {
			r.Get("/", handler.GetGateways)
			r.Get("/{id}", handler.GetGateway)
			r.With(adminOnly).Put("/{id}", handler.PutGateway)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", handler.GetClients)
			r.Get("/{id}", handler.GetClient)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", handler.PostPurchases)
			r.Get("/", handler.GetPurchases)
			r.Get("/{id}", handler.GetPurchase)
			r.With(middleware.RequireRoles(repository.RoleFinance, repository.RoleAdmin)).
				Post("/{id}/refund", handler.PostPurchaseRefund)
		})
	})

	return router
}
