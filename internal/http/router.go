package httpx

import (
	"net/http"

	"listconsole/internal/config"
	"listconsole/internal/http/handlers"
	middlewarex "listconsole/internal/http/middleware"
	"listconsole/internal/services/views"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	Config  config.Cfg
	Manager *views.Manager
}

// NewRouter creates the console BFF router
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", handlers.Health(deps.Manager, deps.Config))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarex.ConsoleAuth(deps.Config))

		r.Get("/views", handlers.ListViews(deps.Manager))
		r.Post("/views/{view}/mount", handlers.MountView(deps.Manager))
		r.Post("/entities/{entity}/changed", handlers.EntityChanged(deps.Manager))
		r.Get("/loading", handlers.Loading(deps.Manager))

		r.Route("/instances/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetInstance(deps.Manager))
			r.Delete("/", handlers.UnmountInstance(deps.Manager))

			r.Post("/page", handlers.SetPage(deps.Manager))
			r.Post("/page-size", handlers.SetPageSize(deps.Manager))
			r.Post("/search", handlers.SetSearch(deps.Manager))
			r.Post("/filters/{key}", handlers.SetFilter(deps.Manager))
			r.Post("/refresh", handlers.Refresh(deps.Manager))

			r.Post("/selection/toggle", handlers.ToggleSelection(deps.Manager))
			r.Post("/selection/page", handlers.SelectPage(deps.Manager))
			r.Post("/selection/clear", handlers.ClearSelection(deps.Manager))

			r.Post("/columns/{key}/toggle", handlers.ToggleColumn(deps.Manager))

			r.Post("/actions/header/{action}", handlers.HeaderAction(deps.Manager))
			r.Post("/actions/row/{action}", handlers.RowAction(deps.Manager))
			r.Post("/actions/bulk/{action}", handlers.BulkAction(deps.Manager))
		})
	})

	return r
}
