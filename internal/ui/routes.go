package ui

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all UI routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	r.Get("/ui/logout", ui.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(ui.SessionMiddleware)

		r.Get("/", ui.HandleHome)

		r.Route("/ui/vans", func(r chi.Router) {
			r.Get("/", ui.HandleVans)
			r.Post("/refresh", ui.HandleVansRefresh)
			r.Post("/page/{n}", ui.HandleVansPage)
		})

		r.Get("/ui/events", ui.HandleEvents)
		r.Post("/ui/events", ui.HandleEventSelect)
		r.Get("/ui/missing", ui.HandleMissing)
	})
}
