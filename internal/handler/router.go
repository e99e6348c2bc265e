package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterDeps collects the handlers and route-scoped middleware the API
// surface is assembled from.
type RouterDeps struct {
	Auth       *AuthHandler
	Waitlist   *WaitlistHandler
	Reports    *ReportHandler
	Artifacts  *ArtifactHandler
	Gate       func(http.Handler) http.Handler
	LoginLimit func(http.Handler) http.Handler
}

// RegisterRoutes mounts the admin and public API on r. Everything behind
// Gate is admin-only; the rest is the public marketing-site surface.
func RegisterRoutes(r chi.Router, deps RouterDeps) {
	r.With(deps.LoginLimit).Post("/auth", deps.Auth.Login)
	r.With(deps.Gate).Get("/auth", deps.Auth.Check)
	r.Delete("/auth", deps.Auth.Logout)

	r.Route("/session-status", func(r chi.Router) {
		r.Use(deps.Gate)
		r.Get("/", deps.Auth.RotationStatus)
		r.Post("/", deps.Auth.RotateSecret)
	})

	r.Route("/waitlist", func(r chi.Router) {
		r.Post("/", deps.Waitlist.Submit)

		r.Group(func(r chi.Router) {
			r.Use(deps.Gate)
			r.Get("/", deps.Waitlist.List)
			r.Delete("/", deps.Waitlist.Delete)
		})
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/data/{filename}", deps.Artifacts.ServeData)

		r.Group(func(r chi.Router) {
			r.Use(deps.Gate)
			r.Post("/generate", deps.Reports.Generate)
			r.Get("/", deps.Reports.List)
			r.Delete("/{id}", deps.Reports.Delete)
		})
	})

	r.Get("/report/{token}", deps.Reports.PublicView)
	r.Get("/charts/{filename}", deps.Artifacts.ServeChart)
}
