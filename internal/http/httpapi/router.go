package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sindhuth/donation-ocr-app/internal/http/handlers"
	"github.com/sindhuth/donation-ocr-app/internal/middleware"
)

type Options struct {
	Logger          zerolog.Logger
	CORSOrigins     []string
	UploadsPerMin   int
	SecureCookies   bool
	SessionLifetime time.Duration
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	if opts.SessionLifetime <= 0 {
		opts.SessionLifetime = middleware.DefaultSessionLifetime
	}
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Session(opts.SecureCookies, opts.SessionLifetime),
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Route("/v1/session", func(r chi.Router) {
		r.Get("/", app.SessionGet)
		r.Post("/claim", app.SessionClaim)
	})

	r.Route("/v1/donations", func(r chi.Router) {
		r.With(middleware.RateLimit(opts.UploadsPerMin, time.Minute)).Post("/", app.DonationsCreate)
		r.Get("/pending", app.DonationsPending)
		r.Get("/review", app.DonationsReview)
		r.Get("/confirmed", app.DonationsConfirmed)
		r.Get("/{id}/image", app.DonationImage)
		r.Post("/{id}/confirm", app.DonationConfirm)
		r.Post("/{id}/skip", app.DonationSkip)
	})

	r.Get("/v1/dashboard", app.Dashboard)
	r.Get("/v1/export.csv", app.ExportCSV)
	r.Get("/v1/export.xlsx", app.ExportXLSX)
	r.Post("/v1/event/reset", app.EventReset)
	r.Get("/v1/events", app.Events)

	return r
}
