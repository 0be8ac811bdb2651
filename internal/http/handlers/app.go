package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sindhuth/donation-ocr-app/internal/aggregate"
	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/events"
	"github.com/sindhuth/donation-ocr-app/internal/extraction"
	"github.com/sindhuth/donation-ocr-app/internal/infra"
	"github.com/sindhuth/donation-ocr-app/internal/lifecycle"
	"github.com/sindhuth/donation-ocr-app/internal/middleware"
	"github.com/sindhuth/donation-ocr-app/internal/roles"
)

type App struct {
	Logger            zerolog.Logger
	Event             infra.EventConfig
	Roles             *roles.Arbiter
	Lifecycle         *lifecycle.Service
	View              *aggregate.View
	Extractor         extraction.Extractor
	Hub               *events.Hub
	Money             aggregate.Money
	MaxUploadBytes    int64
	ExtractionTimeout time.Duration
	Location          *time.Location
	Now               func() time.Time
}

func NewApp(logger zerolog.Logger, ev infra.EventConfig, arb *roles.Arbiter, svc *lifecycle.Service, view *aggregate.View, ex extraction.Extractor, hub *events.Hub) *App {
	if ex == nil {
		ex = extraction.None{}
	}
	return &App{
		Logger:            logger,
		Event:             ev,
		Roles:             arb,
		Lifecycle:         svc,
		View:              view,
		Extractor:         ex,
		Hub:               hub,
		Money:             aggregate.NewMoney(ev.CurrencySymbol, ev.Locale),
		MaxUploadBytes:    10 << 20,
		ExtractionTimeout: 30 * time.Second,
		Location:          time.Local,
		Now:               time.Now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// fail maps domain errors onto HTTP statuses. Anything unrecognised is logged
// and reported as internal.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "donation not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "wrong secret for this role")
	case errors.Is(err, domain.ErrRoleTaken):
		a.error(w, http.StatusConflict, "role_taken", "role already held by another session")
	case errors.Is(err, domain.ErrProviderFailure):
		a.Logger.Warn().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg(msg)
		a.error(w, http.StatusBadGateway, "extraction_failed", "could not read the form, please retake the photo")
	default:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg(msg)
		a.error(w, http.StatusInternalServerError, "internal", msg)
	}
}

// requireRole resolves the caller's role and rejects it unless allowed.
func (a *App) requireRole(w http.ResponseWriter, r *http.Request, allowed ...domain.Role) (domain.Role, bool) {
	sid := middleware.SessionIDFromContext(r.Context())
	if sid == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return "", false
	}
	role, err := a.Roles.Resolve(r.Context(), sid)
	if err != nil {
		a.fail(w, r, err, "failed to resolve role")
		return "", false
	}
	for _, want := range allowed {
		if role == want {
			return role, true
		}
	}
	a.error(w, http.StatusForbidden, "forbidden", "not available to the "+string(role)+" screen")
	return role, false
}

type donationView struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Amount     string     `json:"amount"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	RequeuedAt *time.Time `json:"requeued_at,omitempty"`
	ImageURL   string     `json:"image_url"`
}

func toView(d domain.Donation) donationView {
	return donationView{
		ID:         d.ID,
		Name:       d.Name,
		Amount:     d.Amount,
		Status:     string(d.Status),
		CreatedAt:  d.CreatedAt,
		RequeuedAt: d.RequeuedAt,
		ImageURL:   imageURL(d.ID),
	}
}

func toViews(items []domain.Donation) []donationView {
	out := make([]donationView, 0, len(items))
	for _, d := range items {
		out = append(out, toView(d))
	}
	return out
}
