package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/export"
)

func (a *App) ExportCSV(w http.ResponseWriter, r *http.Request) {
	a.exportAs(w, r, export.CSV)
}

func (a *App) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	a.exportAs(w, r, export.XLSX)
}

func (a *App) exportAs(w http.ResponseWriter, r *http.Request, render func([]export.Row, time.Time) (export.Artifact, error)) {
	if _, ok := a.requireRole(w, r, domain.RoleAdmin); !ok {
		return
	}
	items, err := a.Lifecycle.Confirmed(r.Context(), domain.OldestFirst)
	if err != nil {
		a.fail(w, r, err, "failed to load donations")
		return
	}
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}
	art, err := render(export.Rows(items, a.Event.CurrencySymbol, loc), a.Now().In(loc))
	if err != nil {
		a.fail(w, r, err, "failed to render export")
		return
	}
	w.Header().Set("Content-Type", art.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", art.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}
