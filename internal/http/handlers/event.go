package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
)

const sseHeartbeat = 25 * time.Second

// EventReset starts a new event: every donation and both role slots go.
func (a *App) EventReset(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, domain.RoleAdmin); !ok {
		return
	}
	if err := a.Lifecycle.NewEvent(r.Context()); err != nil {
		a.fail(w, r, err, "failed to reset event")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "reset"})
}

// Events streams lifecycle notifications as server-sent events. Screens use
// them to refresh early; polling still works without them.
func (a *App) Events(w http.ResponseWriter, r *http.Request) {
	if a.Hub == nil {
		a.error(w, http.StatusNotFound, "not_found", "push events disabled")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}
	// The stream outlives the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	ch, cancel := a.Hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case e, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, e.Encode())
			flusher.Flush()
		}
	}
}
