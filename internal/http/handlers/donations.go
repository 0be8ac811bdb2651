package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/extraction"
)

type confirmRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

func imageURL(id int64) string {
	return fmt.Sprintf("/v1/donations/%d/image", id)
}

func donationID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// DonationsCreate takes a photographed form, reads it and queues it for review.
// Explicit name/amount fields skip the vision call.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, domain.RoleUploader); !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image is too large")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "multipart form with an image is required")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image required")
		return
	}
	defer func() {
		_ = file.Close()
	}()
	image, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read image")
		return
	}
	if len(image) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "image is empty")
		return
	}

	var fields extraction.Fields
	_, hasName := r.MultipartForm.Value["name"]
	_, hasAmount := r.MultipartForm.Value["amount"]
	if hasName || hasAmount {
		fields = extraction.Fields{Name: r.FormValue("name"), Amount: r.FormValue("amount")}
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), a.ExtractionTimeout)
		fields, err = a.Extractor.Extract(ctx, image)
		cancel()
		if err != nil {
			a.fail(w, r, err, "extraction failed")
			return
		}
	}

	id, err := a.Lifecycle.Submit(r.Context(), image, fields.Name, fields.Amount)
	if err != nil {
		a.fail(w, r, err, "failed to save donation")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"id":     id,
		"name":   fields.Name,
		"amount": fields.Amount,
		"status": domain.DonationPending,
	})
}

func (a *App) DonationsPending(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, domain.RoleEditor); !ok {
		return
	}
	items, err := a.Lifecycle.Pending(r.Context())
	if err != nil {
		a.fail(w, r, err, "failed to load pending donations")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toViews(items)})
}

// DonationsReview returns the next form to check and how many wait behind it.
func (a *App) DonationsReview(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, domain.RoleEditor); !ok {
		return
	}
	head, remaining, err := a.Lifecycle.Queue(r.Context())
	if err != nil {
		a.fail(w, r, err, "failed to load review queue")
		return
	}
	var donation *donationView
	if head != nil {
		v := toView(*head)
		donation = &v
	}
	a.json(w, http.StatusOK, map[string]any{
		"donation":    donation,
		"remaining":   remaining,
		"skip_policy": a.Lifecycle.SkipPolicy(),
	})
}

func (a *App) DonationImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, domain.RoleEditor, domain.RoleAdmin); !ok {
		return
	}
	id, ok := donationID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid donation id")
		return
	}
	d, err := a.Lifecycle.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, "failed to load donation")
		return
	}
	if len(d.Image) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "donation has no image")
		return
	}
	w.Header().Set("Content-Type", extraction.DetectMIME(d.Image))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Image)
}

// DonationConfirm stores the reviewed values. The amount is kept as typed.
func (a *App) DonationConfirm(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, domain.RoleEditor); !ok {
		return
	}
	id, ok := donationID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid donation id")
		return
	}
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Lifecycle.Confirm(r.Context(), id, req.Name, req.Amount); err != nil {
		a.fail(w, r, err, "failed to confirm donation")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": id, "status": domain.DonationConfirmed})
}

func (a *App) DonationSkip(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, domain.RoleEditor); !ok {
		return
	}
	id, ok := donationID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid donation id")
		return
	}
	if err := a.Lifecycle.Skip(r.Context(), id); err != nil {
		a.fail(w, r, err, "failed to skip donation")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": id, "skip_policy": a.Lifecycle.SkipPolicy()})
}

func (a *App) DonationsConfirmed(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireRole(w, r, domain.RoleAdmin); !ok {
		return
	}
	order := domain.NewestFirst
	switch r.URL.Query().Get("order") {
	case "", "newest":
	case "oldest":
		order = domain.OldestFirst
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "order must be newest or oldest")
		return
	}
	items, err := a.Lifecycle.Confirmed(r.Context(), order)
	if err != nil {
		a.fail(w, r, err, "failed to load donations")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toViews(items)})
}
