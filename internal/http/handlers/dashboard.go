package handlers

import (
	"net/http"
	"time"

	"github.com/sindhuth/donation-ocr-app/internal/aggregate"
)

type donorView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type dashboardResponse struct {
	Title           string      `json:"title"`
	Goal            string      `json:"goal"`
	GoalDisplay     string      `json:"goal_display"`
	Total           string      `json:"total"`
	TotalDisplay    string      `json:"total_display"`
	Count           int         `json:"count"`
	Progress        string      `json:"progress"`
	ProgressDisplay string      `json:"progress_display"`
	Remaining       string      `json:"remaining"`
	GoalReached     bool        `json:"goal_reached"`
	Latest          *donorView  `json:"latest"`
	Donors          []donorView `json:"donors"`
}

// Dashboard serves the public goal display. It is open to every role so the
// projector screen needs no login.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	s, err := a.View.Summary(r.Context(), a.Event.Goal)
	if err != nil {
		a.fail(w, r, err, "failed to compute summary")
		return
	}
	a.json(w, http.StatusOK, a.dashboard(s))
}

func (a *App) dashboard(s aggregate.Summary) dashboardResponse {
	resp := dashboardResponse{
		Title:           a.Event.Title,
		Goal:            s.Goal.StringFixed(2),
		GoalDisplay:     a.Money.Format(s.Goal),
		Total:           s.Total.StringFixed(2),
		TotalDisplay:    a.Money.Format(s.Total),
		Count:           s.Count,
		Progress:        s.Progress.StringFixed(4),
		ProgressDisplay: a.Money.Percent(s.Progress),
		Remaining:       s.Remaining.StringFixed(2),
		GoalReached:     s.GoalReached,
		Donors:          make([]donorView, 0, len(s.Donations)),
	}
	for _, d := range s.Donations {
		resp.Donors = append(resp.Donors, donorView{ID: d.ID, Name: d.Name, Amount: d.Amount, CreatedAt: d.CreatedAt})
	}
	if s.Latest != nil {
		resp.Latest = &donorView{ID: s.Latest.ID, Name: s.Latest.Name, Amount: s.Latest.Amount, CreatedAt: s.Latest.CreatedAt}
	}
	return resp
}
