package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/web/templates"
)

// render buffers the page so a failed render can still produce a clean 500
func render(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	var buf bytes.Buffer
	if err := page.Render(r.Context(), &buf); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// statusFor maps service errors to a status and a message safe to show
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again later."
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	render(w, r, status, templates.Error(templates.ErrorData{
		PageData: templates.PageData{Title: http.StatusText(status)},
		Message:  message,
	}))
}

// formatRating shows the value the strategy ranks by
func formatRating(kind model.StrategyKind, r model.Rating) string {
	if kind == model.StrategyElo {
		return fmt.Sprintf("%d", r.Elo)
	}
	return fmt.Sprintf("%.2f", r.Mu)
}

func formatSkill(s rating.Skill) string {
	return fmt.Sprintf("%.2f ± %.2f", s.Mean, s.Uncertainty)
}

func formatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}
