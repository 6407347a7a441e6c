package handlers

import (
	"net/http"
	"time"

	"github.com/negoce-app/backoffice/internal/auth"
	"github.com/negoce-app/backoffice/internal/httpx"
	"github.com/negoce-app/backoffice/internal/services"
)

// CaisseHandler is the read-only surface over the caisse ledger.
type CaisseHandler struct {
	Svc *services.RevenueService
}

func NewCaisseHandler(svc *services.RevenueService) *CaisseHandler {
	return &CaisseHandler{Svc: svc}
}

// resolveUser picks the target responsable: explicit user_id query param,
// else the session user.
func resolveUser(r *http.Request) (uint, bool) {
	if id, ok := queryID(r, "user_id"); ok {
		return id, true
	}
	return auth.UserIDFromContext(r.Context())
}

// Ventes: GET /caisse/ventes?date=2006-01-02&user_id=...
// Missing date means today.
func (h *CaisseHandler) Ventes(w http.ResponseWriter, r *http.Request) {
	userID, ok := resolveUser(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_user", nil)
		return
	}
	day := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		day = parsed
	}
	ventes, err := h.Svc.VentesForDay(r.Context(), userID, day)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": ventes, "total": len(ventes)})
}

// Stats: GET /caisse/stats?range=today|week|month&user_id=...
// or ?date=2006-01-02 for a single day. Defaults to the last 30 days.
func (h *CaisseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := resolveUser(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_user", nil)
		return
	}
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		stats, err := h.Svc.StatsForDay(r.Context(), userID, parsed)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, stats)
		return
	}
	stats, err := h.Svc.StatsForRange(r.Context(), userID, r.URL.Query().Get("range"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
