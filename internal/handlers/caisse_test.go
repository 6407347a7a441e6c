package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/negoce-app/backoffice/internal/auth"
	"github.com/negoce-app/backoffice/internal/models"
	"github.com/negoce-app/backoffice/internal/services"
)

func TestCaisseStatsZeroDay(t *testing.T) {
	db := setupHandlerDB(t)
	user, _, _ := seedHandlerFixtures(t, db)
	h := NewCaisseHandler(services.NewRevenueService(db))

	req := httptest.NewRequest(http.MethodGet, "/caisse/stats?date=2026-08-01", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Stats(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var stats services.RevenueStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Count != 0 || stats.Net != 0 || len(stats.ParMode) != 5 {
		t.Fatalf("expected zero stats got %+v", stats)
	}
}

func TestCaisseVentesForDate(t *testing.T) {
	db := setupHandlerDB(t)
	user, _, _ := seedHandlerFixtures(t, db)
	h := NewCaisseHandler(services.NewRevenueService(db))

	day := time.Date(2026, 8, 15, 10, 0, 0, 0, time.Local)
	for i, net := range []float64{12, 8} {
		v := models.VenteCaisse{CommandeID: uint(i + 1), UserID: user.ID, MontantBrut: net, MontantNet: net,
			ModePaiement: models.ModeEspeces, Date: day.Add(time.Duration(i) * time.Hour)}
		if err := db.Create(&v).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/caisse/ventes?date=2026-08-15&user_id="+strconv.Itoa(int(user.ID)), nil)
	w := httptest.NewRecorder()
	h.Ventes(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Items []models.VenteCaisse `json:"items"`
		Total int                  `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Fatalf("unexpected ventes: %+v", resp)
	}
}

func TestCaisseRequiresAUser(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewCaisseHandler(services.NewRevenueService(db))

	// no session, no user_id param
	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/caisse/stats", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestCaisseInvalidDate(t *testing.T) {
	db := setupHandlerDB(t)
	user, _, _ := seedHandlerFixtures(t, db)
	h := NewCaisseHandler(services.NewRevenueService(db))

	req := httptest.NewRequest(http.MethodGet, "/caisse/ventes?date=15-08-2026", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Ventes(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}
