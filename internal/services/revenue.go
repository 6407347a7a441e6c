package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/negoce-app/backoffice/internal/models"
)

// RevenueService is the read path over the caisse ledger. It never touches
// commandes: statistics are reducers over fetched ventes, safe to run
// concurrently with reconciliation writes (read-committed is enough, a stats
// call racing a write may or may not see the new vente).
type RevenueService struct {
	DB *gorm.DB
}

func NewRevenueService(db *gorm.DB) *RevenueService { return &RevenueService{DB: db} }

// RevenueStats aggregates a window of ventes for one responsable.
type RevenueStats struct {
	Count   int64                           `json:"count"`
	Brut    float64                         `json:"brut"`
	Remise  float64                         `json:"remise"`
	Net     float64                         `json:"net"`
	ParMode map[models.ModePaiement]float64 `json:"par_mode"`
	From    time.Time                       `json:"from"`
	To      time.Time                       `json:"to"`
}

// VentesForDay returns the user's ventes for the calendar day of date,
// local time, oldest first.
func (s *RevenueService) VentesForDay(ctx context.Context, userID uint, date time.Time) ([]models.VenteCaisse, error) {
	from, to := dayBounds(date)
	return s.fetch(ctx, userID, from, to)
}

// StatsForDay aggregates one calendar day. A day with no ventes yields
// all-zero stats, not an error.
func (s *RevenueService) StatsForDay(ctx context.Context, userID uint, date time.Time) (RevenueStats, error) {
	from, to := dayBounds(date)
	return s.stats(ctx, userID, from, to)
}

// StatsForRange aggregates a named window ending now: "today", "week"
// (last 7 days), "month" (last calendar month); anything else means the
// last 30 days.
func (s *RevenueService) StatsForRange(ctx context.Context, userID uint, rng string) (RevenueStats, error) {
	now := time.Now()
	var from time.Time
	switch rng {
	case "today":
		from, _ = dayBounds(now)
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = now.AddDate(0, -1, 0)
	default:
		from = now.AddDate(0, 0, -30)
	}
	return s.stats(ctx, userID, from, now)
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return from, from.AddDate(0, 0, 1)
}

// fetch selects [from, to) so adjacent windows never share a vente.
func (s *RevenueService) fetch(ctx context.Context, userID uint, from, to time.Time) ([]models.VenteCaisse, error) {
	var ventes []models.VenteCaisse
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date asc").Find(&ventes).Error
	if err != nil {
		return nil, err
	}
	return ventes, nil
}

func (s *RevenueService) stats(ctx context.Context, userID uint, from, to time.Time) (RevenueStats, error) {
	ventes, err := s.fetch(ctx, userID, from, to)
	if err != nil {
		return RevenueStats{}, err
	}
	st := RevenueStats{From: from, To: to, ParMode: map[models.ModePaiement]float64{}}
	for _, m := range models.Modes() {
		st.ParMode[m] = 0
	}
	for _, v := range ventes {
		st.Count++
		if v.MontantBrut != 0 {
			st.Brut += v.MontantBrut
		} else {
			st.Brut += v.MontantNet
		}
		st.Remise += v.Remise
		st.Net += v.MontantNet
		st.ParMode[v.ModePaiement] += v.MontantNet
	}
	return st, nil
}
