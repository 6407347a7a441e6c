package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/negoce-app/backoffice/internal/models"
)

func seedVente(t *testing.T, db *gorm.DB, userID uint, commandeID uint, net float64, mode models.ModePaiement, at time.Time) {
	t.Helper()
	v := models.VenteCaisse{CommandeID: commandeID, UserID: userID,
		MontantBrut: net, MontantNet: net, ModePaiement: mode, Date: at}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed vente: %v", err)
	}
}

func TestStatsForDayEmptyIsZero(t *testing.T) {
	db := setupServiceDB(t)
	user, _, _, _ := seedOrderFixtures(t, db)
	svc := NewRevenueService(db)

	st, err := svc.StatsForDay(context.Background(), user.ID, time.Now())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Count != 0 || st.Brut != 0 || st.Remise != 0 || st.Net != 0 {
		t.Fatalf("expected zero stats got %+v", st)
	}
	if len(st.ParMode) != 5 {
		t.Fatalf("expected all five methods present got %v", st.ParMode)
	}
	for m, v := range st.ParMode {
		if v != 0 {
			t.Fatalf("expected zero for %s got %v", m, v)
		}
	}
}

func TestStatsForDayBreakdownByMode(t *testing.T) {
	db := setupServiceDB(t)
	user, _, _, _ := seedOrderFixtures(t, db)
	svc := NewRevenueService(db)
	now := time.Now()

	seedVente(t, db, user.ID, 1, 50, models.ModeEspeces, now)
	seedVente(t, db, user.ID, 2, 30, models.ModeCarte, now)
	seedVente(t, db, user.ID, 3, 20, models.ModeCarte, now)
	// a remise on top of one of them
	v := models.VenteCaisse{CommandeID: 4, UserID: user.ID, MontantBrut: 100, Remise: 10, MontantNet: 90,
		ModePaiement: models.ModeCheque, Date: now}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	// another user's vente must not count
	other := models.User{Email: "other@test", Password: "x", Nom: "Autre"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("other user: %v", err)
	}
	seedVente(t, db, other.ID, 5, 999, models.ModeEspeces, now)

	st, err := svc.StatsForDay(context.Background(), user.ID, now)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Count != 4 {
		t.Fatalf("count: %+v", st)
	}
	if st.Net != 190 || st.Brut != 200 || st.Remise != 10 {
		t.Fatalf("totals: %+v", st)
	}
	if st.ParMode[models.ModeEspeces] != 50 || st.ParMode[models.ModeCarte] != 50 || st.ParMode[models.ModeCheque] != 90 {
		t.Fatalf("breakdown: %v", st.ParMode)
	}
	if st.ParMode[models.ModeCredit] != 0 || st.ParMode[models.ModeTicketResto] != 0 {
		t.Fatalf("unused modes should stay zero: %v", st.ParMode)
	}
}

func TestVentesForDayBoundaries(t *testing.T) {
	db := setupServiceDB(t)
	user, _, _, _ := seedOrderFixtures(t, db)
	svc := NewRevenueService(db)

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.Local)
	seedVente(t, db, user.ID, 1, 10, models.ModeEspeces, day)                                // inclusive lower bound
	seedVente(t, db, user.ID, 2, 20, models.ModeEspeces, day.Add(23*time.Hour+59*time.Minute)) // same day
	seedVente(t, db, user.ID, 3, 30, models.ModeEspeces, day.AddDate(0, 0, 1))               // next day, excluded

	ventes, err := svc.VentesForDay(context.Background(), user.ID, day)
	if err != nil {
		t.Fatalf("ventes: %v", err)
	}
	if len(ventes) != 2 {
		t.Fatalf("expected 2 got %d", len(ventes))
	}

	// per-day aggregation over two days equals the union: no loss, no double count
	d1, err := svc.StatsForDay(context.Background(), user.ID, day)
	if err != nil {
		t.Fatalf("d1: %v", err)
	}
	d2, err := svc.StatsForDay(context.Background(), user.ID, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("d2: %v", err)
	}
	if d1.Net+d2.Net != 60 || d1.Count+d2.Count != 3 {
		t.Fatalf("range split mismatch: d1=%+v d2=%+v", d1, d2)
	}
}

func TestStatsForRangeWindows(t *testing.T) {
	db := setupServiceDB(t)
	user, _, _, _ := seedOrderFixtures(t, db)
	svc := NewRevenueService(db)
	ctx := context.Background()
	now := time.Now()

	seedVente(t, db, user.ID, 1, 10, models.ModeEspeces, now.Add(-time.Hour))   // today-ish
	seedVente(t, db, user.ID, 2, 20, models.ModeCarte, now.AddDate(0, 0, -3))   // this week
	seedVente(t, db, user.ID, 3, 40, models.ModeCheque, now.AddDate(0, 0, -20)) // this month
	seedVente(t, db, user.ID, 4, 80, models.ModeCredit, now.AddDate(0, 0, -40)) // older than any window

	week, err := svc.StatsForRange(ctx, user.ID, "week")
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if week.Net != 30 || week.Count != 2 {
		t.Fatalf("week: %+v", week)
	}
	month, err := svc.StatsForRange(ctx, user.ID, "month")
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if month.Net != 70 || month.Count != 3 {
		t.Fatalf("month: %+v", month)
	}
	// unknown range defaults to the last 30 days
	def, err := svc.StatsForRange(ctx, user.ID, "whatever")
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if def.Net != 70 || def.Count != 3 {
		t.Fatalf("default: %+v", def)
	}
}

func TestStatsBrutFallsBackToNet(t *testing.T) {
	db := setupServiceDB(t)
	user, _, _, _ := seedOrderFixtures(t, db)
	svc := NewRevenueService(db)
	now := time.Now()

	// legacy rows sometimes carry only the net amount
	v := models.VenteCaisse{CommandeID: 1, UserID: user.ID, MontantNet: 25,
		ModePaiement: models.ModeEspeces, Date: now}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	st, err := svc.StatsForDay(context.Background(), user.ID, now)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Brut != 25 || st.Net != 25 {
		t.Fatalf("fallback: %+v", st)
	}
}
