package server

import (
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/negoce-app/backoffice/internal/auth"
	"github.com/negoce-app/backoffice/internal/handlers"
	"github.com/negoce-app/backoffice/internal/httpx"
	"github.com/negoce-app/backoffice/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, policy services.TransitionPolicy) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	// Commande endpoints
	orderSvc := services.NewOrderService(db, policy)
	ch := handlers.NewCommandeHandler(db, orderSvc)
	mux.Handle("/commandes", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.Get(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/commandes/status", requireAuth(post(ch.UpdateStatus)))
	mux.Handle("/commandes/reconcile", requireAuth(post(ch.Reconcile)))
	mux.Handle("/commandes/delete", requireAuth(post(ch.Delete)))
	mux.Handle("/commandes/total", requireAuth(http.HandlerFunc(ch.Total)))

	// Caisse endpoints (lecture seule)
	revSvc := services.NewRevenueService(db)
	kh := handlers.NewCaisseHandler(revSvc)
	mux.Handle("/caisse/ventes", requireAuth(http.HandlerFunc(kh.Ventes)))
	mux.Handle("/caisse/stats", requireAuth(http.HandlerFunc(kh.Stats)))

	return withRecover(withLogging(auth.Middleware(mux)))
}

func requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

func post(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		h(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
