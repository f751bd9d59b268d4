package server

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/merchpos/merchpos/internal/auth"
	"github.com/merchpos/merchpos/internal/handlers"
	"github.com/merchpos/merchpos/internal/httpx"
	"github.com/merchpos/merchpos/internal/models"
	"github.com/merchpos/merchpos/internal/pos"
)

// New constructs the root http.Handler. db may be nil when running on the
// in-memory store; sessions gates the POS routes only when authEnabled.
func New(db *gorm.DB, svc *pos.Service, sessions *auth.Sessions, authEnabled bool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if db != nil {
			if err := db.Exec("SELECT 1").Error; err != nil {
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// gate wraps POS routes behind the session check when auth is on;
	// otherwise requests run as the shared owner 0.
	gate := func(h http.Handler) http.Handler { return h }
	if authEnabled {
		sessions.SetUserVerifier(func(_ context.Context, uid uint) bool {
			var count int64
			if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
				return false
			}
			return count > 0
		})
		gate = func(h http.Handler) http.Handler {
			return sessions.Middleware(sessions.Require(h))
		}

		ah := handlers.NewAuthHandler(db, sessions, svc)
		mux.HandleFunc("POST /signup", ah.Signup)
		mux.HandleFunc("POST /login", ah.Login)
		mux.Handle("POST /logout", sessions.Middleware(http.HandlerFunc(ah.Logout)))
	}

	ih := handlers.NewInventoryHandler(svc)
	mux.Handle("GET /inventory", gate(http.HandlerFunc(ih.List)))
	mux.Handle("POST /inventory", gate(http.HandlerFunc(ih.Create)))
	mux.Handle("POST /inventory/price", gate(http.HandlerFunc(ih.UpdatePrice)))
	mux.Handle("POST /inventory/quantity", gate(http.HandlerFunc(ih.StageQuantity)))
	mux.Handle("POST /inventory/edit", gate(http.HandlerFunc(ih.ToggleEdit)))
	mux.Handle("POST /inventory/delete", gate(http.HandlerFunc(ih.Delete)))

	ch := handlers.NewCartHandler(svc)
	mux.Handle("GET /cart", gate(http.HandlerFunc(ch.Get)))
	mux.Handle("POST /cart", gate(http.HandlerFunc(ch.Set)))
	mux.Handle("POST /cart/clear", gate(http.HandlerFunc(ch.Clear)))

	sh := handlers.NewSaleHandler(svc)
	mux.Handle("POST /sale", gate(http.HandlerFunc(sh.Checkout)))

	hh := handlers.NewHistoryHandler(svc)
	mux.Handle("GET /history", gate(http.HandlerFunc(hh.List)))
	mux.Handle("GET /history/export.csv", gate(http.HandlerFunc(hh.Export)))
	mux.Handle("POST /history/clear", gate(http.HandlerFunc(hh.Clear)))

	return mux
}
