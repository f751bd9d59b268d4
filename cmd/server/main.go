package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/merchpos/merchpos/internal/auth"
	"github.com/merchpos/merchpos/internal/config"
	"github.com/merchpos/merchpos/internal/db"
	"github.com/merchpos/merchpos/internal/pos"
	"github.com/merchpos/merchpos/internal/server"
	"github.com/merchpos/merchpos/internal/store"
)

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	if *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(cfg.DatabaseDSN); err != nil {
			log.Fatalf("migrate-only failed: %v", err)
		}
		log.Println("migrations completed; exiting as requested")
		return
	}

	var (
		conn *gorm.DB
		st   store.Store
	)
	switch cfg.Store {
	case config.StoreMemory:
		if cfg.AuthEnabled {
			log.Fatal("AUTH=1 requires the gorm store (accounts live in the database)")
		}
		st = store.NewMemoryStore()
		log.Println("using in-memory store; state is lost on restart")
	case config.StoreGorm:
		var err error
		conn, err = db.ConnectAndMigrate(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		st = store.NewGormStore(conn)
	default:
		log.Fatalf("unknown STORE value %q (want %s or %s)", cfg.Store, config.StoreGorm, config.StoreMemory)
	}

	svc := pos.New(st)
	sessions := auth.New(cfg.SessionSecret)
	handler := server.New(conn, svc, sessions, cfg.AuthEnabled)

	log.Printf("Starting server env=%s port=%s store=%s auth=%v", cfg.Env, cfg.Port, cfg.Store, cfg.AuthEnabled)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: withLogging(handler)}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
