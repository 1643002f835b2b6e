package main

// --- EMBED MIGRATIONS ---
import (
	"context"
	"database/sql"
	_ "embed"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"salchipapon-pos/config"
	"salchipapon-pos/handler"
	"salchipapon-pos/obs"
	"salchipapon-pos/receipt"
	"salchipapon-pos/service"
	"salchipapon-pos/store"
)

//go:embed migrations.sql
var migrationSQL string

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	// --- Store ---
	var st store.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			obs.Logger.Error("db_open_failed", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			obs.Logger.Error("db_ping_failed", "error", err)
			os.Exit(1)
		}
		// --- RUN MIGRATIONS ---
		if _, err := db.Exec(migrationSQL); err != nil {
			obs.Logger.Error("migrations_failed", "error", err)
			os.Exit(1)
		}
		obs.Logger.Info("migrations_applied")
		st = &store.PostgresStore{DB: db}
	} else {
		obs.Logger.Warn("no DATABASE_URL set, using in-memory store")
		st = store.NewMemoryStore()
	}
	defer st.Close()

	// --- Service ---
	svc := service.NewService(st, &receipt.TextPrinter{Out: os.Stdout})
	var serviceInterface service.ServiceInterface = svc

	// --- Handlers ---
	h := handler.NewHandler(serviceInterface)

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.WithRequestID(handler.WithLogging(r)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
