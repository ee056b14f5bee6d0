package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"priorelicit/adapters/memory"
	"priorelicit/adapters/postgres"
	"priorelicit/adapters/rng"
	"priorelicit/app"
	"priorelicit/internal"
	"priorelicit/internal/api"
	"priorelicit/internal/config"
	apperrors "priorelicit/internal/errors"
	"priorelicit/internal/migration"
	"priorelicit/ports"
)

const shutdownTimeout = 10 * time.Second

// stores bundles the persistence backends selected from the configuration
type stores struct {
	records  ports.RecordRepository
	settings ports.SettingsRepository
	close    func() error
}

// initStores connects to Postgres and migrates the schema when DATABASE_URL is set,
// otherwise it falls back to the in-memory stores.
func initStores(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*stores, error) {
	if !cfg.Database.Enabled() {
		logger.Warn("DATABASE_URL not set, records and settings are kept in memory")
		return &stores{
			records:  memory.NewRecordStore(),
			settings: memory.NewSettingsStore(),
			close:    func() error { return nil },
		}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to connect to database")
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "database migration failed")
	}
	return &stores{
		records:  postgres.NewRecordRepository(db),
		settings: postgres.NewSettingsRepository(db),
		close:    db.Close,
	}, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := initStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize stores: %v", err)
	}
	defer st.close()

	server := api.NewServer(
		app.NewElicitationService(cfg.Pipeline, rng.NewSeededRNG(cfg.Pipeline.Seed), logger),
		app.NewStudyService(st.records, st.settings, logger),
		logger,
	)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed: %v", err)
	}
}
