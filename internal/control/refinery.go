package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stateofclarity/refinery/internal/core/config"
	"github.com/stateofclarity/refinery/internal/core/worker"
	"github.com/stateofclarity/refinery/internal/infra/agent"
	redisclient "github.com/stateofclarity/refinery/internal/infra/redis"
	"github.com/stateofclarity/refinery/internal/infra/storage"
	"github.com/stateofclarity/refinery/internal/infra/storage/memory"
	"github.com/stateofclarity/refinery/internal/infra/storage/postgres"
	"github.com/stateofclarity/refinery/internal/refine/engine"
	"github.com/stateofclarity/refinery/internal/refine/health"
	"github.com/stateofclarity/refinery/internal/refine/retry"
	"github.com/stateofclarity/refinery/internal/refine/telemetry"

	"github.com/pressly/goose/v3"
)

// Refinery is the main application struct that wires storage, agents, the
// refinement engine and the worker loop together.
type Refinery struct {
	cfg          *config.AppConfig
	engine       *engine.Engine
	claimer      *worker.Claimer
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewRefinery creates a Refinery instance with all dependencies initialized.
func NewRefinery(cfg *config.AppConfig) (*Refinery, error) {
	log := slog.Default()

	// 1. Storage. Postgres when configured, in-memory otherwise.
	var briefRepo storage.BriefRepository
	var logRepo storage.ExecutionLogRepository
	var creditRepo storage.CreditRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		migrationsDir := cfg.Database.MigrationsDir
		if migrationsDir == "" {
			migrationsDir = "migrations"
		}
		if err := goose.Up(db.DB.DB, migrationsDir); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		briefRepo = postgres.NewBriefRepo(db)
		logRepo = postgres.NewExecutionLogRepo(db)
		creditRepo = postgres.NewCreditRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		briefRepo = memory.NewBriefRepo(store)
		logRepo = memory.NewExecutionLogRepo(store)
		creditRepo = memory.NewCreditRepo(store)
		log.Info("Using Memory storage")
	}

	// 2. Redis for the run lock and result cache. Optional: without it a
	// single worker still runs fine, just without cross-worker locking.
	var redisClient *redisclient.Client
	var locks engine.Locker
	var cache engine.ResultCache
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, run locking disabled", "error", err)
		} else {
			locks = redisClient
			cache = redisClient
		}
	}

	// 3. Agents.
	if cfg.Scorer.URL == "" {
		return nil, fmt.Errorf("scorer agent url is required")
	}
	scorer := agent.NewHTTPAgent(cfg.Scorer.Name, cfg.Scorer.URL, "", cfg.Scorer.Timeout.Std())

	fixers := make([]agent.Fixer, 0, len(cfg.Fixers))
	for _, fc := range cfg.Fixers {
		if fc.Dimension == "" {
			return nil, fmt.Errorf("fixer %q missing dimension", fc.Name)
		}
		fixers = append(fixers, agent.NewHTTPAgent(fc.Name, fc.URL, fc.Dimension, fc.Timeout.Std()))
		log.Info("Registered fixer", "name", fc.Name, "dimension", fc.Dimension)
	}

	// 4. Telemetry and engine.
	tel := telemetry.NewLogger(logRepo, log, cfg.Pricing)

	engCfg := engine.Config{
		MaxAttempts:         cfg.Refinement.MaxAttempts,
		TargetScore:         cfg.Refinement.TargetScore,
		MaxFixersPerAttempt: cfg.Refinement.MaxFixersPerAttempt,
		RefundCredits:       cfg.Refinement.RefundCredits,
		LockTTL:             cfg.Refinement.LockTTL.Std(),
		ResultTTL:           cfg.Refinement.ResultTTL.Std(),
		Retry: retry.Config{
			MaxRetries:        cfg.Retry.MaxRetries,
			InitialDelay:      cfg.Retry.InitialDelay.Std(),
			BackoffMultiplier: cfg.Retry.BackoffMultiplier,
			MaxDelay:          cfg.Retry.MaxDelay.Std(),
		},
	}
	eng := engine.New(engCfg, scorer, fixers, briefRepo, creditRepo, tel, locks, cache, log)

	// 5. Worker loop.
	claimer := worker.NewClaimer(briefRepo, eng, cfg.Refinement.PollInterval.Std(), log)

	// 6. Health monitor and ops server.
	checkers := map[string]health.Checker{}
	if db != nil {
		checkers["postgres"] = health.CheckerFunc(db.Health)
	}
	if redisClient != nil {
		checkers["redis"] = health.CheckerFunc(redisClient.Health)
	}
	healthServer := health.NewServer(health.NewMonitor(checkers), cfg.Server.Port)

	return &Refinery{
		cfg:          cfg,
		engine:       eng,
		claimer:      claimer,
		healthServer: healthServer,
		db:           db,
		redisClient:  redisClient,
		log:          log,
	}, nil
}

// Start starts the worker loop and the ops server.
func (r *Refinery) Start(ctx context.Context) error {
	go func() {
		if err := r.healthServer.Start(); err != nil {
			r.log.Error("Health server failed", "error", err)
		}
	}()

	if r.db != nil {
		r.db.StartMetricsCollector(ctx)
	}

	r.log.Info("Starting refinement worker", "poll_interval", r.cfg.Refinement.PollInterval.Std())
	go r.claimer.Start(ctx)

	return nil
}

// Stop stops the refinery.
func (r *Refinery) Stop(ctx context.Context) error {
	r.log.Info("Stopping Refinery...")

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.log.Warn("Failed to close database", "error", err)
		}
	}

	return r.healthServer.Stop(ctx)
}
