// Package bootstrap is the composition root. Construction and wiring stay
// here so module code remains framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	lpvengine "electora/contexts/election-core/lpv-engine"
	postgresadapter "electora/contexts/election-core/lpv-engine/adapters/postgres"
	"electora/contexts/election-core/lpv-engine/application/queries"
	workerapp "electora/contexts/election-core/lpv-engine/application/workers"
	"electora/internal/platform/config"
	"electora/internal/platform/db"
	"electora/internal/platform/httpserver"
	"electora/internal/platform/messaging"
	"electora/internal/platform/metrics"
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type ResultsApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	tallyReports workerapp.TallyReporter
	relayEnabled bool
	tallyEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	if err := repo.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}

	module := lpvengine.NewModule(lpvengine.Dependencies{
		Roster:    repo,
		Directory: newEnvDirectory(cfg),
		Ballots:   repo,
		Ledger:    repo,
		Outbox:    repo,
		Clock:     postgresadapter.SystemClock{},
		Hasher:    postgresadapter.SHA256Hasher{},
		IDGen:     postgresadapter.UUIDGenerator{},
		BallotTTL: cfg.BallotTTL,
		Logger:    logger,
	})

	server := httpserver.New(module, metrics.New(), logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildResults() (*ResultsApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "results")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &ResultsApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		tallyReports: workerapp.TallyReporter{
			Tally: queries.TallyUseCase{
				Roster: repo,
				Ledger: repo,
				Logger: logger,
			},
			Outbox:   repo,
			Clock:    postgresadapter.SystemClock{},
			IDGen:    postgresadapter.UUIDGenerator{},
			Contests: parseContests(cfg.TallyContests),
			Logger:   logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		tallyEnabled: cfg.EnableTallyReports,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (r *ResultsApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.logger.Info("results app started",
		"event", "bootstrap_results_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", r.pollInterval.String(),
	)

	for {
		if r.tallyEnabled {
			if err := r.tallyReports.RunOnce(ctx); err != nil {
				return err
			}
		}
		if r.relayEnabled {
			if err := r.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *ResultsApp) Close() error {
	if r.postgres != nil {
		return r.postgres.Close()
	}
	return nil
}

// envDirectory serves the election directory collaborator contract from
// process configuration until the commission's live directory is wired.
type envDirectory struct {
	open        map[string]bool
	requiresAll bool
	abstention  bool
}

func newEnvDirectory(cfg config.Config) envDirectory {
	open := make(map[string]bool, len(cfg.OpenElections))
	for _, electionID := range cfg.OpenElections {
		open[electionID] = true
	}
	return envDirectory{
		open:        open,
		requiresAll: cfg.RequireAllPreferences,
		abstention:  cfg.AllowAbstention,
	}
}

func (d envDirectory) IsVotingOpen(_ context.Context, electionID string) (bool, error) {
	return d.open[strings.TrimSpace(electionID)], nil
}

func (d envDirectory) RequiresAllPreferences(_ context.Context, _ string) (bool, error) {
	return d.requiresAll, nil
}

func (d envDirectory) AllowsAbstention(_ context.Context, _ string) (bool, error) {
	return d.abstention, nil
}

func parseContests(raw []string) []workerapp.ContestRef {
	contests := make([]workerapp.ContestRef, 0, len(raw))
	for _, value := range raw {
		parts := strings.SplitN(value, "/", 2)
		if len(parts) != 2 {
			continue
		}
		contests = append(contests, workerapp.ContestRef{
			ElectionID:     strings.TrimSpace(parts[0]),
			ConstituencyID: strings.TrimSpace(parts[1]),
		})
	}
	return contests
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
