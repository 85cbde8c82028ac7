package lpvengine

import (
	"log/slog"
	"time"

	httpadapter "electora/contexts/election-core/lpv-engine/adapters/http"
	"electora/contexts/election-core/lpv-engine/adapters/memory"
	"electora/contexts/election-core/lpv-engine/application/commands"
	"electora/contexts/election-core/lpv-engine/application/queries"
	"electora/contexts/election-core/lpv-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies carries every collaborator the module needs. Nothing here is
// a process-wide singleton; callers wire fakes for tests and real adapters
// for deployments.
type Dependencies struct {
	Roster    ports.CandidateRoster
	Directory ports.ElectionDirectory
	Ballots   ports.BallotStore
	Ledger    ports.VoteLedger
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	Hasher    ports.Hasher
	IDGen     ports.IDGenerator
	BallotTTL time.Duration
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ballotUseCase := commands.BallotUseCase{
		Roster:    deps.Roster,
		Directory: deps.Directory,
		Ballots:   deps.Ballots,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		Hasher:    deps.Hasher,
		IDGen:     deps.IDGen,
		BallotTTL: deps.BallotTTL,
		Logger:    deps.Logger,
	}
	castUseCase := commands.CastVoteUseCase{
		Ballots: deps.Ballots,
		Ledger:  deps.Ledger,
		Outbox:  deps.Outbox,
		Clock:   deps.Clock,
		Hasher:  deps.Hasher,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	statusUseCase := commands.VoteStatusUseCase{
		Ledger: deps.Ledger,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	tallyUseCase := queries.TallyUseCase{
		Roster: deps.Roster,
		Ledger: deps.Ledger,
		Logger: deps.Logger,
	}
	auditUseCase := queries.AuditUseCase{
		Ballots: deps.Ballots,
		Ledger:  deps.Ledger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ballots: ballotUseCase,
			Casting: castUseCase,
			Status:  statusUseCase,
			Tally:   tallyUseCase,
			Audit:   auditUseCase,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module entirely on the memory store. Used by
// tests and single-process demos.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Roster:    store,
		Directory: store,
		Ballots:   store,
		Ledger:    store,
		Outbox:    store,
		Clock:     store,
		Hasher:    store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
