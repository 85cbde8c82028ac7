package ports

import (
	"context"
	"encoding/json"
	"time"

	"electora/contexts/election-core/lpv-engine/domain/entities"
)

// CandidateRoster serves the frozen candidate set for one election and
// constituency pair. The returned slice must be identical (same set, same
// order) for every call within one counting run.
type CandidateRoster interface {
	CandidatesFor(ctx context.Context, electionID string, constituencyID string) ([]entities.Candidate, error)
}

// RosterAdmin freezes a roster during election setup. Re-freezing a pair
// with a different membership must fail.
type RosterAdmin interface {
	FreezeRoster(ctx context.Context, electionID string, constituencyID string, candidates []entities.Candidate) error
}

// ElectionDirectory is the election/constituency collaborator contract.
type ElectionDirectory interface {
	IsVotingOpen(ctx context.Context, electionID string) (bool, error)
	RequiresAllPreferences(ctx context.Context, electionID string) (bool, error)
	AllowsAbstention(ctx context.Context, electionID string) (bool, error)
}

// BallotStore tracks issued ballots so a cast request can be resolved by
// ballot id. Expiry enforcement stays in the domain; the store only
// persists and retrieves.
type BallotStore interface {
	SaveBallot(ctx context.Context, ballot entities.Ballot) error
	GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error)
}

// VoteLedger is the append-only record store. AppendVote must atomically
// claim the ballot id: at most one record per ballot ever succeeds, and a
// losing append fails without touching existing state.
type VoteLedger interface {
	AppendVote(ctx context.Context, record entities.VoteRecord) error
	GetVoteRecord(ctx context.Context, voteID string) (entities.VoteRecord, error)
	// RecordsFor returns only countable (cast/counted) records, in no
	// guaranteed order.
	RecordsFor(ctx context.Context, electionID string, constituencyID string) ([]entities.VoteRecord, error)
	UpdateVoteStatus(ctx context.Context, voteID string, status entities.VoteStatus, reason string, changedAt time.Time) error
}

type Clock interface {
	Now() time.Time
}

// Hasher produces the hex digest used for ballot integrity hashes and vote
// integrity proofs. Any collision-resistant digest serves.
type Hasher interface {
	Hash(data []byte) string
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope is the module-local event shape written to the outbox.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	SourceService string          `json:"source_service"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SchemaVersion int             `json:"schema_version"`
	PartitionKey  string          `json:"partition_key"`
	Data          json.RawMessage `json:"data"`
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
