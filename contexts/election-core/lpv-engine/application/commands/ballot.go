package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "electora/contexts/election-core/lpv-engine/application"
	"electora/contexts/election-core/lpv-engine/domain/entities"
	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"
	"electora/contexts/election-core/lpv-engine/ports"
)

// DefaultBallotTTL bounds a voting session when no explicit TTL is
// configured.
const DefaultBallotTTL = 30 * time.Minute

// IssueBallotCommand requests a single-use ballot for one voter.
type IssueBallotCommand struct {
	ElectionID     string
	ConstituencyID string
	VoterID        string
}

// BallotUseCase builds single-use ballots from the frozen roster. The
// roster, directory, clock, hasher, and id generator are injected so tests
// substitute fakes without global state.
type BallotUseCase struct {
	Roster    ports.CandidateRoster
	Directory ports.ElectionDirectory
	Ballots   ports.BallotStore
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	Hasher    ports.Hasher
	IDGen     ports.IDGenerator
	BallotTTL time.Duration
	Logger    *slog.Logger
}

// IssueBallot snapshots the roster, stamps issuance and expiry, and binds
// the ballot to the voter with an integrity hash over the ordered candidate
// ids, the voter id, and the issuance instant.
func (uc BallotUseCase) IssueBallot(ctx context.Context, cmd IssueBallotCommand) (entities.Ballot, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	constituencyID := strings.TrimSpace(cmd.ConstituencyID)
	voterID := strings.TrimSpace(cmd.VoterID)
	logger.Info("ballot issuance started",
		"event", "lpv_ballot_issue_started",
		"module", "election-core/lpv-engine",
		"layer", "application",
		"election_id", electionID,
		"constituency_id", constituencyID,
	)
	if electionID == "" || constituencyID == "" || voterID == "" {
		logger.Warn("ballot issuance validation failed",
			"event", "lpv_ballot_issue_validation_failed",
			"module", "election-core/lpv-engine",
			"layer", "application",
			"election_id", electionID,
			"constituency_id", constituencyID,
		)
		return entities.Ballot{}, domainerrors.ErrInvalidInput
	}

	open, err := uc.Directory.IsVotingOpen(ctx, electionID)
	if err != nil {
		return entities.Ballot{}, err
	}
	if !open {
		logger.Warn("ballot issuance refused, election closed",
			"event", "lpv_ballot_issue_election_closed",
			"module", "election-core/lpv-engine",
			"layer", "application",
			"election_id", electionID,
		)
		return entities.Ballot{}, domainerrors.ErrElectionNotOpen
	}

	candidates, err := uc.Roster.CandidatesFor(ctx, electionID, constituencyID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrRosterUnavailable) {
			return entities.Ballot{}, domainerrors.ErrNoCandidates
		}
		return entities.Ballot{}, err
	}
	if len(candidates) == 0 {
		return entities.Ballot{}, domainerrors.ErrNoCandidates
	}

	requiresAll, err := uc.Directory.RequiresAllPreferences(ctx, electionID)
	if err != nil {
		return entities.Ballot{}, err
	}
	allowsAbstention, err := uc.Directory.AllowsAbstention(ctx, electionID)
	if err != nil {
		return entities.Ballot{}, err
	}

	ballotID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Ballot{}, err
	}

	issuedAt := uc.now()
	ballot := entities.Ballot{
		BallotID:               ballotID,
		ElectionID:             electionID,
		ConstituencyID:         constituencyID,
		VoterID:                voterID,
		Candidates:             candidates,
		MaxPreferences:         entities.MaxPreferences,
		RequiresAllPreferences: requiresAll,
		AllowsAbstention:       allowsAbstention,
		IssuedAt:               issuedAt,
		ExpiresAt:              issuedAt.Add(uc.resolveBallotTTL()),
	}
	ballot.IntegrityHash = uc.Hasher.Hash(ballotFingerprint(ballot))

	if err := uc.Ballots.SaveBallot(ctx, ballot); err != nil {
		return entities.Ballot{}, err
	}
	if err := uc.appendBallotEvent(ctx, ballot, issuedAt); err != nil {
		return entities.Ballot{}, err
	}

	logger.Info("ballot issued",
		"event", "lpv_ballot_issued",
		"module", "election-core/lpv-engine",
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"election_id", ballot.ElectionID,
		"constituency_id", ballot.ConstituencyID,
		"candidate_count", len(ballot.Candidates),
		"expires_at", ballot.ExpiresAt,
	)
	return ballot, nil
}

func (uc BallotUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc BallotUseCase) resolveBallotTTL() time.Duration {
	if uc.BallotTTL <= 0 {
		return DefaultBallotTTL
	}
	return uc.BallotTTL
}

func (uc BallotUseCase) appendBallotEvent(ctx context.Context, ballot entities.Ballot, occurredAt time.Time) error {
	// Outbox is optional for pure library/test wiring, so nil is a no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLPVEnvelope(eventID, "ballot.issued", ballot.BallotID, occurredAt, map[string]any{
		"ballot_id":       ballot.BallotID,
		"election_id":     ballot.ElectionID,
		"constituency_id": ballot.ConstituencyID,
		"candidate_count": len(ballot.Candidates),
		"issued_at":       ballot.IssuedAt.Format(time.RFC3339),
		"expires_at":      ballot.ExpiresAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

// ballotFingerprint binds the ordered roster snapshot, the voter, and the
// issuance instant into the bytes the integrity hash covers.
func ballotFingerprint(ballot entities.Ballot) []byte {
	parts := append(ballot.CandidateIDs(), ballot.VoterID, ballot.IssuedAt.UTC().Format(time.RFC3339Nano))
	return []byte(strings.Join(parts, "|"))
}
