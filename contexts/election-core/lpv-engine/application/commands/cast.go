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

// CastVoteCommand submits a preference selection against an issued ballot.
// Meta is collaborator-supplied; VoterIDHash arrives pre-hashed and the raw
// voter identity is never part of this command.
type CastVoteCommand struct {
	BallotID  string
	Selection entities.PreferenceSelection
	Meta      entities.VoteMeta
}

// CastVoteUseCase validates selections and appends immutable vote records.
// The ledger's atomic per-ballot claim is the only concurrency-sensitive
// step; everything before it is pure over the loaded ballot.
type CastVoteUseCase struct {
	Ballots ports.BallotStore
	Ledger  ports.VoteLedger
	Outbox  ports.OutboxWriter
	Clock   ports.Clock
	Hasher  ports.Hasher
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

// CastVote runs the acceptance rules and, on success, writes exactly one
// record for the ballot. Input failures never produce a ledger entry; a
// losing race on the same ballot returns ErrBallotAlreadyUsed with the
// first write left standing.
func (uc CastVoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.VoteRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	ballotID := strings.TrimSpace(cmd.BallotID)
	voterIDHash := strings.TrimSpace(cmd.Meta.VoterIDHash)
	logger.Info("vote cast started",
		"event", "lpv_vote_cast_started",
		"module", "election-core/lpv-engine",
		"layer", "application",
		"ballot_id", ballotID,
	)
	if ballotID == "" || voterIDHash == "" {
		logger.Warn("vote cast validation failed",
			"event", "lpv_vote_cast_validation_failed",
			"module", "election-core/lpv-engine",
			"layer", "application",
			"ballot_id", ballotID,
		)
		return entities.VoteRecord{}, domainerrors.ErrInvalidInput
	}

	ballot, err := uc.Ballots.GetBallot(ctx, ballotID)
	if err != nil {
		return entities.VoteRecord{}, err
	}

	now := uc.now()
	selection, err := entities.ValidateSelection(ballot, cmd.Selection, now)
	if err != nil {
		logger.Warn("vote cast rejected",
			"event", "lpv_vote_cast_rejected",
			"module", "election-core/lpv-engine",
			"layer", "application",
			"ballot_id", ballot.BallotID,
			"election_id", ballot.ElectionID,
			"reason", err.Error(),
		)
		return entities.VoteRecord{}, err
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	record := entities.VoteRecord{
		VoteID:            voteID,
		BallotID:          ballot.BallotID,
		ElectionID:        ballot.ElectionID,
		ConstituencyID:    ballot.ConstituencyID,
		VoterIDHash:       voterIDHash,
		Preferences:       selection.Ranked(),
		CastAt:            now,
		Status:            entities.VoteStatusCast,
		BiometricVerified: cmd.Meta.BiometricVerified,
		DeviceID:          strings.TrimSpace(cmd.Meta.DeviceID),
		Channel:           strings.TrimSpace(cmd.Meta.Channel),
		StatusChangedAt:   now,
	}
	record.IntegrityProof = uc.Hasher.Hash(voteFingerprint(record))

	if err := uc.Ledger.AppendVote(ctx, record); err != nil {
		if errors.Is(err, domainerrors.ErrBallotAlreadyUsed) {
			logger.Warn("vote cast lost ballot claim",
				"event", "lpv_vote_cast_ballot_used",
				"module", "election-core/lpv-engine",
				"layer", "application",
				"ballot_id", ballot.BallotID,
			)
		}
		return entities.VoteRecord{}, err
	}
	if err := uc.appendCastEvent(ctx, record); err != nil {
		return entities.VoteRecord{}, err
	}

	logger.Info("vote cast accepted",
		"event", "lpv_vote_cast_accepted",
		"module", "election-core/lpv-engine",
		"layer", "application",
		"vote_id", record.VoteID,
		"ballot_id", record.BallotID,
		"election_id", record.ElectionID,
		"constituency_id", record.ConstituencyID,
		"preference_count", len(record.Preferences),
	)
	return record, nil
}

func (uc CastVoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc CastVoteUseCase) appendCastEvent(ctx context.Context, record entities.VoteRecord) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLPVEnvelope(eventID, "vote.cast", record.BallotID, record.CastAt, map[string]any{
		"vote_id":          record.VoteID,
		"ballot_id":        record.BallotID,
		"election_id":      record.ElectionID,
		"constituency_id":  record.ConstituencyID,
		"preference_count": len(record.Preferences),
		"cast_at":          record.CastAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

// voteFingerprint binds ballot, ranked selection, and cast instant into the
// bytes the integrity proof covers.
func voteFingerprint(record entities.VoteRecord) []byte {
	parts := append([]string{record.BallotID}, record.Preferences...)
	parts = append(parts, record.CastAt.UTC().Format(time.RFC3339Nano))
	return []byte(strings.Join(parts, "|"))
}
