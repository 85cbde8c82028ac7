package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "electora/contexts/election-core/lpv-engine/application"
	"electora/contexts/election-core/lpv-engine/domain/entities"
	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"
	"electora/contexts/election-core/lpv-engine/ports"
)

// TransitionVoteStatusCommand moves a record through the audited status
// lifecycle. Corrections never edit the selection; invalidation supersedes
// the record for counting purposes.
type TransitionVoteStatusCommand struct {
	VoteID  string
	Status  entities.VoteStatus
	Reason  string
	ActorID string
}

type VoteStatusUseCase struct {
	Ledger ports.VoteLedger
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc VoteStatusUseCase) TransitionVoteStatus(ctx context.Context, cmd TransitionVoteStatusCommand) (entities.VoteRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	voteID := strings.TrimSpace(cmd.VoteID)
	actorID := strings.TrimSpace(cmd.ActorID)
	if voteID == "" || actorID == "" {
		return entities.VoteRecord{}, domainerrors.ErrInvalidInput
	}
	switch cmd.Status {
	case entities.VoteStatusCounted, entities.VoteStatusDisputed, entities.VoteStatusInvalidated:
	default:
		return entities.VoteRecord{}, domainerrors.ErrInvalidInput
	}

	record, err := uc.Ledger.GetVoteRecord(ctx, voteID)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	if !record.Status.CanTransitionTo(cmd.Status) {
		logger.Warn("vote status transition refused",
			"event", "lpv_vote_status_refused",
			"module", "election-core/lpv-engine",
			"layer", "application",
			"vote_id", record.VoteID,
			"from", string(record.Status),
			"to", string(cmd.Status),
		)
		return entities.VoteRecord{}, domainerrors.ErrInvalidStatusTransition
	}

	now := uc.now()
	reason := strings.TrimSpace(cmd.Reason)
	if err := uc.Ledger.UpdateVoteStatus(ctx, record.VoteID, cmd.Status, reason, now); err != nil {
		return entities.VoteRecord{}, err
	}
	previous := record.Status
	record.Status = cmd.Status
	record.StatusReason = reason
	record.StatusChangedAt = now

	if err := uc.appendStatusEvent(ctx, record, previous, actorID, now); err != nil {
		return entities.VoteRecord{}, err
	}

	logger.Info("vote status transitioned",
		"event", "lpv_vote_status_changed",
		"module", "election-core/lpv-engine",
		"layer", "application",
		"vote_id", record.VoteID,
		"from", string(previous),
		"to", string(record.Status),
		"actor_id", actorID,
	)
	return record, nil
}

func (uc VoteStatusUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc VoteStatusUseCase) appendStatusEvent(
	ctx context.Context,
	record entities.VoteRecord,
	previous entities.VoteStatus,
	actorID string,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLPVEnvelope(eventID, "vote.status_changed", record.BallotID, occurredAt, map[string]any{
		"vote_id":     record.VoteID,
		"ballot_id":   record.BallotID,
		"election_id": record.ElectionID,
		"from":        string(previous),
		"to":          string(record.Status),
		"reason":      record.StatusReason,
		"actioned_by": actorID,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
