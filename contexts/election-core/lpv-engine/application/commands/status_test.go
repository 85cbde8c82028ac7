package commands

import (
	"context"
	"errors"
	"testing"

	"electora/contexts/election-core/lpv-engine/adapters/memory"
	"electora/contexts/election-core/lpv-engine/domain/entities"
	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"
)

func statusUseCase(store *memory.Store) VoteStatusUseCase {
	return VoteStatusUseCase{
		Ledger: store,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
	}
}

func castTestVote(t *testing.T, store *memory.Store) entities.VoteRecord {
	t.Helper()
	ballot := issueTestBallot(t, store)
	record, err := castUseCase(store).CastVote(context.Background(), CastVoteCommand{
		BallotID:  ballot.BallotID,
		Selection: entities.PreferenceSelection{First: "cand-a"},
		Meta:      entities.VoteMeta{VoterIDHash: "hash-1"},
	})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	return record
}

func TestTransitionVoteStatusDisputeAndResolve(t *testing.T) {
	store := frozenStore(t, true)
	record := castTestVote(t, store)
	uc := statusUseCase(store)

	disputed, err := uc.TransitionVoteStatus(context.Background(), TransitionVoteStatusCommand{
		VoteID:  record.VoteID,
		Status:  entities.VoteStatusDisputed,
		Reason:  "observer challenge",
		ActorID: "official-3",
	})
	if err != nil {
		t.Fatalf("dispute transition failed: %v", err)
	}
	if disputed.Status != entities.VoteStatusDisputed || disputed.StatusReason != "observer challenge" {
		t.Fatalf("unexpected disputed record: %+v", disputed)
	}
	if disputed.Preferences[0] != "cand-a" {
		t.Fatalf("status transition must not touch the selection")
	}

	resolved, err := uc.TransitionVoteStatus(context.Background(), TransitionVoteStatusCommand{
		VoteID:  record.VoteID,
		Status:  entities.VoteStatusCounted,
		Reason:  "challenge dismissed",
		ActorID: "official-3",
	})
	if err != nil {
		t.Fatalf("resolve transition failed: %v", err)
	}
	if resolved.Status != entities.VoteStatusCounted {
		t.Fatalf("expected counted, got %q", resolved.Status)
	}
}

func TestTransitionVoteStatusRejectsIllegalMove(t *testing.T) {
	store := frozenStore(t, true)
	record := castTestVote(t, store)
	uc := statusUseCase(store)

	if _, err := uc.TransitionVoteStatus(context.Background(), TransitionVoteStatusCommand{
		VoteID:  record.VoteID,
		Status:  entities.VoteStatusInvalidated,
		Reason:  "duplicate registration",
		ActorID: "official-3",
	}); err != nil {
		t.Fatalf("invalidate transition failed: %v", err)
	}

	_, err := uc.TransitionVoteStatus(context.Background(), TransitionVoteStatusCommand{
		VoteID:  record.VoteID,
		Status:  entities.VoteStatusCounted,
		ActorID: "official-3",
	})
	if !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("invalidation must be terminal, got %v", err)
	}
}

func TestTransitionVoteStatusValidatesInput(t *testing.T) {
	store := frozenStore(t, true)
	record := castTestVote(t, store)
	uc := statusUseCase(store)

	_, err := uc.TransitionVoteStatus(context.Background(), TransitionVoteStatusCommand{
		VoteID:  record.VoteID,
		Status:  entities.VoteStatus("archived"),
		ActorID: "official-3",
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}

	_, err = uc.TransitionVoteStatus(context.Background(), TransitionVoteStatusCommand{
		VoteID:  record.VoteID,
		Status:  entities.VoteStatusCounted,
		ActorID: " ",
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing actor, got %v", err)
	}

	_, err = uc.TransitionVoteStatus(context.Background(), TransitionVoteStatusCommand{
		VoteID:  "missing-vote",
		Status:  entities.VoteStatusCounted,
		ActorID: "official-3",
	})
	if !errors.Is(err, domainerrors.ErrVoteNotFound) {
		t.Fatalf("expected ErrVoteNotFound, got %v", err)
	}
}
