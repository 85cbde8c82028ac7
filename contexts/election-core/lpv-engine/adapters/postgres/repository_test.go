package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"electora/contexts/election-core/lpv-engine/domain/entities"
	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestRosterMembersSnapshot(t *testing.T) {
	members, err := rosterMembers([]entities.Candidate{
		{CandidateID: "cand-a", BallotOrder: 1},
		{CandidateID: "cand-b", BallotOrder: 2},
		{CandidateID: "cand-c", BallotOrder: 3},
	})
	if err != nil {
		t.Fatalf("roster members failed: %v", err)
	}
	if members != `["cand-a","cand-b","cand-c"]` {
		t.Fatalf("unexpected members snapshot %q", members)
	}
}

func TestSameRosterMembership(t *testing.T) {
	frozen := []entities.Candidate{
		{CandidateID: "cand-a"},
		{CandidateID: "cand-b"},
	}

	reordered := []entities.Candidate{
		{CandidateID: "cand-b"},
		{CandidateID: "cand-a"},
	}
	if !sameRosterMembership(frozen, reordered) {
		t.Fatalf("same membership in another order must match")
	}

	swapped := []entities.Candidate{
		{CandidateID: "cand-a"},
		{CandidateID: "cand-z"},
	}
	if sameRosterMembership(frozen, swapped) {
		t.Fatalf("different member must not match")
	}

	shorter := []entities.Candidate{{CandidateID: "cand-a"}}
	if sameRosterMembership(frozen, shorter) {
		t.Fatalf("different size must not match")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "lpv_rosters_pkey"}
	if !isUniqueViolation(fmt.Errorf("create roster claim: %w", unique)) {
		t.Fatalf("wrapped 23505 must be detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("connection reset")) {
		t.Fatalf("plain error is not a unique violation")
	}
}

func TestFreezeRosterValidatesInput(t *testing.T) {
	repo := NewRepository(nil, nil)
	roster := []entities.Candidate{{CandidateID: "cand-a", BallotOrder: 1}}

	if err := repo.FreezeRoster(context.Background(), "", "west", roster); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("blank election must be rejected, got %v", err)
	}
	if err := repo.FreezeRoster(context.Background(), "election-1", "  ", roster); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("blank constituency must be rejected, got %v", err)
	}
	if err := repo.FreezeRoster(context.Background(), "election-1", "west", nil); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("empty membership must be rejected, got %v", err)
	}
}
