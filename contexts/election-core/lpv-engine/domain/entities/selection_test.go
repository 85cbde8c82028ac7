package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"
)

func testBallot(requiresAll bool, allowsAbstention bool) Ballot {
	issued := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return Ballot{
		BallotID:       "ballot-1",
		ElectionID:     "election-2026",
		ConstituencyID: "moresby-north",
		VoterID:        "voter-1",
		Candidates: []Candidate{
			{CandidateID: "cand-a", BallotOrder: 1},
			{CandidateID: "cand-b", BallotOrder: 2},
			{CandidateID: "cand-c", BallotOrder: 3},
			{CandidateID: "cand-d", BallotOrder: 4},
		},
		MaxPreferences:         MaxPreferences,
		RequiresAllPreferences: requiresAll,
		AllowsAbstention:       allowsAbstention,
		IssuedAt:               issued,
		ExpiresAt:              issued.Add(30 * time.Minute),
	}
}

func TestValidateSelectionAcceptsRankedSubset(t *testing.T) {
	ballot := testBallot(false, false)
	now := ballot.IssuedAt.Add(5 * time.Minute)

	validated, err := ValidateSelection(ballot, PreferenceSelection{First: "cand-b", Second: "cand-d"}, now)
	if err != nil {
		t.Fatalf("validate selection failed: %v", err)
	}
	ranked := validated.Ranked()
	if len(ranked) != 2 || ranked[0] != "cand-b" || ranked[1] != "cand-d" {
		t.Fatalf("unexpected ranked order: %v", ranked)
	}
	if validated.IsAbstention() {
		t.Fatalf("ranked selection must not report abstention")
	}
}

func TestValidateSelectionTrimsWhitespace(t *testing.T) {
	ballot := testBallot(false, false)
	now := ballot.IssuedAt.Add(time.Minute)

	validated, err := ValidateSelection(ballot, PreferenceSelection{First: "  cand-a  "}, now)
	if err != nil {
		t.Fatalf("validate selection failed: %v", err)
	}
	if ranked := validated.Ranked(); len(ranked) != 1 || ranked[0] != "cand-a" {
		t.Fatalf("unexpected ranked order: %v", ranked)
	}
}

func TestValidateSelectionRejectsExpiredBallot(t *testing.T) {
	ballot := testBallot(false, false)
	now := ballot.ExpiresAt

	_, err := ValidateSelection(ballot, PreferenceSelection{First: "cand-a"}, now)
	if !errors.Is(err, domainerrors.ErrBallotExpired) {
		t.Fatalf("expected ErrBallotExpired at the expiry instant, got %v", err)
	}
}

func TestValidateSelectionRequiresFirstPreference(t *testing.T) {
	ballot := testBallot(false, false)
	now := ballot.IssuedAt.Add(time.Minute)

	_, err := ValidateSelection(ballot, PreferenceSelection{}, now)
	if !errors.Is(err, domainerrors.ErrFirstPreferenceRequired) {
		t.Fatalf("expected ErrFirstPreferenceRequired for empty tuple, got %v", err)
	}

	_, err = ValidateSelection(ballot, PreferenceSelection{Second: "cand-b"}, now)
	if !errors.Is(err, domainerrors.ErrFirstPreferenceRequired) {
		t.Fatalf("expected ErrFirstPreferenceRequired for gap before second slot, got %v", err)
	}
}

func TestValidateSelectionAbstention(t *testing.T) {
	ballot := testBallot(false, true)
	now := ballot.IssuedAt.Add(time.Minute)

	validated, err := ValidateSelection(ballot, PreferenceSelection{}, now)
	if err != nil {
		t.Fatalf("abstention must pass when the election allows it: %v", err)
	}
	if !validated.IsAbstention() {
		t.Fatalf("expected abstention")
	}

	// A later slot without a first is malformed even with abstention on.
	_, err = ValidateSelection(ballot, PreferenceSelection{Third: "cand-c"}, now)
	if !errors.Is(err, domainerrors.ErrFirstPreferenceRequired) {
		t.Fatalf("expected ErrFirstPreferenceRequired, got %v", err)
	}
}

func TestValidateSelectionRejectsUnknownCandidate(t *testing.T) {
	ballot := testBallot(false, false)
	now := ballot.IssuedAt.Add(time.Minute)

	_, err := ValidateSelection(ballot, PreferenceSelection{First: "cand-a", Second: "cand-x"}, now)
	if !errors.Is(err, domainerrors.ErrUnknownCandidate) {
		t.Fatalf("expected ErrUnknownCandidate, got %v", err)
	}

	// Membership is checked before duplicates, so an off-roster duplicate
	// still reports the membership failure.
	_, err = ValidateSelection(ballot, PreferenceSelection{First: "cand-x", Second: "cand-x"}, now)
	if !errors.Is(err, domainerrors.ErrUnknownCandidate) {
		t.Fatalf("expected ErrUnknownCandidate before duplicate check, got %v", err)
	}
}

func TestValidateSelectionRejectsDuplicates(t *testing.T) {
	ballot := testBallot(false, false)
	now := ballot.IssuedAt.Add(time.Minute)

	_, err := ValidateSelection(ballot, PreferenceSelection{First: "cand-a", Second: "cand-b", Third: "cand-a"}, now)
	if !errors.Is(err, domainerrors.ErrDuplicatePreference) {
		t.Fatalf("expected ErrDuplicatePreference, got %v", err)
	}
}

func TestValidateSelectionRequiresAllPreferencesWhenConfigured(t *testing.T) {
	ballot := testBallot(true, false)
	now := ballot.IssuedAt.Add(time.Minute)

	_, err := ValidateSelection(ballot, PreferenceSelection{First: "cand-a", Second: "cand-b"}, now)
	if !errors.Is(err, domainerrors.ErrIncompletePreferences) {
		t.Fatalf("expected ErrIncompletePreferences, got %v", err)
	}

	if _, err := ValidateSelection(ballot, PreferenceSelection{First: "cand-a", Second: "cand-b", Third: "cand-c"}, now); err != nil {
		t.Fatalf("full tuple must pass: %v", err)
	}
}

func TestValidatedSelectionRankedReturnsCopy(t *testing.T) {
	ballot := testBallot(false, false)
	validated, err := ValidateSelection(ballot, PreferenceSelection{First: "cand-a", Second: "cand-b"}, ballot.IssuedAt)
	if err != nil {
		t.Fatalf("validate selection failed: %v", err)
	}
	first := validated.Ranked()
	first[0] = "mutated"
	if second := validated.Ranked(); second[0] != "cand-a" {
		t.Fatalf("ranked slice must be isolated from callers, got %v", second)
	}
}
