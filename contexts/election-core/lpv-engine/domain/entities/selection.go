package entities

import (
	"strings"
	"time"

	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"
)

// PreferenceSelection is the raw, caller-supplied ranked tuple. It is
// untrusted input; only ValidateSelection turns it into a value the ledger
// accepts.
type PreferenceSelection struct {
	First  string
	Second string
	Third  string
}

// Ranked returns the non-empty entries in preference order. Rank order is
// defined by position among the non-empty slots; validation rejects tuples
// whose first slot is empty while a later slot is set.
func (s PreferenceSelection) Ranked() []string {
	ranked := make([]string, 0, MaxPreferences)
	for _, entry := range []string{s.First, s.Second, s.Third} {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			ranked = append(ranked, entry)
		}
	}
	return ranked
}

// ValidatedSelection is a preference selection that passed every ballot
// rule. The ranked slice is unexported so the only way to obtain one is
// ValidateSelection; downstream code never re-checks.
type ValidatedSelection struct {
	ranked []string
}

// Ranked returns a copy of the validated preference order.
func (v ValidatedSelection) Ranked() []string {
	out := make([]string, len(v.ranked))
	copy(out, v.ranked)
	return out
}

// IsAbstention reports a validated selection with no preferences, which is
// only constructible when the ballot's election allows abstention.
func (v ValidatedSelection) IsAbstention() bool {
	return len(v.ranked) == 0
}

// ValidateSelection enforces the acceptance rules in order, first failure
// wins:
//
//  1. ballot not expired
//  2. first preference present (unless the election allows abstention)
//  3. every entry is on the ballot's roster snapshot
//  4. no candidate appears twice
//  5. all three slots filled when the election requires full preferences
func ValidateSelection(ballot Ballot, selection PreferenceSelection, now time.Time) (ValidatedSelection, error) {
	if ballot.ExpiredAt(now) {
		return ValidatedSelection{}, domainerrors.ErrBallotExpired
	}

	ranked := selection.Ranked()
	if strings.TrimSpace(selection.First) == "" {
		// A lower preference without a first is malformed even when the
		// election allows abstention; only a fully empty tuple abstains.
		if len(ranked) > 0 || !ballot.AllowsAbstention {
			return ValidatedSelection{}, domainerrors.ErrFirstPreferenceRequired
		}
	}

	for _, candidateID := range ranked {
		if !ballot.HasCandidate(candidateID) {
			return ValidatedSelection{}, domainerrors.ErrUnknownCandidate
		}
	}

	seen := make(map[string]struct{}, len(ranked))
	for _, candidateID := range ranked {
		if _, dup := seen[candidateID]; dup {
			return ValidatedSelection{}, domainerrors.ErrDuplicatePreference
		}
		seen[candidateID] = struct{}{}
	}

	if ballot.RequiresAllPreferences && len(ranked) < MaxPreferences {
		return ValidatedSelection{}, domainerrors.ErrIncompletePreferences
	}

	return ValidatedSelection{ranked: ranked}, nil
}
