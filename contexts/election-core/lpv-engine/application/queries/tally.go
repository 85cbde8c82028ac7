package queries

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	application "electora/contexts/election-core/lpv-engine/application"
	"electora/contexts/election-core/lpv-engine/domain/entities"
	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"
	"electora/contexts/election-core/lpv-engine/ports"
)

// TallyUseCase runs elimination-style preferential counting over the
// ledger. It is read-only: it never mutates records, and it derives every
// round purely from the frozen roster and the record set, so two runs over
// the same snapshot always produce the same rounds and winner.
type TallyUseCase struct {
	Roster ports.CandidateRoster
	Ledger ports.VoteLedger
	Logger *slog.Logger
}

// ballotState tracks one record's surviving preference during counting.
// next indexes the preference currently backing the vote; len(preferences)
// marks the vote exhausted.
type ballotState struct {
	voteID      string
	preferences []string
	next        int
}

func (b *ballotState) current() (string, bool) {
	if b.next >= len(b.preferences) {
		return "", false
	}
	return b.preferences[b.next], true
}

func (b *ballotState) advance(remaining map[string]bool) {
	for b.next < len(b.preferences) {
		if remaining[b.preferences[b.next]] {
			return
		}
		b.next++
	}
}

// Tally counts first preferences, eliminates the weakest candidate round by
// round, and transfers each affected vote to its next surviving preference
// until a candidate exceeds 50% of the round's counted votes or only one
// candidate remains.
//
// Tie-break rule: when several candidates share the minimum count, the one
// with the lexicographically smallest candidate id is eliminated. A
// candidate at exactly 50% never wins outright; elimination continues.
func (uc TallyUseCase) Tally(ctx context.Context, electionID string, constituencyID string) (entities.TallyResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID = strings.TrimSpace(electionID)
	constituencyID = strings.TrimSpace(constituencyID)
	if electionID == "" || constituencyID == "" {
		return entities.TallyResult{}, domainerrors.ErrInvalidInput
	}
	logger.Info("tally started",
		"event", "lpv_tally_started",
		"module", "election-core/lpv-engine",
		"layer", "application",
		"election_id", electionID,
		"constituency_id", constituencyID,
	)

	roster, err := uc.Roster.CandidatesFor(ctx, electionID, constituencyID)
	if err != nil {
		return entities.TallyResult{}, err
	}
	records, err := uc.Ledger.RecordsFor(ctx, electionID, constituencyID)
	if err != nil {
		return entities.TallyResult{}, err
	}

	result := entities.TallyResult{
		ElectionID:     electionID,
		ConstituencyID: constituencyID,
		TotalVotes:     len(records),
	}
	if len(records) == 0 {
		logger.Info("tally completed with no records",
			"event", "lpv_tally_empty",
			"module", "election-core/lpv-engine",
			"layer", "application",
			"election_id", electionID,
			"constituency_id", constituencyID,
		)
		return result, nil
	}

	rosterOrder := make([]string, 0, len(roster))
	remaining := make(map[string]bool, len(roster))
	for _, candidate := range roster {
		rosterOrder = append(rosterOrder, candidate.CandidateID)
		remaining[candidate.CandidateID] = true
	}

	states, err := newBallotStates(records, remaining)
	if err != nil {
		logger.Error("tally aborted on integrity violation",
			"event", "lpv_tally_integrity_failed",
			"module", "election-core/lpv-engine",
			"layer", "application",
			"election_id", electionID,
			"constituency_id", constituencyID,
			"error", err.Error(),
		)
		return entities.TallyResult{}, err
	}

	roundNumber := 0
	for len(rosterOrder) > 1 {
		roundNumber++
		round := countRound(roundNumber, rosterOrder, states)

		if winnerID := roundWinner(round); winnerID != "" {
			result.Rounds = append(result.Rounds, round)
			result.WinnerCandidateID = winnerID
			uc.logCompleted(logger, result)
			return result, nil
		}

		eliminated := weakestCandidate(round)
		round.EliminatedCandidateID = eliminated
		result.Rounds = append(result.Rounds, round)

		delete(remaining, eliminated)
		rosterOrder = withoutCandidate(rosterOrder, eliminated)
		for _, state := range states {
			state.advance(remaining)
		}
	}

	// Last candidate standing wins by default, below 50% included. The
	// closing round records its final count for the audit trail.
	roundNumber++
	final := countRound(roundNumber, rosterOrder, states)
	result.Rounds = append(result.Rounds, final)
	result.WinnerCandidateID = rosterOrder[0]
	uc.logCompleted(logger, result)
	return result, nil
}

func (uc TallyUseCase) logCompleted(logger *slog.Logger, result entities.TallyResult) {
	logger.Info("tally completed",
		"event", "lpv_tally_completed",
		"module", "election-core/lpv-engine",
		"layer", "application",
		"election_id", result.ElectionID,
		"constituency_id", result.ConstituencyID,
		"winner_candidate_id", result.WinnerCandidateID,
		"rounds", len(result.Rounds),
		"total_votes", result.TotalVotes,
	)
}

// newBallotStates validates every preference against the frozen roster
// before any counting happens. A record pointing outside the roster aborts
// the run; counting errors are loud, never swallowed.
func newBallotStates(records []entities.VoteRecord, remaining map[string]bool) ([]*ballotState, error) {
	states := make([]*ballotState, 0, len(records))
	for _, record := range records {
		for _, candidateID := range record.Preferences {
			if !remaining[candidateID] {
				return nil, fmt.Errorf("%w: vote %s references candidate %s outside the frozen roster",
					domainerrors.ErrTallyIntegrity, record.VoteID, candidateID)
			}
		}
		states = append(states, &ballotState{
			voteID:      record.VoteID,
			preferences: record.Preferences,
		})
	}
	// Ledger ordering carries no meaning; sorting by vote id keeps every
	// derived sequence, including failure attribution, reproducible.
	sort.Slice(states, func(i, j int) bool {
		return states[i].voteID < states[j].voteID
	})
	return states, nil
}

func countRound(roundNumber int, rosterOrder []string, states []*ballotState) entities.TallyRound {
	counts := make(map[string]int, len(rosterOrder))
	totalCounted := 0
	exhausted := 0
	for _, state := range states {
		candidateID, ok := state.current()
		if !ok {
			exhausted++
			continue
		}
		counts[candidateID]++
		totalCounted++
	}

	round := entities.TallyRound{
		RoundNumber:    roundNumber,
		TotalCounted:   totalCounted,
		ExhaustedVotes: exhausted,
	}
	for _, candidateID := range rosterOrder {
		votes := counts[candidateID]
		percentage := 0.0
		if totalCounted > 0 {
			percentage = float64(votes) / float64(totalCounted) * 100
		}
		round.Counts = append(round.Counts, entities.CandidateTally{
			CandidateID: candidateID,
			Votes:       votes,
			Percentage:  percentage,
		})
	}
	return round
}

// roundWinner returns the candidate strictly above half the counted votes,
// if any. The test stays in integers so exactly 50% can never win; that tie
// resolves through continued elimination.
func roundWinner(round entities.TallyRound) string {
	for _, tally := range round.Counts {
		if 2*tally.Votes > round.TotalCounted {
			return tally.CandidateID
		}
	}
	return ""
}

// weakestCandidate picks the elimination target: the minimum vote count,
// ties broken by smallest candidate id.
func weakestCandidate(round entities.TallyRound) string {
	eliminated := ""
	minVotes := 0
	for _, tally := range round.Counts {
		switch {
		case eliminated == "":
			eliminated = tally.CandidateID
			minVotes = tally.Votes
		case tally.Votes < minVotes:
			eliminated = tally.CandidateID
			minVotes = tally.Votes
		case tally.Votes == minVotes && tally.CandidateID < eliminated:
			eliminated = tally.CandidateID
		}
	}
	return eliminated
}

func withoutCandidate(rosterOrder []string, candidateID string) []string {
	out := make([]string, 0, len(rosterOrder)-1)
	for _, id := range rosterOrder {
		if id != candidateID {
			out = append(out, id)
		}
	}
	return out
}
