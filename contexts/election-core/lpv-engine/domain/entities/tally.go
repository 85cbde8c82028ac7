package entities

// CandidateTally is one candidate's standing within a single round.
type CandidateTally struct {
	CandidateID string
	Votes       int
	Percentage  float64
}

// TallyRound is one elimination round. Counts hold the still-remaining
// candidates in roster order. EliminatedCandidateID is empty on a winning
// round.
type TallyRound struct {
	RoundNumber           int
	Counts                []CandidateTally
	TotalCounted          int
	ExhaustedVotes        int
	EliminatedCandidateID string
}

// TallyResult is a derived value, recomputable at any time from the ledger;
// it is never authoritative storage. WinnerCandidateID is empty when no
// countable records exist.
type TallyResult struct {
	ElectionID        string
	ConstituencyID    string
	TotalVotes        int
	Rounds            []TallyRound
	WinnerCandidateID string
}
