package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type IssueBallotRequest struct {
	ElectionID     string `json:"election_id"`
	ConstituencyID string `json:"constituency_id"`
	VoterID        string `json:"voter_id"`
}

type BallotCandidate struct {
	CandidateID string `json:"candidate_id"`
	FullName    string `json:"full_name"`
	Party       string `json:"party"`
	Slogan      string `json:"slogan,omitempty"`
	BallotOrder int    `json:"ballot_order"`
}

// BallotResponse never echoes the voter id; the ballot id alone identifies
// the session to the caller.
type BallotResponse struct {
	BallotID               string            `json:"ballot_id"`
	ElectionID             string            `json:"election_id"`
	ConstituencyID         string            `json:"constituency_id"`
	Candidates             []BallotCandidate `json:"candidates"`
	MaxPreferences         int               `json:"max_preferences"`
	RequiresAllPreferences bool              `json:"requires_all_preferences"`
	AllowsAbstention       bool              `json:"allows_abstention"`
	IssuedAt               string            `json:"issued_at"`
	ExpiresAt              string            `json:"expires_at"`
	IntegrityHash          string            `json:"integrity_hash"`
}

type CastVoteRequest struct {
	BallotID          string `json:"ballot_id"`
	First             string `json:"first,omitempty"`
	Second            string `json:"second,omitempty"`
	Third             string `json:"third,omitempty"`
	VoterIDHash       string `json:"voter_id_hash"`
	BiometricVerified bool   `json:"biometric_verified,omitempty"`
	DeviceID          string `json:"device_id,omitempty"`
	Channel           string `json:"channel,omitempty"`
}

type VoteRecordResponse struct {
	VoteID         string   `json:"vote_id"`
	BallotID       string   `json:"ballot_id"`
	ElectionID     string   `json:"election_id"`
	ConstituencyID string   `json:"constituency_id"`
	Preferences    []string `json:"preferences"`
	CastAt         string   `json:"cast_at"`
	IntegrityProof string   `json:"integrity_proof"`
	Status         string   `json:"status"`
	StatusReason   string   `json:"status_reason,omitempty"`
}

type VoteRecordsResponse struct {
	Items []VoteRecordResponse `json:"items"`
}

type VoteStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type CandidateTallyItem struct {
	CandidateID string  `json:"candidate_id"`
	Votes       int     `json:"votes"`
	Percentage  float64 `json:"percentage"`
}

type TallyRoundItem struct {
	RoundNumber           int                  `json:"round_number"`
	Counts                []CandidateTallyItem `json:"counts"`
	TotalCounted          int                  `json:"total_counted"`
	ExhaustedVotes        int                  `json:"exhausted_votes"`
	EliminatedCandidateID string               `json:"eliminated_candidate_id,omitempty"`
}

type TallyResponse struct {
	ElectionID        string           `json:"election_id"`
	ConstituencyID    string           `json:"constituency_id"`
	TotalVotes        int              `json:"total_votes"`
	Rounds            []TallyRoundItem `json:"rounds"`
	WinnerCandidateID string           `json:"winner_candidate_id,omitempty"`
}
