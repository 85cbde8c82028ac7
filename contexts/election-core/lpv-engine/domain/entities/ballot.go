package entities

import "time"

// MaxPreferences is fixed for limited preferential voting: voters rank up
// to three candidates.
const MaxPreferences = 3

// Ballot is a single-use, time-bounded authorization for one voter to
// submit one preference selection against a frozen roster snapshot.
type Ballot struct {
	BallotID               string
	ElectionID             string
	ConstituencyID         string
	VoterID                string
	Candidates             []Candidate
	MaxPreferences         int
	RequiresAllPreferences bool
	AllowsAbstention       bool
	IssuedAt               time.Time
	ExpiresAt              time.Time
	IntegrityHash          string
}

// CandidateIDs returns the roster ids in ballot order.
func (b Ballot) CandidateIDs() []string {
	ids := make([]string, 0, len(b.Candidates))
	for _, candidate := range b.Candidates {
		ids = append(ids, candidate.CandidateID)
	}
	return ids
}

// HasCandidate reports whether the id is on the ballot's roster snapshot.
func (b Ballot) HasCandidate(candidateID string) bool {
	for _, candidate := range b.Candidates {
		if candidate.CandidateID == candidateID {
			return true
		}
	}
	return false
}

// ExpiredAt reports whether the ballot can no longer produce an accepted
// vote at the given instant.
func (b Ballot) ExpiredAt(now time.Time) bool {
	return !b.ExpiresAt.After(now)
}
