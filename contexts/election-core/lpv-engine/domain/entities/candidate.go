package entities

// Candidate is one approved contestant on a frozen roster. Display fields
// are carried for ballot rendering and never influence tallying.
type Candidate struct {
	CandidateID    string
	ElectionID     string
	ConstituencyID string
	FullName       string
	Party          string
	Slogan         string
	BallotOrder    int
}
