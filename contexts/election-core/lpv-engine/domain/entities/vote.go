package entities

import "time"

type VoteStatus string

const (
	VoteStatusCast        VoteStatus = "cast"
	VoteStatusCounted     VoteStatus = "counted"
	VoteStatusDisputed    VoteStatus = "disputed"
	VoteStatusInvalidated VoteStatus = "invalidated"
)

// CanTransitionTo encodes the audited status lifecycle. Selection content
// never changes; only the status moves, and invalidation is terminal.
func (s VoteStatus) CanTransitionTo(next VoteStatus) bool {
	switch s {
	case VoteStatusCast:
		return next == VoteStatusCounted || next == VoteStatusDisputed || next == VoteStatusInvalidated
	case VoteStatusDisputed:
		return next == VoteStatusCounted || next == VoteStatusInvalidated
	default:
		return false
	}
}

// VoteMeta is collaborator-supplied casting context. It is stored for audit
// and ignored by tallying. VoterIDHash is pre-hashed by the identity
// service; the raw voter id never reaches a vote record.
type VoteMeta struct {
	VoterIDHash       string
	BiometricVerified bool
	DeviceID          string
	Channel           string
}

// VoteRecord is one accepted vote. Records are append-only: after AppendVote
// the preferences, proof, and timestamps are immutable, and only the status
// may move through the audited lifecycle.
type VoteRecord struct {
	VoteID            string
	BallotID          string
	ElectionID        string
	ConstituencyID    string
	VoterIDHash       string
	Preferences       []string
	CastAt            time.Time
	IntegrityProof    string
	Status            VoteStatus
	BiometricVerified bool
	DeviceID          string
	Channel           string
	StatusReason      string
	StatusChangedAt   time.Time
}

// Countable reports whether the record participates in tallying.
func (r VoteRecord) Countable() bool {
	return r.Status == VoteStatusCast || r.Status == VoteStatusCounted
}
