package postgresadapter

import (
	"encoding/json"
	"time"

	"electora/contexts/election-core/lpv-engine/domain/entities"
)

// candidateModel keys on the full contest triple: the same candidate id may
// legitimately stand in another election or constituency.
type candidateModel struct {
	ElectionID     string `gorm:"column:election_id;primaryKey"`
	ConstituencyID string `gorm:"column:constituency_id;primaryKey"`
	CandidateID    string `gorm:"column:candidate_id;primaryKey"`
	FullName       string `gorm:"column:full_name"`
	Party          string `gorm:"column:party"`
	Slogan         string `gorm:"column:slogan"`
	BallotOrder    int    `gorm:"column:ballot_order"`
}

func (candidateModel) TableName() string {
	return "lpv_candidates"
}

// rosterModel is the per-contest freeze claim. It is inserted before the
// member rows inside the freeze transaction, so its primary key arbitrates
// concurrent freezes of the same contest.
type rosterModel struct {
	ElectionID     string    `gorm:"column:election_id;primaryKey"`
	ConstituencyID string    `gorm:"column:constituency_id;primaryKey"`
	Members        string    `gorm:"column:members"`
	FrozenAt       time.Time `gorm:"column:frozen_at"`
}

func (rosterModel) TableName() string {
	return "lpv_rosters"
}

func rosterMembers(candidates []entities.Candidate) (string, error) {
	ids := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.CandidateID)
	}
	snapshot, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(snapshot), nil
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID:    m.CandidateID,
		ElectionID:     m.ElectionID,
		ConstituencyID: m.ConstituencyID,
		FullName:       m.FullName,
		Party:          m.Party,
		Slogan:         m.Slogan,
		BallotOrder:    m.BallotOrder,
	}
}

func candidateModelFromEntity(electionID string, constituencyID string, candidate entities.Candidate) candidateModel {
	return candidateModel{
		CandidateID:    candidate.CandidateID,
		ElectionID:     electionID,
		ConstituencyID: constituencyID,
		FullName:       candidate.FullName,
		Party:          candidate.Party,
		Slogan:         candidate.Slogan,
		BallotOrder:    candidate.BallotOrder,
	}
}

type ballotModel struct {
	BallotID               string    `gorm:"column:id;primaryKey"`
	ElectionID             string    `gorm:"column:election_id"`
	ConstituencyID         string    `gorm:"column:constituency_id"`
	VoterID                string    `gorm:"column:voter_id"`
	Candidates             string    `gorm:"column:candidates"`
	MaxPreferences         int       `gorm:"column:max_preferences"`
	RequiresAllPreferences bool      `gorm:"column:requires_all_preferences"`
	AllowsAbstention       bool      `gorm:"column:allows_abstention"`
	IssuedAt               time.Time `gorm:"column:issued_at"`
	ExpiresAt              time.Time `gorm:"column:expires_at"`
	IntegrityHash          string    `gorm:"column:integrity_hash"`
}

func (ballotModel) TableName() string {
	return "lpv_ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) (ballotModel, error) {
	snapshot, err := json.Marshal(ballot.Candidates)
	if err != nil {
		return ballotModel{}, err
	}
	return ballotModel{
		BallotID:               ballot.BallotID,
		ElectionID:             ballot.ElectionID,
		ConstituencyID:         ballot.ConstituencyID,
		VoterID:                ballot.VoterID,
		Candidates:             string(snapshot),
		MaxPreferences:         ballot.MaxPreferences,
		RequiresAllPreferences: ballot.RequiresAllPreferences,
		AllowsAbstention:       ballot.AllowsAbstention,
		IssuedAt:               ballot.IssuedAt,
		ExpiresAt:              ballot.ExpiresAt,
		IntegrityHash:          ballot.IntegrityHash,
	}, nil
}

func (m ballotModel) toEntity() (entities.Ballot, error) {
	var candidates []entities.Candidate
	if m.Candidates != "" {
		if err := json.Unmarshal([]byte(m.Candidates), &candidates); err != nil {
			return entities.Ballot{}, err
		}
	}
	return entities.Ballot{
		BallotID:               m.BallotID,
		ElectionID:             m.ElectionID,
		ConstituencyID:         m.ConstituencyID,
		VoterID:                m.VoterID,
		Candidates:             candidates,
		MaxPreferences:         m.MaxPreferences,
		RequiresAllPreferences: m.RequiresAllPreferences,
		AllowsAbstention:       m.AllowsAbstention,
		IssuedAt:               m.IssuedAt,
		ExpiresAt:              m.ExpiresAt,
		IntegrityHash:          m.IntegrityHash,
	}, nil
}

type voteModel struct {
	VoteID            string    `gorm:"column:id;primaryKey"`
	BallotID          string    `gorm:"column:ballot_id;uniqueIndex:uq_lpv_votes_ballot"`
	ElectionID        string    `gorm:"column:election_id;index:idx_lpv_votes_contest"`
	ConstituencyID    string    `gorm:"column:constituency_id;index:idx_lpv_votes_contest"`
	VoterIDHash       string    `gorm:"column:voter_id_hash"`
	Preferences       string    `gorm:"column:preferences"`
	CastAt            time.Time `gorm:"column:cast_at"`
	IntegrityProof    string    `gorm:"column:integrity_proof"`
	Status            string    `gorm:"column:status"`
	BiometricVerified bool      `gorm:"column:biometric_verified"`
	DeviceID          string    `gorm:"column:device_id"`
	Channel           string    `gorm:"column:channel"`
	StatusReason      string    `gorm:"column:status_reason"`
	StatusChangedAt   time.Time `gorm:"column:status_changed_at"`
}

func (voteModel) TableName() string {
	return "lpv_votes"
}

func voteModelFromEntity(record entities.VoteRecord) (voteModel, error) {
	preferences, err := json.Marshal(record.Preferences)
	if err != nil {
		return voteModel{}, err
	}
	return voteModel{
		VoteID:            record.VoteID,
		BallotID:          record.BallotID,
		ElectionID:        record.ElectionID,
		ConstituencyID:    record.ConstituencyID,
		VoterIDHash:       record.VoterIDHash,
		Preferences:       string(preferences),
		CastAt:            record.CastAt,
		IntegrityProof:    record.IntegrityProof,
		Status:            string(record.Status),
		BiometricVerified: record.BiometricVerified,
		DeviceID:          record.DeviceID,
		Channel:           record.Channel,
		StatusReason:      record.StatusReason,
		StatusChangedAt:   record.StatusChangedAt,
	}, nil
}

func (m voteModel) toEntity() (entities.VoteRecord, error) {
	var preferences []string
	if m.Preferences != "" {
		if err := json.Unmarshal([]byte(m.Preferences), &preferences); err != nil {
			return entities.VoteRecord{}, err
		}
	}
	return entities.VoteRecord{
		VoteID:            m.VoteID,
		BallotID:          m.BallotID,
		ElectionID:        m.ElectionID,
		ConstituencyID:    m.ConstituencyID,
		VoterIDHash:       m.VoterIDHash,
		Preferences:       preferences,
		CastAt:            m.CastAt,
		IntegrityProof:    m.IntegrityProof,
		Status:            entities.VoteStatus(m.Status),
		BiometricVerified: m.BiometricVerified,
		DeviceID:          m.DeviceID,
		Channel:           m.Channel,
		StatusReason:      m.StatusReason,
		StatusChangedAt:   m.StatusChangedAt,
	}, nil
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index:idx_lpv_outbox_status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "lpv_outbox"
}
