package memory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"electora/contexts/election-core/lpv-engine/domain/entities"
	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"
	"electora/contexts/election-core/lpv-engine/ports"

	"github.com/google/uuid"
)

type electionRules struct {
	votingOpen             bool
	requiresAllPreferences bool
	allowsAbstention       bool
}

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter implementing every lpv-engine port. It
// backs tests and single-process deployments; the postgres adapter carries
// the same contracts for durable installs.
type Store struct {
	mu sync.RWMutex

	rosters   map[string][]entities.Candidate
	elections map[string]electionRules
	ballots   map[string]entities.Ballot
	votes     map[string]entities.VoteRecord
	// ballotClaims is the atomic single-use claim: ballot id -> vote id of
	// the first and only accepted record.
	ballotClaims map[string]string
	outbox       map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		rosters:      make(map[string][]entities.Candidate),
		elections:    make(map[string]electionRules),
		ballots:      make(map[string]entities.Ballot),
		votes:        make(map[string]entities.VoteRecord),
		ballotClaims: make(map[string]string),
		outbox:       make(map[string]outboxRecord),
	}
}

// SetElection configures collaborator-supplied election flags.
func (s *Store) SetElection(electionID string, votingOpen bool, requiresAll bool, allowsAbstention bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(electionID)] = electionRules{
		votingOpen:             votingOpen,
		requiresAllPreferences: requiresAll,
		allowsAbstention:       allowsAbstention,
	}
}

func (s *Store) IsVotingOpen(_ context.Context, electionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elections[strings.TrimSpace(electionID)].votingOpen, nil
}

func (s *Store) RequiresAllPreferences(_ context.Context, electionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elections[strings.TrimSpace(electionID)].requiresAllPreferences, nil
}

func (s *Store) AllowsAbstention(_ context.Context, electionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elections[strings.TrimSpace(electionID)].allowsAbstention, nil
}

func (s *Store) FreezeRoster(_ context.Context, electionID string, constituencyID string, candidates []entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rosterKey(electionID, constituencyID)
	frozen := make([]entities.Candidate, len(candidates))
	copy(frozen, candidates)
	sort.SliceStable(frozen, func(i, j int) bool {
		return frozen[i].BallotOrder < frozen[j].BallotOrder
	})

	if existing, ok := s.rosters[key]; ok {
		if !sameRoster(existing, frozen) {
			return domainerrors.ErrRosterFrozen
		}
		return nil
	}
	s.rosters[key] = frozen
	return nil
}

func (s *Store) CandidatesFor(_ context.Context, electionID string, constituencyID string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster, ok := s.rosters[rosterKey(electionID, constituencyID)]
	if !ok || len(roster) == 0 {
		return nil, domainerrors.ErrRosterUnavailable
	}
	out := make([]entities.Candidate, len(roster))
	copy(out, roster)
	return out, nil
}

func (s *Store) SaveBallot(_ context.Context, ballot entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballots[strings.TrimSpace(ballot.BallotID)] = ballot
	return nil
}

func (s *Store) GetBallot(_ context.Context, ballotID string) (entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballot, ok := s.ballots[strings.TrimSpace(ballotID)]
	if !ok {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	return ballot, nil
}

func (s *Store) AppendVote(_ context.Context, record entities.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ballotID := strings.TrimSpace(record.BallotID)
	if _, claimed := s.ballotClaims[ballotID]; claimed {
		return domainerrors.ErrBallotAlreadyUsed
	}
	voteID := strings.TrimSpace(record.VoteID)
	if _, exists := s.votes[voteID]; exists {
		return domainerrors.ErrConflict
	}
	s.ballotClaims[ballotID] = voteID
	s.votes[voteID] = record
	return nil
}

func (s *Store) GetVoteRecord(_ context.Context, voteID string) (entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok {
		return entities.VoteRecord{}, domainerrors.ErrVoteNotFound
	}
	return record, nil
}

func (s *Store) RecordsFor(_ context.Context, electionID string, constituencyID string) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	electionID = strings.TrimSpace(electionID)
	constituencyID = strings.TrimSpace(constituencyID)
	items := make([]entities.VoteRecord, 0)
	for _, record := range s.votes {
		if record.ElectionID != electionID || record.ConstituencyID != constituencyID {
			continue
		}
		if !record.Countable() {
			continue
		}
		items = append(items, record)
	}
	return items, nil
}

func (s *Store) UpdateVoteStatus(_ context.Context, voteID string, status entities.VoteStatus, reason string, changedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok {
		return domainerrors.ErrVoteNotFound
	}
	if !record.Status.CanTransitionTo(status) {
		return domainerrors.ErrInvalidStatusTransition
	}
	record.Status = status
	record.StatusReason = strings.TrimSpace(reason)
	record.StatusChangedAt = changedAt.UTC()
	s.votes[strings.TrimSpace(voteID)] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func rosterKey(electionID string, constituencyID string) string {
	return strings.TrimSpace(electionID) + "/" + strings.TrimSpace(constituencyID)
}

func sameRoster(a []entities.Candidate, b []entities.Candidate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].CandidateID != b[i].CandidateID {
			return false
		}
	}
	return true
}
