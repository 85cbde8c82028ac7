package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"electora/contexts/election-core/lpv-engine/domain/entities"
	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"
	"electora/contexts/election-core/lpv-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository is the durable adapter for roster, ballots, ledger, and
// outbox. The ledger's single-use guarantee rides on the unique index over
// ballot_id: the database arbitrates concurrent appends, not this process.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the lpv tables. Intended for bootstrap and tests; managed
// environments run proper migrations instead.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&rosterModel{}, &candidateModel{}, &ballotModel{}, &voteModel{}, &outboxModel{})
}

// FreezeRoster claims the contest by inserting the lpv_rosters row and the
// member rows in a single transaction. A losing concurrent freeze blocks on
// the claim's primary key until the winner commits, then its unique
// violation resolves against the winner's committed membership.
func (r *Repository) FreezeRoster(ctx context.Context, electionID string, constituencyID string, candidates []entities.Candidate) error {
	electionID = strings.TrimSpace(electionID)
	constituencyID = strings.TrimSpace(constituencyID)
	if electionID == "" || constituencyID == "" || len(candidates) == 0 {
		return domainerrors.ErrInvalidInput
	}

	members, err := rosterMembers(candidates)
	if err != nil {
		return err
	}
	rows := make([]candidateModel, 0, len(candidates))
	for _, candidate := range candidates {
		rows = append(rows, candidateModelFromEntity(electionID, constituencyID, candidate))
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := rosterModel{
			ElectionID:     electionID,
			ConstituencyID: constituencyID,
			Members:        members,
			FrozenAt:       time.Now().UTC(),
		}
		if err := tx.Create(&claim).Error; err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return r.logError("lpv_repo_freeze_roster_failed", err,
			"election_id", electionID,
			"constituency_id", constituencyID,
		)
	}

	existing, readErr := r.CandidatesFor(ctx, electionID, constituencyID)
	if readErr != nil {
		return readErr
	}
	if !sameRosterMembership(existing, candidates) {
		return domainerrors.ErrRosterFrozen
	}
	return nil
}

func (r *Repository) CandidatesFor(ctx context.Context, electionID string, constituencyID string) ([]entities.Candidate, error) {
	var rows []candidateModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("constituency_id = ?", strings.TrimSpace(constituencyID)).
		Order("ballot_order ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("lpv_repo_candidates_for_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"constituency_id", strings.TrimSpace(constituencyID),
		)
	}
	if len(rows) == 0 {
		return nil, domainerrors.ErrRosterUnavailable
	}
	candidates := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, row.toEntity())
	}
	return candidates, nil
}

func (r *Repository) SaveBallot(ctx context.Context, ballot entities.Ballot) error {
	row, err := ballotModelFromEntity(ballot)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("lpv_repo_save_ballot_failed", err, "ballot_id", ballot.BallotID)
	}
	return nil
}

func (r *Repository) GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(ballotID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, domainerrors.ErrBallotNotFound
		}
		return entities.Ballot{}, r.logError("lpv_repo_get_ballot_failed", err, "ballot_id", strings.TrimSpace(ballotID))
	}
	return row.toEntity()
}

func (r *Repository) AppendVote(ctx context.Context, record entities.VoteRecord) error {
	row, err := voteModelFromEntity(record)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrBallotAlreadyUsed
		}
		return r.logError("lpv_repo_append_vote_failed", err,
			"vote_id", record.VoteID,
			"ballot_id", record.BallotID,
		)
	}
	return nil
}

func (r *Repository) GetVoteRecord(ctx context.Context, voteID string) (entities.VoteRecord, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteRecord{}, domainerrors.ErrVoteNotFound
		}
		return entities.VoteRecord{}, r.logError("lpv_repo_get_vote_failed", err, "vote_id", strings.TrimSpace(voteID))
	}
	return row.toEntity()
}

func (r *Repository) RecordsFor(ctx context.Context, electionID string, constituencyID string) ([]entities.VoteRecord, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("constituency_id = ?", strings.TrimSpace(constituencyID)).
		Where("status IN ?", []string{string(entities.VoteStatusCast), string(entities.VoteStatusCounted)}).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("lpv_repo_records_for_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"constituency_id", strings.TrimSpace(constituencyID),
		)
	}
	records := make([]entities.VoteRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *Repository) UpdateVoteStatus(ctx context.Context, voteID string, status entities.VoteStatus, reason string, changedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row voteModel
		err := tx.Where("id = ?", strings.TrimSpace(voteID)).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrVoteNotFound
			}
			return err
		}
		if !entities.VoteStatus(row.Status).CanTransitionTo(status) {
			return domainerrors.ErrInvalidStatusTransition
		}
		return tx.Model(&voteModel{}).
			Where("id = ?", row.VoteID).
			Updates(map[string]any{
				"status":            string(status),
				"status_reason":     strings.TrimSpace(reason),
				"status_changed_at": changedAt.UTC(),
			}).Error
	})
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("lpv_repo_append_outbox_failed", err, "outbox_id", row.OutboxID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("lpv_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	at := publishedAt.UTC()
	result := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Where("status = ?", outboxStatusPending).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &at,
		})
	if result.Error != nil {
		return r.logError("lpv_repo_mark_outbox_failed", result.Error, "outbox_id", strings.TrimSpace(outboxID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := append([]any{
		"event", event,
		"module", "election-core/lpv-engine",
		"layer", "adapter",
	}, attrs...)
	fields = append(fields, "error", err.Error())
	r.logger.Error("lpv postgres adapter failure", fields...)
	return err
}

func sameRosterMembership(a []entities.Candidate, b []entities.Candidate) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[string]struct{}, len(a))
	for _, candidate := range a {
		ids[candidate.CandidateID] = struct{}{}
	}
	for _, candidate := range b {
		if _, ok := ids[candidate.CandidateID]; !ok {
			return false
		}
	}
	return true
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
