package queries

import (
	"context"
	"sort"
	"strings"

	"electora/contexts/election-core/lpv-engine/domain/entities"
	domainerrors "electora/contexts/election-core/lpv-engine/domain/errors"
	"electora/contexts/election-core/lpv-engine/ports"
)

// AuditUseCase serves read-only ballot and ledger lookups for the results
// and audit surfaces.
type AuditUseCase struct {
	Ballots ports.BallotStore
	Ledger  ports.VoteLedger
}

// Ballot resolves an issued ballot by id.
func (uc AuditUseCase) Ballot(ctx context.Context, ballotID string) (entities.Ballot, error) {
	ballotID = strings.TrimSpace(ballotID)
	if ballotID == "" {
		return entities.Ballot{}, domainerrors.ErrInvalidInput
	}
	return uc.Ballots.GetBallot(ctx, ballotID)
}

// Records lists countable records for one election/constituency pair. The
// ledger guarantees no ordering, so the listing sorts by cast time and vote
// id to keep audit output stable.
func (uc AuditUseCase) Records(ctx context.Context, electionID string, constituencyID string) ([]entities.VoteRecord, error) {
	electionID = strings.TrimSpace(electionID)
	constituencyID = strings.TrimSpace(constituencyID)
	if electionID == "" || constituencyID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	records, err := uc.Ledger.RecordsFor(ctx, electionID, constituencyID)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CastAt.Equal(records[j].CastAt) {
			return records[i].VoteID < records[j].VoteID
		}
		return records[i].CastAt.Before(records[j].CastAt)
	})
	return records, nil
}
