package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "electora/contexts/election-core/lpv-engine/application"
	"electora/contexts/election-core/lpv-engine/application/queries"
	"electora/contexts/election-core/lpv-engine/ports"
)

// ContestRef names one election/constituency pair the reporter covers.
type ContestRef struct {
	ElectionID     string
	ConstituencyID string
}

// TallyReporter recomputes tallies for its contests and records the
// outcome as tally.completed events. Results are derived values; the
// reporter never writes to the ledger, only to the outbox.
type TallyReporter struct {
	Tally    queries.TallyUseCase
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Contests []ContestRef
	Logger   *slog.Logger
}

// RunOnce tallies every configured contest. A contest that fails leaves the
// remaining contests untouched; the first error is returned after the pass.
func (r TallyReporter) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	var firstErr error
	for _, contest := range r.Contests {
		result, err := r.Tally.Tally(ctx, contest.ElectionID, contest.ConstituencyID)
		if err != nil {
			logger.Error("tally report failed",
				"event", "lpv_tally_report_failed",
				"module", "election-core/lpv-engine",
				"layer", "worker",
				"election_id", contest.ElectionID,
				"constituency_id", contest.ConstituencyID,
				"error", err.Error(),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if err := r.appendTallyEvent(ctx, result.ElectionID, result.ConstituencyID, result.WinnerCandidateID, len(result.Rounds), result.TotalVotes); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		logger.Info("tally reported",
			"event", "lpv_tally_reported",
			"module", "election-core/lpv-engine",
			"layer", "worker",
			"election_id", result.ElectionID,
			"constituency_id", result.ConstituencyID,
			"winner_candidate_id", result.WinnerCandidateID,
			"rounds", len(result.Rounds),
		)
	}
	return firstErr
}

func (r TallyReporter) appendTallyEvent(
	ctx context.Context,
	electionID string,
	constituencyID string,
	winnerID string,
	rounds int,
	totalVotes int,
) error {
	if r.Outbox == nil {
		return nil
	}
	eventID, err := r.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}
	// Tally events carry aggregates only, never per-vote content.
	payload, err := json.Marshal(map[string]any{
		"election_id":         electionID,
		"constituency_id":     constituencyID,
		"winner_candidate_id": winnerID,
		"rounds":              rounds,
		"total_votes":         totalVotes,
		"computed_at":         now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return r.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:       eventID,
		EventType:     "tally.completed",
		SourceService: "lpv-engine",
		OccurredAt:    now,
		SchemaVersion: 1,
		PartitionKey:  electionID + "/" + constituencyID,
		Data:          payload,
	})
}
