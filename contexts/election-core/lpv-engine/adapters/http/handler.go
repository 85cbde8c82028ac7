package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"electora/contexts/election-core/lpv-engine/application/commands"
	"electora/contexts/election-core/lpv-engine/application/queries"
	"electora/contexts/election-core/lpv-engine/domain/entities"
	httptransport "electora/contexts/election-core/lpv-engine/transport/http"
)

// Handler maps transport DTOs onto commands and queries. The platform HTTP
// server owns status codes and error-body mapping.
type Handler struct {
	Ballots commands.BallotUseCase
	Casting commands.CastVoteUseCase
	Status  commands.VoteStatusUseCase
	Tally   queries.TallyUseCase
	Audit   queries.AuditUseCase
	Logger  *slog.Logger
}

func (h Handler) IssueBallotHandler(ctx context.Context, req httptransport.IssueBallotRequest) (httptransport.BallotResponse, error) {
	ballot, err := h.Ballots.IssueBallot(ctx, commands.IssueBallotCommand{
		ElectionID:     req.ElectionID,
		ConstituencyID: req.ConstituencyID,
		VoterID:        req.VoterID,
	})
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return ballotResponse(ballot), nil
}

func (h Handler) GetBallotHandler(ctx context.Context, ballotID string) (httptransport.BallotResponse, error) {
	ballot, err := h.Audit.Ballot(ctx, ballotID)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return ballotResponse(ballot), nil
}

func (h Handler) CastVoteHandler(ctx context.Context, req httptransport.CastVoteRequest) (httptransport.VoteRecordResponse, error) {
	record, err := h.Casting.CastVote(ctx, commands.CastVoteCommand{
		BallotID: req.BallotID,
		Selection: entities.PreferenceSelection{
			First:  req.First,
			Second: req.Second,
			Third:  req.Third,
		},
		Meta: entities.VoteMeta{
			VoterIDHash:       req.VoterIDHash,
			BiometricVerified: req.BiometricVerified,
			DeviceID:          req.DeviceID,
			Channel:           req.Channel,
		},
	})
	if err != nil {
		return httptransport.VoteRecordResponse{}, err
	}
	return voteRecordResponse(record), nil
}

func (h Handler) VoteStatusHandler(ctx context.Context, voteID string, actorID string, req httptransport.VoteStatusRequest) (httptransport.VoteRecordResponse, error) {
	record, err := h.Status.TransitionVoteStatus(ctx, commands.TransitionVoteStatusCommand{
		VoteID:  voteID,
		Status:  entities.VoteStatus(req.Status),
		Reason:  req.Reason,
		ActorID: actorID,
	})
	if err != nil {
		return httptransport.VoteRecordResponse{}, err
	}
	return voteRecordResponse(record), nil
}

func (h Handler) RecordsHandler(ctx context.Context, electionID string, constituencyID string) (httptransport.VoteRecordsResponse, error) {
	records, err := h.Audit.Records(ctx, electionID, constituencyID)
	if err != nil {
		return httptransport.VoteRecordsResponse{}, err
	}
	items := make([]httptransport.VoteRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, voteRecordResponse(record))
	}
	return httptransport.VoteRecordsResponse{Items: items}, nil
}

func (h Handler) TallyHandler(ctx context.Context, electionID string, constituencyID string) (httptransport.TallyResponse, error) {
	result, err := h.Tally.Tally(ctx, electionID, constituencyID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	resp := httptransport.TallyResponse{
		ElectionID:        result.ElectionID,
		ConstituencyID:    result.ConstituencyID,
		TotalVotes:        result.TotalVotes,
		WinnerCandidateID: result.WinnerCandidateID,
	}
	for _, round := range result.Rounds {
		item := httptransport.TallyRoundItem{
			RoundNumber:           round.RoundNumber,
			TotalCounted:          round.TotalCounted,
			ExhaustedVotes:        round.ExhaustedVotes,
			EliminatedCandidateID: round.EliminatedCandidateID,
		}
		for _, tally := range round.Counts {
			item.Counts = append(item.Counts, httptransport.CandidateTallyItem{
				CandidateID: tally.CandidateID,
				Votes:       tally.Votes,
				Percentage:  tally.Percentage,
			})
		}
		resp.Rounds = append(resp.Rounds, item)
	}
	return resp, nil
}

func ballotResponse(ballot entities.Ballot) httptransport.BallotResponse {
	candidates := make([]httptransport.BallotCandidate, 0, len(ballot.Candidates))
	for _, candidate := range ballot.Candidates {
		candidates = append(candidates, httptransport.BallotCandidate{
			CandidateID: candidate.CandidateID,
			FullName:    candidate.FullName,
			Party:       candidate.Party,
			Slogan:      candidate.Slogan,
			BallotOrder: candidate.BallotOrder,
		})
	}
	return httptransport.BallotResponse{
		BallotID:               ballot.BallotID,
		ElectionID:             ballot.ElectionID,
		ConstituencyID:         ballot.ConstituencyID,
		Candidates:             candidates,
		MaxPreferences:         ballot.MaxPreferences,
		RequiresAllPreferences: ballot.RequiresAllPreferences,
		AllowsAbstention:       ballot.AllowsAbstention,
		IssuedAt:               ballot.IssuedAt.Format(time.RFC3339),
		ExpiresAt:              ballot.ExpiresAt.Format(time.RFC3339),
		IntegrityHash:          ballot.IntegrityHash,
	}
}

func voteRecordResponse(record entities.VoteRecord) httptransport.VoteRecordResponse {
	return httptransport.VoteRecordResponse{
		VoteID:         record.VoteID,
		BallotID:       record.BallotID,
		ElectionID:     record.ElectionID,
		ConstituencyID: record.ConstituencyID,
		Preferences:    record.Preferences,
		CastAt:         record.CastAt.Format(time.RFC3339),
		IntegrityProof: record.IntegrityProof,
		Status:         string(record.Status),
		StatusReason:   record.StatusReason,
	}
}
