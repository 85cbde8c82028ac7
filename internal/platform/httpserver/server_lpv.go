package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	lpverrors "electora/contexts/election-core/lpv-engine/domain/errors"
	lpvhttp "electora/contexts/election-core/lpv-engine/transport/http"
)

func writeLPVError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, lpvhttp.ErrorResponse{Code: code, Message: message})
}

func writeLPVDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lpverrors.ErrInvalidInput):
		writeLPVError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, lpverrors.ErrBallotExpired):
		writeLPVError(w, http.StatusUnprocessableEntity, "ballot_expired", err.Error())
	case errors.Is(err, lpverrors.ErrFirstPreferenceRequired):
		writeLPVError(w, http.StatusUnprocessableEntity, "first_preference_required", err.Error())
	case errors.Is(err, lpverrors.ErrUnknownCandidate):
		writeLPVError(w, http.StatusUnprocessableEntity, "unknown_candidate", err.Error())
	case errors.Is(err, lpverrors.ErrDuplicatePreference):
		writeLPVError(w, http.StatusUnprocessableEntity, "duplicate_preference", err.Error())
	case errors.Is(err, lpverrors.ErrIncompletePreferences):
		writeLPVError(w, http.StatusUnprocessableEntity, "incomplete_preferences", err.Error())
	case errors.Is(err, lpverrors.ErrBallotAlreadyUsed):
		writeLPVError(w, http.StatusConflict, "ballot_already_used", err.Error())
	case errors.Is(err, lpverrors.ErrElectionNotOpen):
		writeLPVError(w, http.StatusConflict, "election_not_open", err.Error())
	case errors.Is(err, lpverrors.ErrNoCandidates):
		writeLPVError(w, http.StatusConflict, "no_candidates", err.Error())
	case errors.Is(err, lpverrors.ErrInvalidStatusTransition):
		writeLPVError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, lpverrors.ErrBallotNotFound):
		writeLPVError(w, http.StatusNotFound, "ballot_not_found", err.Error())
	case errors.Is(err, lpverrors.ErrVoteNotFound):
		writeLPVError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, lpverrors.ErrRosterUnavailable):
		writeLPVError(w, http.StatusNotFound, "roster_unavailable", err.Error())
	case errors.Is(err, lpverrors.ErrTallyIntegrity):
		writeLPVError(w, http.StatusInternalServerError, "tally_integrity", err.Error())
	default:
		writeLPVError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func isSelectionRejection(err error) bool {
	return errors.Is(err, lpverrors.ErrBallotExpired) ||
		errors.Is(err, lpverrors.ErrFirstPreferenceRequired) ||
		errors.Is(err, lpverrors.ErrUnknownCandidate) ||
		errors.Is(err, lpverrors.ErrDuplicatePreference) ||
		errors.Is(err, lpverrors.ErrIncompletePreferences)
}

func (s *Server) handleIssueBallot(w http.ResponseWriter, r *http.Request) {
	var req lpvhttp.IssueBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLPVError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.lpv.Handler.IssueBallotHandler(r.Context(), req)
	if err != nil {
		writeLPVDomainError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementBallotsIssued()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetBallot(w http.ResponseWriter, r *http.Request) {
	ballotID := strings.TrimSpace(r.PathValue("ballot_id"))
	if ballotID == "" {
		writeLPVError(w, http.StatusBadRequest, "invalid_input", "ballot_id is required")
		return
	}

	resp, err := s.lpv.Handler.GetBallotHandler(r.Context(), ballotID)
	if err != nil {
		writeLPVDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req lpvhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLPVError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.lpv.Handler.CastVoteHandler(r.Context(), req)
	if err != nil {
		if s.metrics != nil {
			switch {
			case errors.Is(err, lpverrors.ErrBallotAlreadyUsed):
				s.metrics.IncrementBallotConflicts()
			case isSelectionRejection(err):
				s.metrics.IncrementVotesRejected()
			}
		}
		writeLPVDomainError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementVotesCast()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleVoteStatus(w http.ResponseWriter, r *http.Request) {
	voteID := strings.TrimSpace(r.PathValue("vote_id"))
	actorID := strings.TrimSpace(r.Header.Get("X-Actor-Id"))
	if voteID == "" {
		writeLPVError(w, http.StatusBadRequest, "invalid_input", "vote_id is required")
		return
	}
	if actorID == "" {
		writeLPVError(w, http.StatusBadRequest, "invalid_input", "X-Actor-Id header is required")
		return
	}

	var req lpvhttp.VoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLPVError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.lpv.Handler.VoteStatusHandler(r.Context(), voteID, actorID, req)
	if err != nil {
		writeLPVDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	electionID := strings.TrimSpace(r.URL.Query().Get("election_id"))
	constituencyID := strings.TrimSpace(r.URL.Query().Get("constituency_id"))

	resp, err := s.lpv.Handler.RecordsHandler(r.Context(), electionID, constituencyID)
	if err != nil {
		writeLPVDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	electionID := strings.TrimSpace(r.URL.Query().Get("election_id"))
	constituencyID := strings.TrimSpace(r.URL.Query().Get("constituency_id"))

	resp, err := s.lpv.Handler.TallyHandler(r.Context(), electionID, constituencyID)
	if err != nil {
		writeLPVDomainError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveTally(len(resp.Rounds))
	}
	writeJSON(w, http.StatusOK, resp)
}
