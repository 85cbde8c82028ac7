package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	lpvengine "electora/contexts/election-core/lpv-engine"
	"electora/contexts/election-core/lpv-engine/domain/entities"
	lpvhttp "electora/contexts/election-core/lpv-engine/transport/http"
	"electora/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	module := lpvengine.NewInMemoryModule(nil)
	module.Store.SetElection("election-1", true, false, false)
	err := module.Store.FreezeRoster(context.Background(), "election-1", "west", []entities.Candidate{
		{CandidateID: "cand-a", ElectionID: "election-1", ConstituencyID: "west", FullName: "Alice Kaupa", BallotOrder: 1},
		{CandidateID: "cand-b", ElectionID: "election-1", ConstituencyID: "west", FullName: "Bernard Wari", BallotOrder: 2},
		{CandidateID: "cand-c", ElectionID: "election-1", ConstituencyID: "west", FullName: "Cathy Aua", BallotOrder: 3},
	})
	if err != nil {
		t.Fatalf("freeze roster failed: %v", err)
	}
	return New(module, metrics.NewWith(prometheus.NewRegistry()), nil, ":0")
}

func doJSON(t *testing.T, server *Server, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Actor-Id", "official-1")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func issueBallotHTTP(t *testing.T, server *Server, voterID string) lpvhttp.BallotResponse {
	t.Helper()
	recorder := doJSON(t, server, http.MethodPost, "/v1/lpv/ballots", lpvhttp.IssueBallotRequest{
		ElectionID:     "election-1",
		ConstituencyID: "west",
		VoterID:        voterID,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("issue ballot: status %d body %s", recorder.Code, recorder.Body.String())
	}
	var resp lpvhttp.BallotResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode ballot response failed: %v", err)
	}
	return resp
}

func castVoteHTTP(t *testing.T, server *Server, ballotID string, voterHash string, first string, second string) lpvhttp.VoteRecordResponse {
	t.Helper()
	recorder := doJSON(t, server, http.MethodPost, "/v1/lpv/votes", lpvhttp.CastVoteRequest{
		BallotID:    ballotID,
		First:       first,
		Second:      second,
		VoterIDHash: voterHash,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("cast vote: status %d body %s", recorder.Code, recorder.Body.String())
	}
	var resp lpvhttp.VoteRecordResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode vote response failed: %v", err)
	}
	return resp
}

func TestBallotToTallyFlow(t *testing.T) {
	server := newTestServer(t)

	// Five voters, one transfer: cand-c drops, its vote flows to cand-a.
	selections := []struct{ first, second string }{
		{"cand-a", "cand-b"},
		{"cand-a", "cand-b"},
		{"cand-b", "cand-c"},
		{"cand-b", "cand-c"},
		{"cand-c", "cand-a"},
	}
	for i, sel := range selections {
		ballot := issueBallotHTTP(t, server, fmt.Sprintf("voter-%d", i))
		castVoteHTTP(t, server, ballot.BallotID, fmt.Sprintf("hash-%d", i), sel.first, sel.second)
	}

	recorder := doJSON(t, server, http.MethodGet, "/v1/lpv/tally?election_id=election-1&constituency_id=west", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("tally: status %d body %s", recorder.Code, recorder.Body.String())
	}
	var tally lpvhttp.TallyResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &tally); err != nil {
		t.Fatalf("decode tally failed: %v", err)
	}
	if tally.WinnerCandidateID != "cand-a" {
		t.Fatalf("expected cand-a to win, got %q", tally.WinnerCandidateID)
	}
	if len(tally.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(tally.Rounds))
	}
	if tally.TotalVotes != 5 {
		t.Fatalf("expected 5 votes, got %d", tally.TotalVotes)
	}
}

func TestBallotResponseOmitsVoterIdentity(t *testing.T) {
	server := newTestServer(t)
	ballot := issueBallotHTTP(t, server, "voter-1")

	recorder := doJSON(t, server, http.MethodGet, "/v1/lpv/ballots/"+ballot.BallotID, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("get ballot: status %d body %s", recorder.Code, recorder.Body.String())
	}
	var raw map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	for _, field := range []string{"voter_id", "VoterID"} {
		if _, leaked := raw[field]; leaked {
			t.Fatalf("ballot response must not expose %s", field)
		}
	}
}

func TestCastVoteConflictOnReusedBallot(t *testing.T) {
	server := newTestServer(t)
	ballot := issueBallotHTTP(t, server, "voter-1")
	castVoteHTTP(t, server, ballot.BallotID, "hash-1", "cand-a", "")

	recorder := doJSON(t, server, http.MethodPost, "/v1/lpv/votes", lpvhttp.CastVoteRequest{
		BallotID:    ballot.BallotID,
		First:       "cand-b",
		VoterIDHash: "hash-1",
	})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body %s", recorder.Code, recorder.Body.String())
	}
	var errResp lpvhttp.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error failed: %v", err)
	}
	if errResp.Code != "ballot_already_used" {
		t.Fatalf("expected ballot_already_used, got %q", errResp.Code)
	}
}

func TestCastVoteRejectionStatusCodes(t *testing.T) {
	server := newTestServer(t)

	ballot := issueBallotHTTP(t, server, "voter-1")
	recorder := doJSON(t, server, http.MethodPost, "/v1/lpv/votes", lpvhttp.CastVoteRequest{
		BallotID:    ballot.BallotID,
		First:       "cand-a",
		Second:      "cand-a",
		VoterIDHash: "hash-1",
	})
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate preference: expected 422, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodPost, "/v1/lpv/votes", lpvhttp.CastVoteRequest{
		BallotID:    "missing-ballot",
		First:       "cand-a",
		VoterIDHash: "hash-1",
	})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown ballot: expected 404, got %d", recorder.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/lpv/votes", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: expected 400, got %d", rec.Code)
	}
}

func TestVoteStatusEndpoint(t *testing.T) {
	server := newTestServer(t)
	ballot := issueBallotHTTP(t, server, "voter-1")
	record := castVoteHTTP(t, server, ballot.BallotID, "hash-1", "cand-a", "")

	recorder := doJSON(t, server, http.MethodPost, "/v1/lpv/votes/"+record.VoteID+"/status", lpvhttp.VoteStatusRequest{
		Status: "disputed",
		Reason: "observer challenge",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("dispute: status %d body %s", recorder.Code, recorder.Body.String())
	}
	var resp lpvhttp.VoteRecordResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if resp.Status != "disputed" || resp.StatusReason != "observer challenge" {
		t.Fatalf("unexpected status response: %+v", resp)
	}

	// Without the actor header the transition is refused up front.
	req := httptest.NewRequest(http.MethodPost, "/v1/lpv/votes/"+record.VoteID+"/status", bytes.NewReader([]byte(`{"status":"counted"}`)))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing actor: expected 400, got %d", rec.Code)
	}
}

func TestListVotesEndpoint(t *testing.T) {
	server := newTestServer(t)
	ballot := issueBallotHTTP(t, server, "voter-1")
	castVoteHTTP(t, server, ballot.BallotID, "hash-1", "cand-b", "cand-c")

	recorder := doJSON(t, server, http.MethodGet, "/v1/lpv/votes?election_id=election-1&constituency_id=west", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list votes: status %d body %s", recorder.Code, recorder.Body.String())
	}
	var resp lpvhttp.VoteRecordsResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Preferences[0] != "cand-b" {
		t.Fatalf("unexpected listing: %+v", resp.Items)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	server := newTestServer(t)
	recorder := doJSON(t, server, http.MethodGet, "/metrics", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", recorder.Code)
	}
}
