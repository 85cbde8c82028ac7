package errors

import "errors"

var (
	ErrInvalidInput            = errors.New("invalid lpv input")
	ErrRosterUnavailable       = errors.New("no approved candidates for constituency")
	ErrRosterFrozen            = errors.New("candidate roster is already frozen")
	ErrNoCandidates            = errors.New("ballot cannot be issued without candidates")
	ErrElectionNotOpen         = errors.New("election is not open for voting")
	ErrBallotNotFound          = errors.New("ballot not found")
	ErrBallotExpired           = errors.New("ballot has expired")
	ErrBallotAlreadyUsed       = errors.New("ballot has already been used")
	ErrFirstPreferenceRequired = errors.New("first preference is required")
	ErrUnknownCandidate        = errors.New("preference references a candidate not on the ballot")
	ErrDuplicatePreference     = errors.New("candidate appears more than once in the selection")
	ErrIncompletePreferences   = errors.New("all three preferences are required")
	ErrVoteNotFound            = errors.New("vote record not found")
	ErrInvalidStatusTransition = errors.New("vote status transition not allowed")
	ErrTallyIntegrity          = errors.New("tally integrity violation")
	ErrConflict                = errors.New("lpv state conflict")
)
