package entities

import "testing"

func TestVoteStatusTransitions(t *testing.T) {
	cases := []struct {
		from    VoteStatus
		to      VoteStatus
		allowed bool
	}{
		{VoteStatusCast, VoteStatusCounted, true},
		{VoteStatusCast, VoteStatusDisputed, true},
		{VoteStatusCast, VoteStatusInvalidated, true},
		{VoteStatusDisputed, VoteStatusCounted, true},
		{VoteStatusDisputed, VoteStatusInvalidated, true},
		{VoteStatusCounted, VoteStatusDisputed, false},
		{VoteStatusCounted, VoteStatusCast, false},
		{VoteStatusInvalidated, VoteStatusCounted, false},
		{VoteStatusInvalidated, VoteStatusCast, false},
		{VoteStatusCast, VoteStatusCast, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Fatalf("transition %s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestVoteRecordCountable(t *testing.T) {
	if !(VoteRecord{Status: VoteStatusCast}).Countable() {
		t.Fatalf("cast records must count")
	}
	if !(VoteRecord{Status: VoteStatusCounted}).Countable() {
		t.Fatalf("counted records must count")
	}
	if (VoteRecord{Status: VoteStatusDisputed}).Countable() {
		t.Fatalf("disputed records must not count")
	}
	if (VoteRecord{Status: VoteStatusInvalidated}).Countable() {
		t.Fatalf("invalidated records must not count")
	}
}
