package bootstrap

import (
	"context"
	"reflect"
	"testing"

	workerapp "electora/contexts/election-core/lpv-engine/application/workers"
	"electora/internal/platform/config"
)

func TestParseContests(t *testing.T) {
	contests := parseContests([]string{
		"election-1/west",
		"election-1 / east",
		"malformed",
		"",
	})
	want := []workerapp.ContestRef{
		{ElectionID: "election-1", ConstituencyID: "west"},
		{ElectionID: "election-1", ConstituencyID: "east"},
	}
	if !reflect.DeepEqual(contests, want) {
		t.Fatalf("unexpected contests: %v", contests)
	}
}

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":9090": ":9090",
		" 7070": ":7070",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnvDirectory(t *testing.T) {
	directory := newEnvDirectory(config.Config{
		OpenElections:         []string{"election-1"},
		RequireAllPreferences: true,
	})

	open, err := directory.IsVotingOpen(context.Background(), "election-1")
	if err != nil || !open {
		t.Fatalf("expected election-1 open, got %v %v", open, err)
	}
	open, err = directory.IsVotingOpen(context.Background(), "election-2")
	if err != nil || open {
		t.Fatalf("expected election-2 closed, got %v %v", open, err)
	}

	requiresAll, err := directory.RequiresAllPreferences(context.Background(), "election-1")
	if err != nil || !requiresAll {
		t.Fatalf("expected full preferences required, got %v %v", requiresAll, err)
	}
	abstention, err := directory.AllowsAbstention(context.Background(), "election-1")
	if err != nil || abstention {
		t.Fatalf("expected abstention off, got %v %v", abstention, err)
	}
}
