package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	BallotTTL       time.Duration
	OutboxBatchSize int

	EnableOutboxRelay  bool
	EnableTallyReports bool

	// TallyContests lists "election_id/constituency_id" pairs the results
	// worker recomputes each cycle.
	TallyContests []string

	// Election directory collaborator values. The electoral commission
	// system owns these; processes read them from the environment until a
	// live directory integration lands.
	OpenElections         []string
	RequireAllPreferences bool
	AllowAbstention       bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "electora"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	contests := splitList(os.Getenv("TALLY_CONTESTS"))
	openElections := splitList(os.Getenv("OPEN_ELECTIONS"))

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		BallotTTL:       envMinutes("BALLOT_TTL_MINUTES", 30*time.Minute),
		OutboxBatchSize: envInt("OUTBOX_BATCH_SIZE", 100),

		EnableOutboxRelay:  envBool("ENABLE_OUTBOX_RELAY", true),
		EnableTallyReports: envBool("ENABLE_TALLY_REPORTS", true),

		TallyContests: contests,

		OpenElections:         openElections,
		RequireAllPreferences: envBool("REQUIRE_ALL_PREFERENCES", false),
		AllowAbstention:       envBool("ALLOW_ABSTENTION", false),
	}, nil
}

func splitList(raw string) []string {
	var values []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envMinutes(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Minute
}
