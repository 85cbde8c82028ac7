// Package lpvengine implements the limited preferential voting core inside
// the election-core context.
//
// The module owns ballot issuance against a frozen candidate roster,
// selection validation, the append-only vote ledger, and multi-round
// elimination tallying. Business rules live in the domain and application
// layers; persistence, hashing, clocks, and event publishing sit behind
// ports so the tally stays deterministic and testable.
package lpvengine
