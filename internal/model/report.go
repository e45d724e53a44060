package model

import "fmt"

// PlayerDiscrepancy is one per-player ledger cross-check result. Discrepancy
// is signed: positive means the ledger shows more profit than the hands do.
type PlayerDiscrepancy struct {
	PlayerKey    string  `json:"player_key" toml:"player_key"`
	PlayerName   string  `json:"player_name" toml:"player_name"`
	HandProfit   float64 `json:"hand_profit" toml:"hand_profit"`
	LedgerProfit float64 `json:"ledger_profit" toml:"ledger_profit"`
	Discrepancy  float64 `json:"discrepancy" toml:"discrepancy"`
	BuyInEvents  int     `json:"buy_in_events" toml:"buy_in_events"`
}

// MergeCandidate is a pair of identities that look similar but do not meet
// the merge rule. Candidates are reported for confirmation, never guessed.
type MergeCandidate struct {
	A        string `json:"a" toml:"a"`
	B        string `json:"b" toml:"b"`
	Distance int    `json:"distance" toml:"distance"`
}

// Report is the structured verification result returned alongside a dataset.
// Every non-fatal condition the pipeline encounters appears here; nothing is
// silently swallowed.
type Report struct {
	ZeroSum  bool    `json:"zero_sum" toml:"zero_sum"`
	NetTotal float64 `json:"net_total" toml:"net_total"`
	Epsilon  float64 `json:"epsilon" toml:"epsilon"`

	Discrepancies   []PlayerDiscrepancy `json:"discrepancies,omitempty" toml:"discrepancy,omitempty"`
	MissingLedger   []string            `json:"missing_ledger,omitempty" toml:"missing_ledger,omitempty"`
	Anomalies       []Anomaly           `json:"anomalies,omitempty" toml:"anomaly,omitempty"`
	MergeCandidates []MergeCandidate    `json:"merge_candidates,omitempty" toml:"merge_candidate,omitempty"`
}

// Clean reports whether the dataset verified without any finding.
func (r *Report) Clean() bool {
	return r.ZeroSum &&
		len(r.MissingLedger) == 0 &&
		len(r.Anomalies) == 0 &&
		!r.HasMismatch()
}

// HasMismatch reports whether any player's ledger figure disagrees with the
// hand-derived figure beyond epsilon.
func (r *Report) HasMismatch() bool {
	for _, d := range r.Discrepancies {
		if d.Discrepancy > r.Epsilon || d.Discrepancy < -r.Epsilon {
			return true
		}
	}
	return false
}

// MergeConflictError reports an attempted identity merge that would combine
// overlapping hand identifiers. It is fatal for that merge operation only.
type MergeConflictError struct {
	HandID string
	A, B   string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict: hand %s appears under both %q and %q", e.HandID, e.A, e.B)
}
