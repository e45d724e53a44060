package model

// LedgerEntry is one cash-flow record from the companion ledger file: one
// player session with its buy-in, cash-out and remaining stack. Ledger data
// only cross-checks hand-derived profit, it never drives hand content.
type LedgerEntry struct {
	Nickname     string  `json:"player_nickname"`
	PlayerID     string  `json:"player_id"`
	SessionStart string  `json:"session_start_at,omitempty"`
	SessionEnd   string  `json:"session_end_at,omitempty"`
	BuyIn        float64 `json:"buy_in"`
	BuyOut       float64 `json:"buy_out"`
	Stack        float64 `json:"stack"`
	Net          float64 `json:"net"`
}

// PlayerKey returns the combined identity key.
func (e LedgerEntry) PlayerKey() string {
	return e.Nickname + " @ " + e.PlayerID
}

// LedgerTotals aggregates all ledger rows for one player.
type LedgerTotals struct {
	Nickname   string
	PlayerID   string
	BuyIn      float64
	BuyOut     float64
	FinalStack float64
	Net        float64
	Sessions   int
}
