package model

// Player is a canonical identity aggregated across hands and, after a merge,
// across days. It is mutated incrementally while hands are built and
// finalized by ledger reconciliation.
type Player struct {
	Name string `json:"name"`
	ID   string `json:"player_id"`

	// Aliases holds display names folded into this identity by a merge.
	Aliases []string `json:"aliases,omitempty"`

	HandsPlayed int     `json:"hands_played"`
	TotalProfit float64 `json:"total_profit"`

	// Ledger-sourced financials.
	TotalBuyIn  float64 `json:"total_buy_in"`
	TotalBuyOut float64 `json:"total_buy_out"`
	FinalStack  float64 `json:"final_stack"`
	Sessions    int     `json:"sessions"`

	HandIDs []string `json:"hand_ids"`

	// Per-hand bookkeeping, keyed by hand ID.
	StartingStacks map[string]float64 `json:"starting_stacks"`
	HandProfits    map[string]float64 `json:"hand_profits"`
	HandBuyIns     map[string]float64 `json:"hand_buyins"`
}

// NewPlayer allocates an empty player record.
func NewPlayer(name, id string) *Player {
	return &Player{
		Name:           name,
		ID:             id,
		StartingStacks: make(map[string]float64),
		HandProfits:    make(map[string]float64),
		HandBuyIns:     make(map[string]float64),
	}
}

// Key returns the combined identity key.
func (p *Player) Key() string {
	return p.Name + " @ " + p.ID
}

// AddHand records participation in a hand with the player's starting stack.
// Duplicate hand IDs are ignored.
func (p *Player) AddHand(handID string, startingStack float64) {
	for _, id := range p.HandIDs {
		if id == handID {
			return
		}
	}
	p.HandIDs = append(p.HandIDs, handID)
	p.HandsPlayed++
	p.StartingStacks[handID] = startingStack
}

// SetLedgerData applies the ledger-sourced financial totals. The real net
// profit is cash-out plus remaining stack minus total buy-in.
func (p *Player) SetLedgerData(buyIn, buyOut, finalStack float64, sessions int) {
	p.TotalBuyIn = buyIn
	p.TotalBuyOut = buyOut
	p.FinalStack = finalStack
	p.Sessions = sessions
	p.TotalProfit = buyOut + finalStack - buyIn
}

// HandProfitSum returns the accumulated per-hand profit.
func (p *Player) HandProfitSum() float64 {
	sum := 0.0
	for _, v := range p.HandProfits {
		sum += v
	}
	return sum
}

// BuyInEvents returns the number of hands with a recorded rebuy or add-on.
func (p *Player) BuyInEvents() int {
	n := 0
	for _, v := range p.HandBuyIns {
		if v > 0 {
			n++
		}
	}
	return n
}
