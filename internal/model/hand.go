package model

import "time"

// AnomalyKind classifies a recoverable structural inconsistency found while
// reconstructing a hand. Anomalies are recorded, never silently fixed.
type AnomalyKind string

const (
	AnomalyForcedClose   AnomalyKind = "forced_close"
	AnomalyUnseatedActor AnomalyKind = "unseated_actor"
	AnomalyBoardShrink   AnomalyKind = "board_shrink"
)

// Anomaly is one recorded structural inconsistency.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind" toml:"kind"`
	HandID string      `json:"hand_id" toml:"hand_id"`
	Player string      `json:"player,omitempty" toml:"player,omitempty"`
	Detail string      `json:"detail" toml:"detail"`
}

// SeatInfo describes one seated player at hand start.
type SeatInfo struct {
	Name     string  `json:"name"`
	ID       string  `json:"id"`
	Stack    float64 `json:"stack"`
	Position int     `json:"position"`
}

// Hand is one complete dealt hand. The builder mutates it between the
// hand-start and hand-end events; after Finalize it must be treated as
// immutable.
type Hand struct {
	ID        string     `json:"hand_id"`
	Number    int        `json:"hand_number"`
	Timestamp time.Time  `json:"timestamp"`
	Dealer    *PlayerRef `json:"dealer,omitempty"`

	// Players maps identity key -> seat info at hand start.
	Players map[string]SeatInfo `json:"players"`

	SmallBlind float64 `json:"small_blind"`
	BigBlind   float64 `json:"big_blind"`

	Flop  []string `json:"flop,omitempty"`
	Turn  string   `json:"turn,omitempty"`
	River string   `json:"river,omitempty"`

	Actions map[Street][]Action `json:"actions"`

	// Showdowns maps identity key -> revealed cards.
	Showdowns map[string][]string `json:"showdowns,omitempty"`

	PotSize float64 `json:"pot_size"`
	// Winners maps identity key -> amount collected.
	Winners map[string]float64 `json:"winners,omitempty"`

	Anomalies []Anomaly `json:"anomalies,omitempty"`
}

// NewHand allocates an open hand accumulator.
func NewHand(id string, number int, ts time.Time, dealer *PlayerRef) *Hand {
	return &Hand{
		ID:        id,
		Number:    number,
		Timestamp: ts,
		Dealer:    dealer,
		Players:   make(map[string]SeatInfo),
		Actions: map[Street][]Action{
			StreetPreflop: {},
			StreetFlop:    {},
			StreetTurn:    {},
			StreetRiver:   {},
		},
		Showdowns: make(map[string][]string),
		Winners:   make(map[string]float64),
	}
}

// Board returns the full community board dealt so far.
func (h *Hand) Board() []string {
	board := append([]string(nil), h.Flop...)
	if h.Turn != "" {
		board = append(board, h.Turn)
	}
	if h.River != "" {
		board = append(board, h.River)
	}
	return board
}

// WentToFlop reports whether a flop was dealt.
func (h *Hand) WentToFlop() bool { return len(h.Flop) > 0 }

// WentToTurn reports whether a turn card was dealt.
func (h *Hand) WentToTurn() bool { return h.Turn != "" }

// WentToRiver reports whether a river card was dealt.
func (h *Hand) WentToRiver() bool { return h.River != "" }

// WentToShowdown reports whether any player revealed cards.
func (h *Hand) WentToShowdown() bool { return len(h.Showdowns) > 0 }

// AddAction appends an action to its street sequence, preserving log order.
func (h *Hand) AddAction(a Action) {
	h.Actions[a.Street] = append(h.Actions[a.Street], a)
}

// AddPlayer registers a seated player for this hand.
func (h *Hand) AddPlayer(name, id string, stack float64, position int) {
	key := name + " @ " + id
	h.Players[key] = SeatInfo{Name: name, ID: id, Stack: stack, Position: position}
}

// AddWinner credits a pot collection to a player. The pot size is the sum of
// all collections, so the winners-equal-pot invariant holds by construction.
func (h *Hand) AddWinner(name, id string, amount float64) {
	h.Winners[name+" @ "+id] += amount
	h.PotSize += amount
}

// AddShowdown records revealed cards for a player.
func (h *Hand) AddShowdown(name, id string, cards []string) {
	h.Showdowns[name+" @ "+id] = cards
}

// AddAnomaly records a structural inconsistency on this hand.
func (h *Hand) AddAnomaly(kind AnomalyKind, player, detail string) {
	h.Anomalies = append(h.Anomalies, Anomaly{Kind: kind, HandID: h.ID, Player: player, Detail: detail})
}

// ActionsByPlayer returns all actions by the given identity key, in street
// then log order.
func (h *Hand) ActionsByPlayer(key string) []Action {
	var out []Action
	for _, street := range Streets {
		for _, a := range h.Actions[street] {
			if a.PlayerKey() == key {
				out = append(out, a)
			}
		}
	}
	return out
}

// FoldedOn returns the street on which the player folded, or "" if they never
// folded in this hand.
func (h *Hand) FoldedOn(key string) Street {
	for _, street := range Streets {
		for _, a := range h.Actions[street] {
			if a.PlayerKey() == key && a.Kind == ActionFold {
				return street
			}
		}
	}
	return ""
}

// SawFlop reports whether the player was still in the hand when the flop was
// dealt.
func (h *Hand) SawFlop(key string) bool {
	if !h.WentToFlop() {
		return false
	}
	for _, a := range h.Actions[StreetPreflop] {
		if a.PlayerKey() == key && a.Kind == ActionFold {
			return false
		}
	}
	return true
}

// PreflopAggressor returns the identity key of the last preflop bettor or
// raiser, or "" when the pot was unraised.
func (h *Hand) PreflopAggressor() string {
	aggressor := ""
	for _, a := range h.Actions[StreetPreflop] {
		if a.IsAggressive() {
			aggressor = a.PlayerKey()
		}
	}
	return aggressor
}
