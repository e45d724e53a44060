package model

import "time"

// EventKind represents a parsed log event type with type safety
type EventKind string

// EventKind constants for the raw log event stream.
// These are decided once at parse time; downstream code never re-parses
// the raw entry text.
const (
	EventHandStart    EventKind = "hand_start"
	EventHandEnd      EventKind = "hand_end"
	EventPlayerSeated EventKind = "player_seated"
	EventBlindPosted  EventKind = "blind_posted"
	EventActionTaken  EventKind = "action_taken"
	EventBoardDealt   EventKind = "board_dealt"
	EventShowdown     EventKind = "showdown_revealed"
	EventPotCollected EventKind = "pot_collected"
	EventUncalledBet  EventKind = "uncalled_bet"
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventPlayerRebuy  EventKind = "player_rebought"
	EventUnknown      EventKind = "unknown"
)

// String returns the string representation of the event kind
func (k EventKind) String() string {
	return string(k)
}

// Street represents a betting round
type Street string

const (
	StreetPreflop Street = "preflop"
	StreetFlop    Street = "flop"
	StreetTurn    Street = "turn"
	StreetRiver   Street = "river"
)

// Streets lists the betting rounds in play order.
var Streets = []Street{StreetPreflop, StreetFlop, StreetTurn, StreetRiver}

// PlayerRef identifies a player as it appears in a single log entry.
type PlayerRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Key returns the combined identity key used throughout the dataset.
func (p PlayerRef) Key() string {
	return p.Name + " @ " + p.ID
}

// SeatStack is one entry of a per-hand "Player stacks" roster line.
type SeatStack struct {
	Position int     `json:"position"`
	Name     string  `json:"name"`
	ID       string  `json:"id"`
	Stack    float64 `json:"stack"`
}

// Event is one typed record from the raw log. It is ephemeral: produced by
// the parser, consumed by the hand builder, never persisted. Entry keeps the
// raw text for diagnostics only.
type Event struct {
	Kind      EventKind
	Timestamp time.Time
	Order     int64
	Entry     string

	// Payload fields, populated per kind.
	Player     *PlayerRef // blind/action/showdown/pot/join/leave/rebuy
	Amount     float64    // blind/action/pot/rebuy amount, or join/leave stack
	ActionKind ActionKind // action_taken only
	Street     Street     // board_dealt only
	Cards      []string   // board_dealt/showdown_revealed
	HandID     string     // hand_start/hand_end
	Dealer     *PlayerRef // hand_start only
	Stacks     []SeatStack
	TookChips  bool // player_left: quit (chips cashed out) vs stand up
	Approved   bool // player_joined: admin approval line paired with the join
}
