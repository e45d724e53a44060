package model

import "time"

// ActionKind represents one decision type by a player within a hand
type ActionKind string

const (
	ActionFold  ActionKind = "fold"
	ActionCheck ActionKind = "check"
	ActionCall  ActionKind = "call"
	ActionBet   ActionKind = "bet"
	ActionRaise ActionKind = "raise"
	ActionAllIn ActionKind = "all_in"

	// Blind posts are recorded as actions so the per-street sequence is
	// complete, but they never count as voluntary.
	ActionSmallBlind ActionKind = "small_blind"
	ActionBigBlind   ActionKind = "big_blind"
)

// Action is one decision by one player within one hand. Immutable once built;
// owned exclusively by its parent Hand.
type Action struct {
	Kind       ActionKind `json:"kind"`
	PlayerName string     `json:"player_name"`
	PlayerID   string     `json:"player_id"`
	Amount     float64    `json:"amount"`
	Street     Street     `json:"street"`
	Timestamp  time.Time  `json:"timestamp"`
}

// PlayerKey returns the combined identity key of the actor.
func (a Action) PlayerKey() string {
	return a.PlayerName + " @ " + a.PlayerID
}

// IsBlind reports whether the action is a forced blind post.
func (a Action) IsBlind() bool {
	return a.Kind == ActionSmallBlind || a.Kind == ActionBigBlind
}

// IsAggressive reports whether the action is a bet or raise.
func (a Action) IsAggressive() bool {
	return a.Kind == ActionBet || a.Kind == ActionRaise || a.Kind == ActionAllIn
}

// IsVoluntary reports whether the action commits chips beyond a forced blind.
func (a Action) IsVoluntary() bool {
	switch a.Kind {
	case ActionCall, ActionBet, ActionRaise, ActionAllIn:
		return true
	default:
		return false
	}
}
