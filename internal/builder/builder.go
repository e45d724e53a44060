// Package builder reconstructs complete hands and player records from the
// parser's event stream. It is a single-pass state machine: either no hand is
// open, or exactly one is being accumulated.
package builder

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

type chipEventKind string

const (
	chipInitialJoin chipEventKind = "initial_join"
	chipRejoin      chipEventKind = "rejoin"
	chipAdding      chipEventKind = "adding"
)

// chipEvent is a buy-in observed between hands. It is held until the player
// next appears in a roster line, then booked against that hand.
type chipEvent struct {
	kind   chipEventKind
	amount float64
}

type leaveKind string

const (
	leaveNone  leaveKind = ""
	leaveQuit  leaveKind = "quit"
	leaveStand leaveKind = "stand_up"
)

// Builder accumulates events into hands and players. Feed events in
// chronological order via Process, then call Finish once.
type Builder struct {
	logger zerolog.Logger

	hands   []*model.Hand
	players map[string]*model.Player

	current *model.Hand
	street  model.Street

	// Buy-ins seen between roster lines, keyed by identity key.
	pending map[string][]chipEvent
	// How each player last left the table. A join after a quit is a fresh
	// buy-in; a join after a stand-up is just sitting back down.
	lastLeave map[string]leaveKind
}

// New creates an empty builder.
func New(logger zerolog.Logger) *Builder {
	return &Builder{
		logger:    logger,
		players:   make(map[string]*model.Player),
		pending:   make(map[string][]chipEvent),
		lastLeave: make(map[string]leaveKind),
	}
}

// Build runs the full event stream through a fresh builder.
func Build(logger zerolog.Logger, events []model.Event) *model.Dataset {
	b := New(logger)
	for _, ev := range events {
		b.Process(ev)
	}
	return b.Finish()
}

// Process consumes one event. Events that carry no structural meaning for
// hand reconstruction (unknown lines, uncalled-bet returns) are skipped
// without error.
func (b *Builder) Process(ev model.Event) {
	switch ev.Kind {
	case model.EventHandStart:
		b.handleHandStart(ev)
	case model.EventHandEnd:
		b.closeHand()
	case model.EventPlayerSeated:
		b.handleRoster(ev)
	case model.EventBlindPosted:
		b.handleBlind(ev)
	case model.EventActionTaken:
		b.handleAction(ev)
	case model.EventBoardDealt:
		b.handleBoard(ev)
	case model.EventShowdown:
		b.handleShowdown(ev)
	case model.EventPotCollected:
		b.handleCollected(ev)
	case model.EventPlayerJoined:
		b.handleJoin(ev)
	case model.EventPlayerLeft:
		b.handleLeave(ev)
	case model.EventPlayerRebuy:
		b.handleRebuy(ev)
	}
}

// Finish closes any hand still open and returns the assembled dataset. A
// hand open at end of input never saw its end marker, so it is force-closed
// and flagged.
func (b *Builder) Finish() *model.Dataset {
	if b.current != nil {
		b.current.AddAnomaly(model.AnomalyForcedClose, "", "input ended before hand-end marker")
		b.closeHand()
	}
	return &model.Dataset{Hands: b.hands, Players: b.players}
}

func (b *Builder) handleHandStart(ev model.Event) {
	if b.current != nil {
		b.logger.Warn().Str("open_hand", b.current.ID).Str("new_hand", ev.HandID).
			Msg("hand started while another was open, force closing")
		b.current.AddAnomaly(model.AnomalyForcedClose, "",
			fmt.Sprintf("hand %s started before this hand ended", ev.HandID))
		b.closeHand()
	}

	number := len(b.hands) + 1
	if n, err := strconv.Atoi(ev.HandID); err == nil {
		number = n
	}
	b.current = model.NewHand(ev.HandID, number, ev.Timestamp, ev.Dealer)
	b.street = model.StreetPreflop
}

func (b *Builder) closeHand() {
	if b.current == nil {
		return
	}
	b.hands = append(b.hands, b.current)
	b.current = nil
	b.street = model.StreetPreflop
}

func (b *Builder) handleRoster(ev model.Event) {
	if b.current == nil {
		return
	}
	for _, seat := range ev.Stacks {
		ref := model.PlayerRef{Name: seat.Name, ID: seat.ID}
		key := ref.Key()

		b.current.AddPlayer(seat.Name, seat.ID, seat.Stack, seat.Position)

		p, ok := b.players[key]
		if !ok {
			p = model.NewPlayer(seat.Name, seat.ID)
			b.players[key] = p
		}
		p.AddHand(b.current.ID, seat.Stack)

		b.flushPending(key, p)
	}
}

// flushPending books buy-ins observed since the player's previous roster
// appearance against the current hand. The very first join is the session's
// initial buy-in and is not a rebuy, so it is skipped on the player's first
// hand.
func (b *Builder) flushPending(key string, p *model.Player) {
	events := b.pending[key]
	if len(events) == 0 {
		return
	}
	firstHand := len(p.HandIDs) == 1

	total := 0.0
	for _, ce := range events {
		if ce.kind == chipInitialJoin && firstHand {
			continue
		}
		total += ce.amount
	}
	if total > 0 {
		p.HandBuyIns[b.current.ID] += total
	}
	b.pending[key] = nil
}

func (b *Builder) handleBlind(ev model.Event) {
	if b.current == nil || ev.Player == nil {
		return
	}
	switch ev.ActionKind {
	case model.ActionSmallBlind:
		b.current.SmallBlind = ev.Amount
	case model.ActionBigBlind:
		b.current.BigBlind = ev.Amount
	}
	b.checkSeated(*ev.Player)
	b.current.AddAction(model.Action{
		Kind:       ev.ActionKind,
		PlayerName: ev.Player.Name,
		PlayerID:   ev.Player.ID,
		Amount:     ev.Amount,
		Street:     model.StreetPreflop,
		Timestamp:  ev.Timestamp,
	})
}

func (b *Builder) handleAction(ev model.Event) {
	if b.current == nil {
		b.logger.Debug().Str("entry", ev.Entry).Msg("action outside any hand, skipping")
		return
	}
	if ev.Player == nil {
		return
	}
	b.checkSeated(*ev.Player)
	b.current.AddAction(model.Action{
		Kind:       ev.ActionKind,
		PlayerName: ev.Player.Name,
		PlayerID:   ev.Player.ID,
		Amount:     ev.Amount,
		Street:     b.street,
		Timestamp:  ev.Timestamp,
	})
}

// checkSeated flags actors missing from the hand's roster line. The action
// itself is still recorded.
func (b *Builder) checkSeated(ref model.PlayerRef) {
	key := ref.Key()
	if _, ok := b.current.Players[key]; !ok {
		b.logger.Warn().Str("hand", b.current.ID).Str("player", key).
			Msg("action by player not in roster")
		b.current.AddAnomaly(model.AnomalyUnseatedActor, key, "actor not present in roster line")
	}
}

func (b *Builder) handleBoard(ev model.Event) {
	if b.current == nil {
		return
	}
	// A deal that would duplicate a street or shrink the board is flagged
	// and leaves the board as it was.
	switch ev.Street {
	case model.StreetFlop:
		if b.current.WentToFlop() || b.current.WentToTurn() || b.current.WentToRiver() {
			b.flagShrink("flop dealt twice or after a later street")
			return
		}
		cards := ev.Cards
		if len(cards) > 3 {
			cards = cards[:3]
		}
		b.current.Flop = cards
	case model.StreetTurn:
		// The turn line repeats the flop; the bracketed last card is new.
		if b.current.WentToTurn() || len(ev.Cards) < len(b.current.Flop)+1 {
			b.flagShrink("turn line shows fewer cards than already dealt")
			return
		}
		b.current.Turn = ev.Cards[len(ev.Cards)-1]
	case model.StreetRiver:
		if b.current.WentToRiver() || len(ev.Cards) < len(b.current.Flop)+2 {
			b.flagShrink("river line shows fewer cards than already dealt")
			return
		}
		b.current.River = ev.Cards[len(ev.Cards)-1]
	}
	b.street = ev.Street
}

func (b *Builder) flagShrink(detail string) {
	b.logger.Warn().Str("hand", b.current.ID).Str("detail", detail).Msg("board regressed")
	b.current.AddAnomaly(model.AnomalyBoardShrink, "", detail)
}

func (b *Builder) handleShowdown(ev model.Event) {
	if b.current == nil || ev.Player == nil || len(ev.Cards) == 0 {
		return
	}
	b.current.AddShowdown(ev.Player.Name, ev.Player.ID, ev.Cards)
}

func (b *Builder) handleCollected(ev model.Event) {
	if b.current == nil || ev.Player == nil {
		return
	}
	b.current.AddWinner(ev.Player.Name, ev.Player.ID, ev.Amount)
}

// handleJoin distinguishes a first buy-in, a fresh buy-in after quitting, and
// simply sitting back down after a stand-up. Admin approval lines duplicate
// the join they approve and are ignored.
func (b *Builder) handleJoin(ev model.Event) {
	if ev.Player == nil || ev.Approved {
		return
	}
	key := ev.Player.Key()

	switch {
	case b.players[key] == nil && len(b.pending[key]) == 0:
		b.pending[key] = append(b.pending[key], chipEvent{kind: chipInitialJoin, amount: ev.Amount})
		b.lastLeave[key] = leaveNone
	case b.lastLeave[key] == leaveQuit:
		b.pending[key] = append(b.pending[key], chipEvent{kind: chipRejoin, amount: ev.Amount})
		b.lastLeave[key] = leaveNone
	default:
		// Sitting back down with the same stack.
	}
}

func (b *Builder) handleLeave(ev model.Event) {
	if ev.Player == nil {
		return
	}
	if ev.TookChips {
		b.lastLeave[ev.Player.Key()] = leaveQuit
	} else {
		b.lastLeave[ev.Player.Key()] = leaveStand
	}
}

func (b *Builder) handleRebuy(ev model.Event) {
	if ev.Player == nil {
		return
	}
	key := ev.Player.Key()
	b.pending[key] = append(b.pending[key], chipEvent{kind: chipAdding, amount: ev.Amount})
}
