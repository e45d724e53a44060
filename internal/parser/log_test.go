package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		check func(t *testing.T, ev model.Event)
	}{
		{
			name:  "hand start",
			entry: `-- starting hand #91 (No Limit Texas Hold'em) (dealer: "Alice @ abc123") --`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventHandStart, ev.Kind)
				assert.Equal(t, "91", ev.HandID)
				require.NotNil(t, ev.Dealer)
				assert.Equal(t, "Alice", ev.Dealer.Name)
				assert.Equal(t, "abc123", ev.Dealer.ID)
			},
		},
		{
			name:  "hand end",
			entry: `-- ending hand #91 --`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventHandEnd, ev.Kind)
				assert.Equal(t, "91", ev.HandID)
			},
		},
		{
			name:  "player stacks roster",
			entry: `Player stacks: #1 "Alice @ abc123" (1000) | #3 "Bob @ def456" (850.50)`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventPlayerSeated, ev.Kind)
				require.Len(t, ev.Stacks, 2)
				assert.Equal(t, model.SeatStack{Position: 1, Name: "Alice", ID: "abc123", Stack: 1000}, ev.Stacks[0])
				assert.Equal(t, model.SeatStack{Position: 3, Name: "Bob", ID: "def456", Stack: 850.50}, ev.Stacks[1])
			},
		},
		{
			name:  "small blind",
			entry: `"Alice @ abc123" posts a small blind of 5`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventBlindPosted, ev.Kind)
				assert.Equal(t, model.ActionSmallBlind, ev.ActionKind)
				assert.Equal(t, 5.0, ev.Amount)
			},
		},
		{
			name:  "big blind",
			entry: `"Bob @ def456" posts a big blind of 10`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventBlindPosted, ev.Kind)
				assert.Equal(t, model.ActionBigBlind, ev.ActionKind)
				assert.Equal(t, 10.0, ev.Amount)
			},
		},
		{
			name:  "fold",
			entry: `"Alice @ abc123" folds`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventActionTaken, ev.Kind)
				assert.Equal(t, model.ActionFold, ev.ActionKind)
			},
		},
		{
			name:  "raise to amount",
			entry: `"Bob @ def456" raises to 7`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventActionTaken, ev.Kind)
				assert.Equal(t, model.ActionRaise, ev.ActionKind)
				assert.Equal(t, 7.0, ev.Amount)
			},
		},
		{
			name:  "call with digits in player id",
			entry: `"Player7 @ x9y8z7" calls 20`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.ActionCall, ev.ActionKind)
				assert.Equal(t, 20.0, ev.Amount)
			},
		},
		{
			name:  "all in",
			entry: `"Bob @ def456" calls 300 and go all in`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventActionTaken, ev.Kind)
				assert.Equal(t, model.ActionCall, ev.ActionKind)
			},
		},
		{
			name:  "flop",
			entry: `Flop:  [10♠, J♦, Q♣]`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventBoardDealt, ev.Kind)
				assert.Equal(t, model.StreetFlop, ev.Street)
				assert.Equal(t, []string{"10♠", "J♦", "Q♣"}, ev.Cards)
			},
		},
		{
			name:  "turn repeats flop cards",
			entry: `Turn: 10♠, J♦, Q♣ [2♥]`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.StreetTurn, ev.Street)
				assert.Equal(t, []string{"10♠", "J♦", "Q♣", "2♥"}, ev.Cards)
			},
		},
		{
			name:  "showdown",
			entry: `"Alice @ abc123" shows a A♠, K♥.`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventShowdown, ev.Kind)
				assert.Equal(t, []string{"A♠", "K♥"}, ev.Cards)
			},
		},
		{
			name:  "pot collected",
			entry: `"Alice @ abc123" collected 150 from pot`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventPotCollected, ev.Kind)
				assert.Equal(t, 150.0, ev.Amount)
			},
		},
		{
			name:  "uncalled bet attributes returned-to player",
			entry: `Uncalled bet of 80 returned to "Bob @ def456"`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventUncalledBet, ev.Kind)
				require.NotNil(t, ev.Player)
				assert.Equal(t, "Bob", ev.Player.Name)
				assert.Equal(t, 80.0, ev.Amount)
			},
		},
		{
			name:  "stand up keeps stack at table",
			entry: `The player "Bob @ def456" stand up with the stack of 420.`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventPlayerLeft, ev.Kind)
				assert.False(t, ev.TookChips)
				assert.Equal(t, 420.0, ev.Amount)
			},
		},
		{
			name:  "quit cashes out",
			entry: `The player "Bob @ def456" quits the game with a stack of 420.`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventPlayerLeft, ev.Kind)
				assert.True(t, ev.TookChips)
			},
		},
		{
			name:  "join",
			entry: `The player "Carol @ ghi789" joined the game with a stack of 1000.`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventPlayerJoined, ev.Kind)
				assert.False(t, ev.Approved)
				assert.Equal(t, 1000.0, ev.Amount)
			},
		},
		{
			name:  "admin approval is flagged",
			entry: `The admin approved the player "Carol @ ghi789" participation with a stack of 1000.`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventPlayerJoined, ev.Kind)
				assert.True(t, ev.Approved)
			},
		},
		{
			name:  "rebuy",
			entry: `The player "Bob @ def456" requested adding 500 chips.`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventPlayerRebuy, ev.Kind)
				assert.Equal(t, 500.0, ev.Amount)
			},
		},
		{
			name:  "unrecognized entry survives as unknown",
			entry: `Your hand is K♦, 9♠`,
			check: func(t *testing.T, ev model.Event) {
				assert.Equal(t, model.EventUnknown, ev.Kind)
				assert.Equal(t, `Your hand is K♦, 9♠`, ev.Entry)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, classify(tc.entry))
		})
	}
}

func TestScanner(t *testing.T) {
	log := "entry,at,order\n" +
		`"""Alice @ abc123"" folds",2024-03-15T20:01:00.000Z,2` + "\n" +
		`"-- starting hand #5 (dealer: ""Bob @ def456"") --",2024-03-15T20:00:00.000Z,1` + "\n"

	s := NewScanner(strings.NewReader(log))
	require.True(t, s.Scan())
	assert.Equal(t, model.EventActionTaken, s.Event().Kind)
	assert.Equal(t, int64(2), s.Event().Order)
	require.True(t, s.Scan())
	assert.Equal(t, model.EventHandStart, s.Event().Kind)
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
}

func TestScannerBadTimestamp(t *testing.T) {
	log := "entry,at,order\n" +
		`"""Alice @ abc123"" folds",not-a-time,1` + "\n"

	s := NewScanner(strings.NewReader(log))
	assert.False(t, s.Scan())

	var perr *ParseError
	require.ErrorAs(t, s.Err(), &perr)
	assert.Equal(t, 2, perr.Line)
}

func TestScannerEmptyEntryIsUnknown(t *testing.T) {
	log := "entry,at,order\n" +
		`,2024-03-15T20:00:00.000Z,1` + "\n"

	s := NewScanner(strings.NewReader(log))
	require.True(t, s.Scan())
	assert.Equal(t, model.EventUnknown, s.Event().Kind)
	assert.NoError(t, s.Err())
}

func TestReadAllReversesNewestFirst(t *testing.T) {
	log := "entry,at,order\n" +
		`"-- ending hand #1 --",2024-03-15T20:05:00.000Z,3` + "\n" +
		`"""Alice @ abc123"" folds",2024-03-15T20:03:00.000Z,2` + "\n" +
		`"-- starting hand #1 (dealer: ""Alice @ abc123"") --",2024-03-15T20:00:00.000Z,1` + "\n"

	events, err := ReadAll(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, model.EventHandStart, events[0].Kind)
	assert.Equal(t, model.EventActionTaken, events[1].Kind)
	assert.Equal(t, model.EventHandEnd, events[2].Kind)
	assert.True(t, events[0].Timestamp.Before(events[2].Timestamp))
}

func TestReadAllKeepsChronologicalInput(t *testing.T) {
	log := "entry,at,order\n" +
		`"-- starting hand #1 (dealer: ""Alice @ abc123"") --",2024-03-15T20:00:00.000Z,1` + "\n" +
		`"-- ending hand #1 --",2024-03-15T20:05:00.000Z,2` + "\n"

	events, err := ReadAll(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventHandStart, events[0].Kind)
	assert.Equal(t, time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC), events[0].Timestamp.UTC())
}
