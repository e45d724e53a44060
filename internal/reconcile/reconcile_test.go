package reconcile

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

func handWithStacks(id string, stacks map[string]float64) *model.Hand {
	h := model.NewHand(id, 0, time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC), nil)
	pos := 1
	for key, stack := range stacks {
		name, pid := splitKey(key)
		h.AddPlayer(name, pid, stack, pos)
		pos++
	}
	return h
}

func splitKey(key string) (string, string) {
	for i := 0; i+3 <= len(key); i++ {
		if key[i:i+3] == " @ " {
			return key[:i], key[i+3:]
		}
	}
	return key, ""
}

func datasetFor(hands []*model.Hand) *model.Dataset {
	ds := &model.Dataset{Hands: hands}
	ds.Players = make(map[string]*model.Player)
	for _, h := range hands {
		for key, seat := range h.Players {
			p, ok := ds.Players[key]
			if !ok {
				p = model.NewPlayer(seat.Name, seat.ID)
				ds.Players[key] = p
			}
			p.AddHand(h.ID, seat.Stack)
		}
	}
	return ds
}

func TestHandProfitsFromStackDiffs(t *testing.T) {
	alice, bob := "Alice @ abc123", "Bob @ def456"
	hands := []*model.Hand{
		handWithStacks("1", map[string]float64{alice: 1000, bob: 1000}),
		handWithStacks("2", map[string]float64{alice: 1100, bob: 900}),
	}
	ds := datasetFor(hands)

	totals := map[string]model.LedgerTotals{
		alice: {Nickname: "Alice", PlayerID: "abc123", BuyIn: 1000, FinalStack: 1150, Sessions: 1},
		bob:   {Nickname: "Bob", PlayerID: "def456", BuyIn: 1000, FinalStack: 850, Sessions: 1},
	}

	report := New(zerolog.Nop(), 0.01).Apply(ds, totals)

	assert.Equal(t, 100.0, ds.Players[alice].HandProfits["1"])
	assert.Equal(t, 50.0, ds.Players[alice].HandProfits["2"])
	assert.Equal(t, -100.0, ds.Players[bob].HandProfits["1"])
	assert.Equal(t, -50.0, ds.Players[bob].HandProfits["2"])

	assert.True(t, report.ZeroSum)
	assert.False(t, report.HasMismatch())
	assert.True(t, report.Clean())
}

func TestAddOnDoesNotCountAsWinnings(t *testing.T) {
	alice := "Alice @ abc123"
	hands := []*model.Hand{
		handWithStacks("1", map[string]float64{alice: 500}),
		handWithStacks("2", map[string]float64{alice: 1000}),
	}
	ds := datasetFor(hands)
	// 500 added between hand 1 and hand 2.
	ds.Players[alice].HandBuyIns["2"] = 500

	totals := map[string]model.LedgerTotals{
		alice: {Nickname: "Alice", PlayerID: "abc123", BuyIn: 1000, FinalStack: 1000, Sessions: 1},
	}
	New(zerolog.Nop(), 0.01).Apply(ds, totals)

	// Stack went 500 -> 1000 but the difference is all buy-in.
	assert.Equal(t, 0.0, ds.Players[alice].HandProfits["1"])
	assert.Equal(t, 0.0, ds.Players[alice].HandProfits["2"])
}

func TestRejoinAfterQuitZeroesTheStack(t *testing.T) {
	alice, bob := "Alice @ abc123", "Bob @ def456"
	hands := []*model.Hand{
		handWithStacks("1", map[string]float64{alice: 300, bob: 1000}),
		handWithStacks("2", map[string]float64{bob: 1300}),
		handWithStacks("3", map[string]float64{alice: 500, bob: 1300}),
	}
	ds := datasetFor(hands)
	// Alice lost her stack in hand 1, quit, and bought back in for hand 3.
	ds.Players[alice].HandBuyIns["3"] = 500

	totals := map[string]model.LedgerTotals{
		alice: {Nickname: "Alice", PlayerID: "abc123", BuyIn: 800, FinalStack: 500, Sessions: 2},
		bob:   {Nickname: "Bob", PlayerID: "def456", BuyIn: 1000, FinalStack: 1300, Sessions: 1},
	}
	New(zerolog.Nop(), 0.01).Apply(ds, totals)

	assert.Equal(t, -300.0, ds.Players[alice].HandProfits["1"])
	assert.Equal(t, 0.0, ds.Players[alice].HandProfits["3"])
}

func TestDiscrepancyReported(t *testing.T) {
	alice, bob := "Alice @ abc123", "Bob @ def456"
	hands := []*model.Hand{
		handWithStacks("1", map[string]float64{alice: 1000, bob: 1000}),
	}
	ds := datasetFor(hands)

	// Ledger says Alice cashed out 200 more than her stacks account for.
	totals := map[string]model.LedgerTotals{
		alice: {Nickname: "Alice", PlayerID: "abc123", BuyIn: 1000, BuyOut: 200, FinalStack: 1000, Sessions: 1},
		bob:   {Nickname: "Bob", PlayerID: "def456", BuyIn: 1000, FinalStack: 800, Sessions: 1},
	}

	report := New(zerolog.Nop(), 0.01).Apply(ds, totals)

	require.Len(t, report.Discrepancies, 2)
	var aliceD model.PlayerDiscrepancy
	for _, d := range report.Discrepancies {
		if d.PlayerKey == alice {
			aliceD = d
		}
	}
	assert.Equal(t, 200.0, aliceD.LedgerProfit)
	assert.Equal(t, 0.0, aliceD.HandProfit)
	assert.Equal(t, 200.0, aliceD.Discrepancy)
	assert.True(t, report.HasMismatch())
	assert.False(t, report.Clean())

	// Hand profits themselves stay untouched by the mismatch.
	assert.Equal(t, 0.0, ds.Players[alice].HandProfits["1"])
}

func TestMissingLedgerRows(t *testing.T) {
	alice, bob := "Alice @ abc123", "Bob @ def456"
	hands := []*model.Hand{
		handWithStacks("1", map[string]float64{alice: 1000, bob: 1000}),
	}
	ds := datasetFor(hands)

	totals := map[string]model.LedgerTotals{
		alice: {Nickname: "Alice", PlayerID: "abc123", BuyIn: 1000, FinalStack: 1000, Sessions: 1},
	}
	report := New(zerolog.Nop(), 0.01).Apply(ds, totals)

	assert.Equal(t, []string{bob}, report.MissingLedger)
	assert.False(t, report.Clean())
}

func TestAnomaliesCarriedIntoReport(t *testing.T) {
	alice := "Alice @ abc123"
	h := handWithStacks("1", map[string]float64{alice: 1000})
	h.AddAnomaly(model.AnomalyForcedClose, "", "input ended before hand-end marker")
	ds := datasetFor([]*model.Hand{h})

	report := New(zerolog.Nop(), 0.01).Apply(ds, map[string]model.LedgerTotals{
		alice: {Nickname: "Alice", PlayerID: "abc123", BuyIn: 1000, FinalStack: 1000, Sessions: 1},
	})

	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, model.AnomalyForcedClose, report.Anomalies[0].Kind)
	assert.False(t, report.Clean())
}
