package storage

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

func sampleDataset() *model.Dataset {
	h := model.NewHand("20240315_#1", 1, time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC), &model.PlayerRef{Name: "Alice", ID: "abc123"})
	h.AddPlayer("Alice", "abc123", 1000, 1)
	h.AddPlayer("Bob", "def456", 800, 2)
	h.SmallBlind, h.BigBlind = 5, 10
	h.Flop = []string{"A♠", "K♥", "2♦"}
	h.Turn = "7♣"
	h.AddAction(model.Action{Kind: model.ActionRaise, PlayerName: "Alice", PlayerID: "abc123", Amount: 30, Street: model.StreetPreflop, Timestamp: h.Timestamp})
	h.AddAction(model.Action{Kind: model.ActionFold, PlayerName: "Bob", PlayerID: "def456", Street: model.StreetFlop, Timestamp: h.Timestamp})
	h.AddShowdown("Alice", "abc123", []string{"A♥", "A♦"})
	h.AddWinner("Alice", "abc123", 75)
	h.AddAnomaly(model.AnomalyUnseatedActor, "Bob @ def456", "actor not present in roster line")

	ds := model.NewDataset()
	ds.Hands = []*model.Hand{h}

	alice := model.NewPlayer("Alice", "abc123")
	alice.AddHand(h.ID, 1000)
	alice.SetLedgerData(1000, 0, 1075, 1)
	alice.HandProfits[h.ID] = 75
	ds.Players[alice.Key()] = alice

	bob := model.NewPlayer("Bob", "def456")
	bob.AddHand(h.ID, 800)
	bob.SetLedgerData(800, 0, 725, 1)
	bob.HandProfits[h.ID] = -75
	ds.Players[bob.Key()] = bob

	return ds
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(zerolog.Nop(), quartz.NewMock(t))

	ds := sampleDataset()
	require.NoError(t, store.Save(dir, ds, nil))

	loaded, err := store.Load(dir)
	require.NoError(t, err)

	require.Len(t, loaded.Hands, 1)
	assert.Equal(t, ds.Hands[0], loaded.Hands[0])
	assert.Equal(t, ds.Players, loaded.Players)
}

func TestSummaryUsesInjectedClock(t *testing.T) {
	dir := t.TempDir()
	clock := quartz.NewMock(t)
	store := NewStore(zerolog.Nop(), clock)

	ds := sampleDataset()
	require.NoError(t, store.Save(dir, ds, nil))

	summary, err := store.LoadSummary(dir)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.DatasetID)
	assert.Equal(t, 1, summary.TotalHands)
	assert.Equal(t, 2, summary.TotalPlayers)
	assert.Equal(t, clock.Now().UTC(), summary.GeneratedAt)
	require.NotNil(t, summary.DateStart)
	assert.Equal(t, ds.Hands[0].Timestamp.UTC(), *summary.DateStart)
}

func TestReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(zerolog.Nop(), quartz.NewMock(t))

	report := &model.Report{
		ZeroSum:  false,
		NetTotal: 200,
		Epsilon:  0.01,
		Discrepancies: []model.PlayerDiscrepancy{
			{PlayerKey: "Alice @ abc123", PlayerName: "Alice", HandProfit: 0, LedgerProfit: 200, Discrepancy: 200, BuyInEvents: 1},
		},
		MissingLedger: []string{"Bob @ def456"},
		Anomalies: []model.Anomaly{
			{Kind: model.AnomalyForcedClose, HandID: "3", Detail: "input ended before hand-end marker"},
		},
		MergeCandidates: []model.MergeCandidate{{A: "Tim @ a1", B: "Tom @ b2", Distance: 1}},
	}
	require.NoError(t, store.Save(dir, sampleDataset(), report))

	loaded, err := store.LoadReport(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, report, loaded)
}

func TestLoadReportAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(zerolog.Nop(), nil)
	require.NoError(t, store.Save(dir, sampleDataset(), nil))

	report, err := store.LoadReport(dir)
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestLoadMissingDirectory(t *testing.T) {
	store := NewStore(zerolog.Nop(), nil)
	_, err := store.Load(t.TempDir())
	assert.Error(t, err)
}
