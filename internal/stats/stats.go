// Package stats derives behavioral metrics and play-style labels from a
// reconstructed hand population.
package stats

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/BrightLiao/PokerAnalysis/internal/config"
	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

// Style labels. StyleInsufficient is returned below the sample-size cutoff
// rather than guessing from noise.
const (
	StyleAggressiveTight = "aggressive-tight"
	StyleAggressiveLoose = "aggressive-loose"
	StylePassiveTight    = "passive-tight"
	StylePassiveLoose    = "passive-loose"
	StyleInsufficient    = "insufficient data"
)

// PlayerStats is the full metric set for one player over one hand population.
type PlayerStats struct {
	PlayerKey  string `json:"player_key"`
	PlayerName string `json:"player_name"`

	Hands     int     `json:"hands"`
	NetProfit float64 `json:"net_profit"`

	VPIP       Ratio `json:"vpip"`
	PFR        Ratio `json:"pfr"`
	AF         Ratio `json:"af"`
	ThreeBet   Ratio `json:"three_bet"`
	CBet       Ratio `json:"cbet"`
	FoldToCBet Ratio `json:"fold_to_cbet"`
	WTSD       Ratio `json:"wtsd"`
	WonSD      Ratio `json:"won_sd"`
	Steal      Ratio `json:"steal"`

	WinRate      Ratio `json:"win_rate"`
	FoldRate     Ratio `json:"fold_rate"`
	PreflopFold  Ratio `json:"preflop_fold"`
	PostflopFold Ratio `json:"postflop_fold"`
	SawFlop      Ratio `json:"saw_flop"`
	BBPer100     Ratio `json:"bb_per_100"`

	Style string `json:"style"`
}

// tally holds the raw counters for one player before ratios are formed.
type tally struct {
	hands int

	vpipOpp, vpipCnt int
	pfrCnt           int

	aggressive, calls int

	threeBetOpp, threeBetCnt int
	cbetOpp, cbetCnt         int
	foldCBetOpp, foldCBetCnt int

	sawFlop, showdowns, showdownWins int
	stealOpp, stealCnt               int

	folds, preflopFolds, postflopFolds int
	handsWon                           int

	bbUnits float64
	bbHands int
}

// Engine computes metric tables. One instance may be reused across
// populations.
type Engine struct {
	logger zerolog.Logger
	cfg    *config.Config
}

// NewEngine creates a stats engine with the given cutoffs.
func NewEngine(logger zerolog.Logger, cfg *config.Config) *Engine {
	return &Engine{logger: logger, cfg: cfg}
}

// Compute produces per-player metrics over the whole dataset, sorted by net
// profit descending.
func (e *Engine) Compute(ds *model.Dataset) []*PlayerStats {
	tallies := make(map[string]*tally, len(ds.Players))
	for key := range ds.Players {
		tallies[key] = &tally{}
	}

	for _, h := range ds.Hands {
		e.analyzeHand(h, tallies, ds.Players)
	}

	out := make([]*PlayerStats, 0, len(tallies))
	for key, t := range tallies {
		p := ds.Players[key]
		out = append(out, e.finalize(key, p, t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetProfit != out[j].NetProfit {
			return out[i].NetProfit > out[j].NetProfit
		}
		return out[i].PlayerKey < out[j].PlayerKey
	})
	return out
}

// Daily recomputes the table per day of a merged dataset, grouped by hand-id
// date prefix. Hands without a prefix land under "unknown". Day keys come back
// sorted.
func (e *Engine) Daily(ds *model.Dataset) (map[string][]*PlayerStats, []string) {
	byDay := make(map[string][]*model.Hand)
	for _, h := range ds.Hands {
		byDay[DateOf(h.ID)] = append(byDay[DateOf(h.ID)], h)
	}

	days := make([]string, 0, len(byDay))
	result := make(map[string][]*PlayerStats, len(byDay))
	for day, hands := range byDay {
		days = append(days, day)
		dayDS := &model.Dataset{Hands: hands, Players: dailyPlayers(hands, ds.Players, day)}
		result[day] = e.Compute(dayDS)
	}
	sort.Strings(days)
	return result, days
}

// DateOf extracts the date prefix of a merged hand ID, or "unknown" for an
// unprefixed single-day ID.
func DateOf(handID string) string {
	if i := strings.Index(handID, "_"); i > 0 {
		return handID[:i]
	}
	return "unknown"
}

// dailyPlayers builds per-day player views containing only that day's hands
// and profits.
func dailyPlayers(hands []*model.Hand, players map[string]*model.Player, day string) map[string]*model.Player {
	seen := make(map[string]bool)
	for _, h := range hands {
		for key := range h.Players {
			seen[key] = true
		}
	}

	out := make(map[string]*model.Player, len(seen))
	for key := range seen {
		full, ok := players[key]
		if !ok {
			continue
		}
		p := model.NewPlayer(full.Name, full.ID)
		for _, handID := range full.HandIDs {
			if DateOf(handID) != day {
				continue
			}
			p.HandIDs = append(p.HandIDs, handID)
			p.HandsPlayed++
			if v, ok := full.StartingStacks[handID]; ok {
				p.StartingStacks[handID] = v
			}
			if v, ok := full.HandProfits[handID]; ok {
				p.HandProfits[handID] = v
				p.TotalProfit += v
			}
			if v, ok := full.HandBuyIns[handID]; ok {
				p.HandBuyIns[handID] = v
			}
		}
		out[key] = p
	}
	return out
}

func (e *Engine) analyzeHand(h *model.Hand, tallies map[string]*tally, players map[string]*model.Player) {
	preflop := h.Actions[model.StreetPreflop]
	aggressor := h.PreflopAggressor()

	for key := range h.Players {
		t, ok := tallies[key]
		if !ok {
			continue
		}
		t.hands++

		e.tallyPreflop(t, key, preflop)
		e.tallyAggression(t, h.ActionsByPlayer(key))
		e.tallyThreeBet(t, key, preflop)
		e.tallyCBet(t, key, h)
		e.tallyFoldToCBet(t, key, h, aggressor)
		e.tallyShowdown(t, key, h)
		e.tallySteal(t, key, h)
		e.tallyFolds(t, key, h)

		if h.Winners[key] > 0 {
			t.handsWon++
		}
		if h.SawFlop(key) {
			t.sawFlop++
		}
		if p, ok := players[key]; ok && h.BigBlind > 0 {
			if profit, done := p.HandProfits[h.ID]; done {
				t.bbUnits += profit / h.BigBlind
				t.bbHands++
			}
		}
	}
}

// tallyPreflop counts voluntary-money and raise decisions. A hand is a VPIP
// decision point only when the player had a recorded non-blind preflop
// action: a big blind that gets a walk never decided anything.
func (e *Engine) tallyPreflop(t *tally, key string, preflop []model.Action) {
	decided, voluntary, raised := false, false, false
	for _, a := range preflop {
		if a.PlayerKey() != key || a.IsBlind() {
			continue
		}
		decided = true
		if a.IsVoluntary() {
			voluntary = true
		}
		if a.IsAggressive() {
			raised = true
		}
	}
	if decided {
		t.vpipOpp++
		if voluntary {
			t.vpipCnt++
		}
	}
	if raised {
		t.pfrCnt++
	}
}

func (e *Engine) tallyAggression(t *tally, actions []model.Action) {
	for _, a := range actions {
		if a.IsBlind() {
			continue
		}
		switch {
		case a.IsAggressive():
			t.aggressive++
		case a.Kind == model.ActionCall:
			t.calls++
		}
	}
}

// tallyThreeBet walks the preflop sequence: an opportunity is facing a raise
// before acting, a 3-bet is re-raising it.
func (e *Engine) tallyThreeBet(t *tally, key string, preflop []model.Action) {
	acted, facedRaise, threeBet := false, false, false
	for _, a := range preflop {
		if a.PlayerKey() == key {
			acted = true
			if facedRaise && a.IsAggressive() {
				threeBet = true
				break
			}
		} else if !acted && a.IsAggressive() {
			facedRaise = true
		}
	}
	if facedRaise {
		t.threeBetOpp++
		if threeBet {
			t.threeBetCnt++
		}
	}
}

// tallyCBet counts continuation bets by the last preflop aggressor on the
// flop.
func (e *Engine) tallyCBet(t *tally, key string, h *model.Hand) {
	if h.PreflopAggressor() != key || !h.WentToFlop() || !h.SawFlop(key) {
		return
	}
	t.cbetOpp++
	for _, a := range h.Actions[model.StreetFlop] {
		if a.PlayerKey() == key && a.IsAggressive() {
			t.cbetCnt++
			break
		}
	}
}

// tallyFoldToCBet counts flop folds by non-aggressors facing the aggressor's
// continuation bet.
func (e *Engine) tallyFoldToCBet(t *tally, key string, h *model.Hand, aggressor string) {
	if aggressor == "" || aggressor == key || !h.WentToFlop() {
		return
	}
	cbet := false
	for _, a := range h.Actions[model.StreetFlop] {
		if a.PlayerKey() == aggressor && a.IsAggressive() {
			cbet = true
			break
		}
	}
	if !cbet {
		return
	}
	t.foldCBetOpp++
	for _, a := range h.Actions[model.StreetFlop] {
		if a.PlayerKey() == key && a.Kind == model.ActionFold {
			t.foldCBetCnt++
			break
		}
	}
}

func (e *Engine) tallyShowdown(t *tally, key string, h *model.Hand) {
	if _, ok := h.Showdowns[key]; !ok {
		return
	}
	t.showdowns++
	if h.Winners[key] > 0 {
		t.showdownWins++
	}
}

// tallySteal counts preflop raises from the button.
func (e *Engine) tallySteal(t *tally, key string, h *model.Hand) {
	if h.Dealer == nil || h.Dealer.Key() != key {
		return
	}
	t.stealOpp++
	for _, a := range h.Actions[model.StreetPreflop] {
		if a.PlayerKey() == key && a.IsAggressive() {
			t.stealCnt++
			break
		}
	}
}

func (e *Engine) tallyFolds(t *tally, key string, h *model.Hand) {
	street := h.FoldedOn(key)
	if street == "" {
		return
	}
	t.folds++
	if street == model.StreetPreflop {
		t.preflopFolds++
	} else {
		t.postflopFolds++
	}
}

func (e *Engine) finalize(key string, p *model.Player, t *tally) *PlayerStats {
	name := key
	profit := 0.0
	if p != nil {
		name = p.Name
		profit = p.TotalProfit
	}

	s := &PlayerStats{
		PlayerKey:  key,
		PlayerName: name,
		Hands:      t.hands,
		NetProfit:  profit,

		VPIP:       Percent(t.vpipCnt, t.vpipOpp),
		PFR:        Percent(t.pfrCnt, t.hands),
		AF:         Quotient(float64(t.aggressive), float64(t.calls)),
		ThreeBet:   Percent(t.threeBetCnt, t.threeBetOpp),
		CBet:       Percent(t.cbetCnt, t.cbetOpp),
		FoldToCBet: Percent(t.foldCBetCnt, t.foldCBetOpp),
		WTSD:       Percent(t.showdowns, t.sawFlop),
		WonSD:      Percent(t.showdownWins, t.showdowns),
		Steal:      Percent(t.stealCnt, t.stealOpp),

		WinRate:      Percent(t.handsWon, t.hands),
		FoldRate:     Percent(t.folds, t.hands),
		PreflopFold:  Percent(t.preflopFolds, t.hands),
		PostflopFold: Percent(t.postflopFolds, t.hands),
		SawFlop:      Percent(t.sawFlop, t.hands),
		BBPer100:     bbPer100(t),
	}
	s.Style = e.classify(s)
	return s
}

func bbPer100(t *tally) Ratio {
	if t.bbHands == 0 {
		return NA()
	}
	return Ratio{Value: round1(t.bbUnits / float64(t.bbHands) * 100), OK: true}
}

// classify labels the play style from the config cutoffs. When AF is
// undefined (no calls at all), PFR decides the aggression axis instead.
func (e *Engine) classify(s *PlayerStats) string {
	if s.Hands < e.cfg.Style.MinSampleHands {
		return StyleInsufficient
	}

	vpip := 0.0
	if s.VPIP.OK {
		vpip = s.VPIP.Value
	}
	tight := vpip <= e.cfg.Style.TightVPIP

	var aggressive bool
	if s.AF.OK {
		aggressive = s.AF.Value >= e.cfg.Style.AggressiveAF
	} else {
		aggressive = s.PFR.OK && s.PFR.Value >= e.cfg.Style.AggressivePFR
	}

	switch {
	case aggressive && tight:
		return StyleAggressiveTight
	case aggressive:
		return StyleAggressiveLoose
	case tight:
		return StylePassiveTight
	default:
		return StylePassiveLoose
	}
}
