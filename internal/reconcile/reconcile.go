// Package reconcile cross-checks hand-derived profit against the ledger's
// cash flow. Mismatches are reported, never corrected: the ledger is the
// financial source of truth, the hands are the behavioral one.
package reconcile

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

// Reconciler applies ledger totals to a dataset and produces the
// verification report.
type Reconciler struct {
	logger  zerolog.Logger
	epsilon float64
}

// New creates a reconciler. Epsilon bounds the float comparisons on chip
// amounts.
func New(logger zerolog.Logger, epsilon float64) *Reconciler {
	return &Reconciler{logger: logger, epsilon: epsilon}
}

// Apply computes per-hand profits, attaches ledger totals to the players and
// returns the report. The dataset's hands must already be in chronological
// order.
func (r *Reconciler) Apply(ds *model.Dataset, totals map[string]model.LedgerTotals) *model.Report {
	for key, t := range totals {
		p, ok := ds.Players[key]
		if !ok {
			r.logger.Warn().Str("player", key).Msg("ledger row for player with no hands")
			continue
		}
		p.SetLedgerData(t.BuyIn, t.BuyOut, t.FinalStack, t.Sessions)
	}

	computeHandProfits(ds)

	report := &model.Report{Epsilon: r.epsilon, Anomalies: ds.CollectAnomalies()}

	net := 0.0
	for _, key := range sortedKeys(ds.Players) {
		p := ds.Players[key]
		if _, ok := totals[key]; !ok {
			report.MissingLedger = append(report.MissingLedger, key)
			continue
		}
		net += p.TotalProfit

		handProfit := p.HandProfitSum()
		report.Discrepancies = append(report.Discrepancies, model.PlayerDiscrepancy{
			PlayerKey:    key,
			PlayerName:   p.Name,
			HandProfit:   handProfit,
			LedgerProfit: p.TotalProfit,
			Discrepancy:  p.TotalProfit - handProfit,
			BuyInEvents:  p.BuyInEvents(),
		})
	}
	report.NetTotal = net
	report.ZeroSum = math.Abs(net) <= r.epsilon

	if !report.ZeroSum {
		r.logger.Warn().Float64("net_total", net).Msg("ledger profits do not sum to zero")
	}
	return report
}

// computeHandProfits derives each player's per-hand profit from the change
// in starting stacks between consecutive appearances. The starting stack of
// a hand already includes any buy-in booked against it, so an add-on between
// consecutive hands is subtracted back out; a rebuy after a quit resets the
// stack to zero instead.
func computeHandProfits(ds *model.Dataset) {
	for idx, hand := range ds.Hands {
		for key := range hand.Players {
			p, ok := ds.Players[key]
			if !ok {
				continue
			}
			stackBefore := hand.Players[key].Stack

			nextIdx := -1
			for future := idx + 1; future < len(ds.Hands); future++ {
				if _, in := ds.Hands[future].Players[key]; in {
					nextIdx = future
					break
				}
			}

			var stackAfter float64
			if nextIdx >= 0 {
				next := ds.Hands[nextIdx]
				nextBuyIn := p.HandBuyIns[next.ID]
				switch {
				case nextBuyIn > 0 && nextIdx == idx+1:
					// Continuous play with an add-on in between.
					stackAfter = next.Players[key].Stack - nextBuyIn
				case nextBuyIn > 0:
					// Skipped hands with a buy-in: quit and came back.
					stackAfter = 0
				default:
					stackAfter = next.Players[key].Stack
				}
			} else {
				stackAfter = p.FinalStack
			}

			if _, done := p.HandProfits[hand.ID]; !done {
				p.HandProfits[hand.ID] = stackAfter - stackBefore
			}
		}
	}
}

func sortedKeys(players map[string]*model.Player) []string {
	keys := make([]string, 0, len(players))
	for k := range players {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
