package main

import (
	"fmt"

	clog "github.com/charmbracelet/log"

	"github.com/BrightLiao/PokerAnalysis/internal/builder"
	"github.com/BrightLiao/PokerAnalysis/internal/config"
	"github.com/BrightLiao/PokerAnalysis/internal/identity"
	"github.com/BrightLiao/PokerAnalysis/internal/model"
	"github.com/BrightLiao/PokerAnalysis/internal/parser"
	"github.com/BrightLiao/PokerAnalysis/internal/reconcile"
	"github.com/BrightLiao/PokerAnalysis/internal/storage"
)

type ParseCmd struct {
	Log          string `arg:"" help:"Raw table log (CSV, newest-first or chronological)" type:"existingfile"`
	Ledger       string `help:"Companion ledger CSV for settlement verification" type:"existingfile"`
	Output       string `short:"o" help:"Directory to write the dataset into" default:"data"`
	MergePlayers bool   `help:"Merge players that differ only by a reconnect suffix"`
	Quiet        bool   `short:"q" help:"Only log errors"`
}

func (c *ParseCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug, c.Quiet)

	cfg, err := config.LoadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	events, err := parser.ParseFile(c.Log)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", c.Log, err)
	}

	ds := builder.Build(logger, events)
	logger.Info().
		Int("hands", len(ds.Hands)).
		Int("players", len(ds.Players)).
		Msg("reconstructed hands")

	var totals map[string]model.LedgerTotals
	if c.Ledger != "" {
		entries, err := parser.ParseLedger(c.Ledger)
		if err != nil {
			return fmt.Errorf("parsing ledger %s: %w", c.Ledger, err)
		}
		totals = parser.LedgerTotals(entries)
		if ok, net := parser.VerifyZeroSum(totals, cfg.Analysis.Epsilon); !ok {
			logger.Warn().Float64("net", net).Msg("ledger rows do not balance before reconciliation")
		}
	}

	report := reconcile.New(logger, cfg.Analysis.Epsilon).Apply(ds, totals)

	if c.MergePlayers {
		candidates, err := identity.NewResolver(logger, cfg.Analysis.MaxCandidateDistance).Resolve(ds)
		if err != nil {
			return fmt.Errorf("merging players: %w", err)
		}
		report.MergeCandidates = candidates
	}

	store := storage.NewStore(logger, nil)
	if err := store.Save(c.Output, ds, report); err != nil {
		return fmt.Errorf("writing dataset to %s: %w", c.Output, err)
	}

	if !c.Quiet {
		printFindings(report)
	}
	fmt.Printf("Dataset written to %s (%d hands, %d players)\n", c.Output, len(ds.Hands), len(ds.Players))
	return nil
}

// printFindings reports settlement and reconstruction issues without failing
// the run. A log with anomalies is still a usable dataset as long as the
// ledger balances.
func printFindings(report *model.Report) {
	if report == nil {
		return
	}
	if !report.ZeroSum {
		clog.Warn("ledger does not balance", "net", fmt.Sprintf("%+.2f", report.NetTotal))
	}
	for _, d := range report.Discrepancies {
		if d.Discrepancy <= report.Epsilon && d.Discrepancy >= -report.Epsilon {
			continue
		}
		clog.Warn("profit mismatch",
			"player", d.PlayerKey,
			"ledger", fmt.Sprintf("%+.2f", d.LedgerProfit),
			"hands", fmt.Sprintf("%+.2f", d.HandProfit))
	}
	for _, key := range report.MissingLedger {
		clog.Warn("player missing from ledger", "player", key)
	}
	for _, a := range report.Anomalies {
		clog.Warn("hand anomaly", "hand", a.HandID, "kind", a.Kind, "detail", a.Detail)
	}
	for _, mc := range report.MergeCandidates {
		clog.Info("possible duplicate player", "a", mc.A, "b", mc.B, "distance", mc.Distance)
	}
}
