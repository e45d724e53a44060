package main

import (
	"context"
	"fmt"
	"math"

	"github.com/BrightLiao/PokerAnalysis/internal/config"
	"github.com/BrightLiao/PokerAnalysis/internal/identity"
	"github.com/BrightLiao/PokerAnalysis/internal/merge"
	"github.com/BrightLiao/PokerAnalysis/internal/model"
	"github.com/BrightLiao/PokerAnalysis/internal/storage"
)

type MergeCmd struct {
	Dirs   []string `arg:"" help:"Single-day dataset directories to combine" type:"existingdir"`
	Output string   `short:"o" help:"Directory to write the merged dataset into" default:"data/merged"`
	Quiet  bool     `short:"q" help:"Only log errors"`
}

func (c *MergeCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug, c.Quiet)

	cfg, err := config.LoadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store := storage.NewStore(logger, nil)
	resolver := identity.NewResolver(logger, cfg.Analysis.MaxCandidateDistance)
	merger := merge.New(logger, store, resolver, nil)

	ds, candidates, err := merger.MergeDirs(context.Background(), c.Dirs)
	if err != nil {
		return fmt.Errorf("merging datasets: %w", err)
	}

	net := 0.0
	for _, p := range ds.Players {
		net += p.TotalProfit
	}
	report := &model.Report{
		ZeroSum:         math.Abs(net) <= cfg.Analysis.Epsilon,
		NetTotal:        net,
		Epsilon:         cfg.Analysis.Epsilon,
		Anomalies:       ds.CollectAnomalies(),
		MergeCandidates: candidates,
	}

	if err := store.Save(c.Output, ds, report); err != nil {
		return fmt.Errorf("writing merged dataset to %s: %w", c.Output, err)
	}

	if !c.Quiet {
		printFindings(report)
	}
	fmt.Printf("Merged %d datasets into %s (%d hands, %d players)\n",
		len(c.Dirs), c.Output, len(ds.Hands), len(ds.Players))
	return nil
}
