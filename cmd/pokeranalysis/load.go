package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/BrightLiao/PokerAnalysis/internal/storage"
)

type LoadCmd struct {
	Data string `short:"d" help:"Dataset directory to inspect" default:"data" type:"existingdir"`
}

func (c *LoadCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug, !cli.Debug)
	store := storage.NewStore(logger, nil)

	summary, err := store.LoadSummary(c.Data)
	if err != nil {
		return fmt.Errorf("loading summary from %s: %w", c.Data, err)
	}
	ds, err := store.Load(c.Data)
	if err != nil {
		return fmt.Errorf("loading dataset from %s: %w", c.Data, err)
	}
	report, err := store.LoadReport(c.Data)
	if err != nil {
		return fmt.Errorf("loading report from %s: %w", c.Data, err)
	}

	fmt.Println(titleStyle.Render("Dataset " + summary.DatasetID))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Hands\t%d\n", summary.TotalHands)
	fmt.Fprintf(w, "Players\t%d\n", summary.TotalPlayers)
	if summary.DateStart != nil && summary.DateEnd != nil {
		fmt.Fprintf(w, "Range\t%s to %s\n",
			summary.DateStart.Format(time.DateOnly),
			summary.DateEnd.Format(time.DateOnly))
	}
	fmt.Fprintf(w, "Generated\t%s\n", summary.GeneratedAt.Format(time.RFC3339))
	w.Flush()

	keys := make([]string, 0, len(ds.Players))
	for key := range ds.Players {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return ds.Players[keys[i]].TotalProfit > ds.Players[keys[j]].TotalProfit
	})

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("Player")+"\t"+
		headerStyle.Render("Hands")+"\t"+
		headerStyle.Render("Sessions")+"\t"+
		headerStyle.Render("Buy-in")+"\t"+
		headerStyle.Render("Net"))
	for _, key := range keys {
		p := ds.Players[key]
		net := profitStyle.Render(fmt.Sprintf("%+.0f", p.TotalProfit))
		if p.TotalProfit < 0 {
			net = lossStyle.Render(fmt.Sprintf("%+.0f", p.TotalProfit))
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\t%s\n",
			nameStyle.Render(p.Name), p.HandsPlayed, p.Sessions, p.TotalBuyIn, net)
	}
	w.Flush()

	if report != nil {
		fmt.Println()
		printFindings(report)
		if report.Clean() {
			fmt.Println("Verification clean")
		}
	}
	return nil
}
