package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/BrightLiao/PokerAnalysis/internal/config"
	"github.com/BrightLiao/PokerAnalysis/internal/stats"
	"github.com/BrightLiao/PokerAnalysis/internal/storage"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	profitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

type StatsCmd struct {
	Data  string `short:"d" help:"Dataset directory to analyze" default:"data" type:"existingdir"`
	Daily bool   `help:"Break metrics down per session day"`
}

func (c *StatsCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug, !cli.Debug)

	cfg, err := config.LoadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store := storage.NewStore(logger, nil)
	ds, err := store.Load(c.Data)
	if err != nil {
		return fmt.Errorf("loading dataset from %s: %w", c.Data, err)
	}

	engine := stats.NewEngine(logger, cfg)

	if c.Daily {
		byDay, days := engine.Daily(ds)
		for _, day := range days {
			printStatsTable(fmt.Sprintf("Session %s", day), byDay[day])
			fmt.Println()
		}
		return nil
	}

	printStatsTable(fmt.Sprintf("Player metrics (%d hands)", len(ds.Hands)), engine.Compute(ds))
	return nil
}

func printStatsTable(title string, rows []*stats.PlayerStats) {
	fmt.Println(titleStyle.Render(title))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("Player")+"\t"+
		headerStyle.Render("Hands")+"\t"+
		headerStyle.Render("Net")+"\t"+
		headerStyle.Render("VPIP")+"\t"+
		headerStyle.Render("PFR")+"\t"+
		headerStyle.Render("AF")+"\t"+
		headerStyle.Render("3Bet")+"\t"+
		headerStyle.Render("CBet")+"\t"+
		headerStyle.Render("WTSD")+"\t"+
		headerStyle.Render("W$SD")+"\t"+
		headerStyle.Render("BB/100")+"\t"+
		headerStyle.Render("Style"))

	for _, s := range rows {
		net := profitStyle.Render(fmt.Sprintf("%+.0f", s.NetProfit))
		if s.NetProfit < 0 {
			net = lossStyle.Render(fmt.Sprintf("%+.0f", s.NetProfit))
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			nameStyle.Render(s.PlayerName),
			s.Hands,
			net,
			s.VPIP.String(),
			s.PFR.String(),
			s.AF.String(),
			s.ThreeBet.String(),
			s.CBet.String(),
			s.WTSD.String(),
			s.WonSD.String(),
			s.BBPer100.String(),
			styleStyle.Render(s.Style))
	}
	w.Flush()
}
