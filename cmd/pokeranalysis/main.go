package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `help:"Path to the analysis config file (HCL)" default:"analysis.hcl"`
	Debug   bool             `help:"Enable debug logging"`

	Parse ParseCmd `cmd:"" help:"Reconstruct hands from a raw table log"`
	Merge MergeCmd `cmd:"" help:"Combine single-day datasets into a multi-day dataset"`
	Stats StatsCmd `cmd:"" help:"Show player metrics for a stored dataset"`
	Load  LoadCmd  `cmd:"" help:"Inspect a stored dataset"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokeranalysis"),
		kong.Description("Reconstructs and analyzes poker hand histories from table logs"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
