package cmd

import (
	"fmt"
	"time"

	"github.com/masmgr/declmine/config"
	"github.com/masmgr/declmine/internal/console"
	"github.com/masmgr/declmine/internal/mining"
	"github.com/urfave/cli/v2"
)

// MineCmd returns the mine command.
func MineCmd() *cli.Command {
	return &cli.Command{
		Name:      "mine",
		Aliases:   []string{"m"},
		Usage:     "Mine declaration changes into one file per repository",
		ArgsUsage: "[repository url...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "cutoff",
				Usage: "Only mine commits after this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:    "extension",
				Aliases: []string{"e"},
				Usage:   "Tracked source file extension",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Directory holding the working copies",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory the output files are written to",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (csv, ndjson)",
			},
			&cli.StringFlag{
				Name:  "compression",
				Usage: "Output compression (none, gzip, zstd)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Glob patterns to include (can be specified multiple times)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Glob patterns to exclude (can be specified multiple times)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail a repository on the first commit that cannot be resolved",
			},
		},
		Action: mineAction,
	}
}

func mineAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyMineFlags(c, cfg)

	run, err := cfg.RunConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	start := time.Now()
	log := console.NewReporter(errWriter(c))
	log.Infof("Mining %d repositories for commits after %s", len(run.Sources), cfg.Cutoff)

	outcomes, err := mining.NewOrchestrator(run, log).Run(c.Context)
	if err != nil {
		return fmt.Errorf("failed to acquire repositories: %w", err)
	}

	failed := 0
	for _, out := range outcomes {
		if out.Kind != mining.OutcomeWritten {
			failed++
		}
	}
	log.Infof("Completed in %s (%d of %d repositories failed)", time.Since(start).Round(time.Millisecond), failed, len(outcomes))
	return nil
}

// applyMineFlags overrides cfg with the flags that were set and with the
// positional repository urls.
func applyMineFlags(c *cli.Context, cfg *config.Config) {
	if c.NArg() > 0 {
		cfg.Repositories = c.Args().Slice()
	}
	if c.IsSet("cutoff") {
		cfg.Cutoff = c.String("cutoff")
	}
	if c.IsSet("extension") {
		cfg.Extension = c.String("extension")
	}
	if c.IsSet("cache-dir") {
		cfg.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("compression") {
		cfg.Output.Compression = c.String("compression")
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if c.Bool("strict") {
		cfg.Walk.StrictResolution = true
	}
}
