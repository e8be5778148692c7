package cmd

import (
	"fmt"

	"github.com/masmgr/declmine/config"
	"github.com/urfave/cli/v2"
)

// ConfigCmd returns the config command.
func ConfigCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration or write it to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to this file instead of stdout (.toml selects TOML)",
			},
		},
		Action: configAction,
	}
}

func configAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if path := c.String("output"); path != "" {
		if err := config.SaveConfig(cfg, path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		return nil
	}

	data, err := config.Marshal(cfg, "")
	if err != nil {
		return err
	}
	_, err = outWriter(c).Write(data)
	return err
}
