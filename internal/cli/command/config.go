package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/truestamp/prefixed-api-key/internal/cli/config"
	"github.com/truestamp/prefixed-api-key/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write a config file with the default values",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: configInit,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

// configShow prints the effective configuration after all layers
// (defaults, file, environment, flags) have been applied.
func configShow(c *cli.Context) error {
	cfg := GetConfig(c)

	if output.Format(cfg.Output) == output.FormatJSON {
		return (&output.JSONFormatter{}).Format(os.Stdout, cfg)
	}
	// Config is YAML on disk, so YAML reads most naturally here.
	return (&output.YAMLFormatter{}).Format(os.Stdout, cfg)
}

func configInit(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		path = cliconfig.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	if err := cliconfig.Save(cliconfig.Default(), path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func configPath(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		path = cliconfig.DefaultConfigPath()
	}

	fmt.Println(path)
	return nil
}
