package command

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	apikey "github.com/truestamp/prefixed-api-key"
	cliconfig "github.com/truestamp/prefixed-api-key/internal/cli/config"
	"github.com/truestamp/prefixed-api-key/internal/infra/buildinfo"
	"github.com/truestamp/prefixed-api-key/internal/telemetry/logger"
	"github.com/truestamp/prefixed-api-key/keyring"
)

// App creates the root CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "apikey",
		Usage:   "Generate, inspect, and verify prefixed API keys",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GenerateCommand(),
			VerifyCommand(),
			InspectCommand(),
			HashCommand(),
			KeysCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: setup,
	}

	return app
}

// globalFlags returns flags available to all commands.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{"APIKEY_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format (table, json, yaml)",
		},
		&cli.StringFlag{
			Name:    "keyring",
			Aliases: []string{"k"},
			Usage:   "Keyring directory",
			EnvVars: []string{"APIKEY_KEYRING_PATH"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Log errors only",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show additional columns in table output",
		},
	}
}

// setup loads configuration and prepares shared command state.
//
// Precedence: flags override environment variables, which override the
// config file, which overrides built-in defaults. The flag/env layering
// is handled by urfave/cli; this applies the flag layer on top of the
// loaded file.
func setup(c *cli.Context) error {
	cfg, err := cliconfig.Load(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("keyring") {
		cfg.Keyring.Path = c.String("keyring")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.Log.Level = "error"
	}

	log := logger.NewSlog(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata["config"] = cfg
	c.App.Metadata["logger"] = log

	return nil
}

// GetConfig retrieves the effective configuration from app metadata.
func GetConfig(c *cli.Context) *cliconfig.Config {
	if cfg, ok := c.App.Metadata["config"].(*cliconfig.Config); ok {
		return cfg
	}
	return cliconfig.Default()
}

// GetLogger retrieves the configured logger from app metadata.
func GetLogger(c *cli.Context) *slog.Logger {
	if log, ok := c.App.Metadata["logger"].(*slog.Logger); ok {
		return log
	}
	return logger.NewSlog(logger.DefaultConfig())
}

// openStore opens the keyring store at the configured path.
//
// The caller owns the returned store and must Close it.
func openStore(c *cli.Context) (*keyring.BadgerStore, error) {
	cfg := GetConfig(c)

	store, err := keyring.NewBadgerStore(keyring.DefaultBadgerConfig(cfg.Keyring.Path), GetLogger(c))
	if err != nil {
		return nil, fmt.Errorf("open keyring at %s: %w", cfg.Keyring.Path, err)
	}

	return store, nil
}

// openManager opens the keyring store and wraps it in a manager.
//
// Commands that define an --hmac-key flag get a keyed manager when the
// flag is set, so records using the keyed digest scheme can be issued
// and verified. The caller owns the returned store and must Close it.
func openManager(c *cli.Context) (*keyring.Manager, *keyring.BadgerStore, error) {
	var scheme *apikey.KeyedScheme
	if hmacKey := c.String("hmac-key"); hmacKey != "" {
		s, err := apikey.NewKeyedScheme([]byte(hmacKey))
		if err != nil {
			return nil, nil, err
		}
		scheme = s
	}

	store, err := openStore(c)
	if err != nil {
		return nil, nil, err
	}

	mgr := keyring.NewManager(store, &keyring.ManagerConfig{
		Scheme: scheme,
		Logger: GetLogger(c),
	})

	return mgr, store, nil
}
