package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	apikey "github.com/truestamp/prefixed-api-key"
	"github.com/truestamp/prefixed-api-key/internal/cli/output"
)

// GenerateCommand returns the generate command.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Generate prefixed API keys",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "key-prefix",
				Aliases: []string{"p"},
				Usage:   "Key prefix (lowercase letters, digits, underscores)",
			},
			&cli.StringFlag{
				Name:  "short-prefix",
				Usage: "Fixed prefix for the short token (lowercase letters, digits)",
			},
			&cli.IntFlag{
				Name:  "short-length",
				Usage: "Short token length (4-24, 0 = default)",
			},
			&cli.IntFlag{
				Name:  "long-length",
				Usage: "Long token length (4-24, 0 = default)",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Value:   1,
				Usage:   "Number of keys to generate",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Persist verification records to the keyring",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Display name for saved records",
			},
			&cli.StringFlag{
				Name:  "hmac-key",
				Usage: "Save records with the keyed digest scheme (with --save)",
			},
		},
		Action: generateRun,
	}
}

// generateResult is the printable outcome of one generated key.
//
// ID and Name are present only when the record was saved to the keyring.
type generateResult struct {
	ID            string `json:"id,omitempty" yaml:"id,omitempty"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Token         string `json:"token" yaml:"token"`
	ShortToken    string `json:"short_token" yaml:"short_token"`
	LongTokenHash string `json:"long_token_hash" yaml:"long_token_hash"`
}

func generateRun(c *cli.Context) error {
	cfg := GetConfig(c)

	opts := &apikey.GenerationOptions{
		KeyPrefix:        c.String("key-prefix"),
		ShortTokenPrefix: c.String("short-prefix"),
		ShortTokenLength: c.Int("short-length"),
		LongTokenLength:  c.Int("long-length"),
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = cfg.Defaults.KeyPrefix
	}
	if opts.KeyPrefix == "" {
		return fmt.Errorf("key prefix required (--key-prefix or defaults.key_prefix in config)")
	}
	if opts.ShortTokenPrefix == "" {
		opts.ShortTokenPrefix = cfg.Defaults.ShortPrefix
	}
	if opts.ShortTokenLength == 0 {
		opts.ShortTokenLength = cfg.Defaults.ShortLength
	}
	if opts.LongTokenLength == 0 {
		opts.LongTokenLength = cfg.Defaults.LongLength
	}

	count := c.Int("count")
	if count < 1 {
		return fmt.Errorf("count must be at least 1")
	}

	results := make([]generateResult, 0, count)

	if c.Bool("save") {
		mgr, store, err := openManager(c)
		if err != nil {
			return err
		}
		defer store.Close()

		for i := 0; i < count; i++ {
			key, rec, err := mgr.Issue(c.Context, opts, c.String("name"))
			if err != nil {
				return fmt.Errorf("issue key: %w", err)
			}
			// The record digest is authoritative; with --hmac-key it is
			// the keyed digest rather than the plain one.
			results = append(results, generateResult{
				ID:            rec.ID,
				Name:          rec.Name,
				Token:         key.Token,
				ShortToken:    key.ShortToken,
				LongTokenHash: rec.LongTokenHash,
			})
		}
	} else {
		for i := 0; i < count; i++ {
			key, err := apikey.GenerateAPIKey(opts)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			results = append(results, generateResult{
				Token:         key.Token,
				ShortToken:    key.ShortToken,
				LongTokenHash: key.LongTokenHash,
			})
		}
	}

	return printGenerateResults(c, results)
}

func printGenerateResults(c *cli.Context, results []generateResult) error {
	cfg := GetConfig(c)

	switch output.Format(cfg.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(cfg.Output), c.Bool("wide"))
		if len(results) == 1 {
			return formatter.Format(os.Stdout, results[0])
		}
		return formatter.Format(os.Stdout, results)
	default:
		headers := []string{"TOKEN", "SHORT TOKEN", "LONG TOKEN HASH"}
		saved := results[0].ID != ""
		if saved {
			headers = append([]string{"ID"}, headers...)
		}

		table := &output.Table{Headers: headers}
		for _, r := range results {
			row := []string{r.Token, r.ShortToken, r.LongTokenHash}
			if saved {
				row = append([]string{truncateID(r.ID)}, row...)
			}
			table.Rows = append(table.Rows, row)
		}
		if err := table.Render(os.Stdout); err != nil {
			return err
		}

		if saved {
			fmt.Printf("\n%d record(s) saved to the keyring.\n", len(results))
		}
		fmt.Printf("\nStore the full token now. Only its digest is kept, so the token cannot be shown again.\n")
		return nil
	}
}
