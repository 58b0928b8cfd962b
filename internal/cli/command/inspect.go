package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	apikey "github.com/truestamp/prefixed-api-key"
	"github.com/truestamp/prefixed-api-key/internal/cli/output"
)

// InspectCommand returns the inspect command.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Parse a token and show its components",
		ArgsUsage: "TOKEN",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "show-secret",
				Usage: "Show the long token in clear text",
			},
		},
		Action: inspectRun,
	}
}

type inspectResult struct {
	KeyPrefix     string `json:"key_prefix" yaml:"key_prefix"`
	ShortToken    string `json:"short_token" yaml:"short_token"`
	LongToken     string `json:"long_token" yaml:"long_token"`
	LongTokenHash string `json:"long_token_hash" yaml:"long_token_hash"`
}

func inspectRun(c *cli.Context) error {
	token := c.Args().First()
	if token == "" {
		return fmt.Errorf("token required")
	}

	components, err := apikey.GetTokenComponents(token)
	if err != nil {
		return err
	}

	keyPrefix, err := apikey.ExtractKeyPrefix(token)
	if err != nil {
		return err
	}

	longToken := components.LongToken
	if !c.Bool("show-secret") {
		// Reuse the display masking so inspect output is safe to paste
		// into logs and tickets.
		masked, err := apikey.ExtractLongToken(apikey.MaskToken(token))
		if err != nil {
			return err
		}
		longToken = masked
	}

	result := inspectResult{
		KeyPrefix:     keyPrefix,
		ShortToken:    components.ShortToken,
		LongToken:     longToken,
		LongTokenHash: components.LongTokenHash,
	}

	cfg := GetConfig(c)
	formatter := output.NewFormatter(output.Format(cfg.Output), c.Bool("wide"))
	return formatter.Format(os.Stdout, result)
}
