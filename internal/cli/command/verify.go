package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	apikey "github.com/truestamp/prefixed-api-key"
	"github.com/truestamp/prefixed-api-key/internal/cli/output"
	"github.com/truestamp/prefixed-api-key/keyring"
)

// VerifyCommand returns the verify command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify a token against a digest or the keyring",
		ArgsUsage: "TOKEN",
		Description: "Without --hash, the token is checked against the keyring and the\n" +
			"matching record is printed. With --hash, the token's long token is\n" +
			"checked against the given digest and the keyring is not touched.\n" +
			"Exits with status 1 when verification fails.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "hash",
				Usage: "Expected long token digest (64 hex chars)",
			},
			&cli.StringFlag{
				Name:  "hmac-key",
				Usage: "HMAC key for keyed digests (with --hash)",
			},
		},
		Action: verifyRun,
	}
}

func verifyRun(c *cli.Context) error {
	token := c.Args().First()
	if token == "" {
		return fmt.Errorf("token required")
	}

	if expected := c.String("hash"); expected != "" {
		return verifyAgainstHash(c, token, expected)
	}

	mgr, store, err := openManager(c)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, ok, err := mgr.Verify(c.Context, token)
	if err != nil {
		return err
	}
	if !ok {
		return cli.Exit("verification failed", 1)
	}

	return printVerifiedRecord(c, rec)
}

// verifyAgainstHash checks the token against an explicit digest,
// bypassing the keyring.
func verifyAgainstHash(c *cli.Context, token, expected string) error {
	var ok bool
	if hmacKey := c.String("hmac-key"); hmacKey != "" {
		scheme, err := apikey.NewKeyedScheme([]byte(hmacKey))
		if err != nil {
			return err
		}
		ok = scheme.CheckAPIKey(token, expected)
	} else {
		ok = apikey.CheckAPIKey(token, expected)
	}

	if !ok {
		return cli.Exit("verification failed", 1)
	}

	fmt.Println("verified")
	return nil
}

func printVerifiedRecord(c *cli.Context, rec *keyring.Record) error {
	cfg := GetConfig(c)

	switch output.Format(cfg.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(cfg.Output), c.Bool("wide"))
		return formatter.Format(os.Stdout, rec)
	default:
		fmt.Println("verified")
		fmt.Printf("  ID:          %s\n", rec.ID)
		if rec.Name != "" {
			fmt.Printf("  Name:        %s\n", rec.Name)
		}
		fmt.Printf("  Key prefix:  %s\n", rec.KeyPrefix)
		fmt.Printf("  Short token: %s\n", rec.ShortToken)
		fmt.Printf("  Scheme:      %s\n", rec.Scheme)
		fmt.Printf("  Created:     %s\n", rec.CreatedAtTime().Format("2006-01-02 15:04:05"))
		return nil
	}
}
