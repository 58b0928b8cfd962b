package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	apikey "github.com/truestamp/prefixed-api-key"
)

// HashCommand returns the hash command.
func HashCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "Compute the hex digest of a long token",
		ArgsUsage: "LONG_TOKEN",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "hmac-key",
				Usage: "Compute the keyed digest instead of the plain one",
			},
		},
		Action: hashRun,
	}
}

func hashRun(c *cli.Context) error {
	longToken := c.Args().First()
	if longToken == "" {
		return fmt.Errorf("long token required")
	}

	var digest string
	if hmacKey := c.String("hmac-key"); hmacKey != "" {
		scheme, err := apikey.NewKeyedScheme([]byte(hmacKey))
		if err != nil {
			return err
		}
		digest = scheme.HashLongToken(longToken)
	} else {
		digest = apikey.HashLongToken(longToken)
	}

	fmt.Println(digest)
	return nil
}
