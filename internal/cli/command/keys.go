package command

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/truestamp/prefixed-api-key/internal/cli/output"
)

// KeysCommand returns the keys subcommand group.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "Manage the local keyring",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List keyring records",
				Action:  keysList,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a keyring record",
				ArgsUsage: "SHORT_TOKEN",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation prompt",
					},
				},
				Action: keysDelete,
			},
			{
				Name:  "export",
				Usage: "Export the keyring as an encrypted snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Snapshot file (defaults to stdout)",
					},
					&cli.StringFlag{
						Name:     "passphrase-file",
						Required: true,
						Usage:    "File holding the snapshot passphrase",
					},
				},
				Action: keysExport,
			},
			{
				Name:  "import",
				Usage: "Import records from an encrypted snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Snapshot file (defaults to stdin)",
					},
					&cli.StringFlag{
						Name:     "passphrase-file",
						Required: true,
						Usage:    "File holding the snapshot passphrase",
					},
				},
				Action: keysImport,
			},
		},
	}
}

func keysList(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.List(c.Context)
	if err != nil {
		return err
	}

	cfg := GetConfig(c)
	wide := c.Bool("wide")

	switch output.Format(cfg.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(cfg.Output), wide)
		return formatter.Format(os.Stdout, recs)
	default:
		headers := []string{"ID", "NAME", "KEY PREFIX", "SHORT TOKEN", "SCHEME", "CREATED"}
		if wide {
			headers = append(headers, "LAST VERIFIED")
		}

		table := &output.Table{Headers: headers}
		for _, rec := range recs {
			id := rec.ID
			if !wide {
				id = truncateID(id)
			}
			name := rec.Name
			if name == "" {
				name = "-"
			}
			row := []string{
				id,
				name,
				rec.KeyPrefix,
				rec.ShortToken,
				string(rec.Scheme),
				rec.CreatedAtTime().Format("2006-01-02 15:04"),
			}
			if wide {
				lastVerified := "-"
				if rec.LastVerifiedAt != 0 {
					lastVerified = rec.LastVerifiedAtTime().Format("2006-01-02 15:04")
				}
				row = append(row, lastVerified)
			}
			table.Rows = append(table.Rows, row)
		}
		if err := table.Render(os.Stdout); err != nil {
			return err
		}

		fmt.Printf("\nTotal: %d records\n", len(recs))
		return nil
	}
}

func keysDelete(c *cli.Context) error {
	shortToken := c.Args().First()
	if shortToken == "" {
		return fmt.Errorf("short token required")
	}

	if !c.Bool("force") {
		fmt.Printf("Delete keyring record for short token '%s'? [y/N]: ", shortToken)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(c.Context, shortToken); err != nil {
		return err
	}

	fmt.Printf("Record for short token %s deleted.\n", shortToken)
	return nil
}

func keysExport(c *cli.Context) error {
	passphrase, err := readPassphraseFile(c.String("passphrase-file"))
	if err != nil {
		return err
	}

	mgr, store, err := openManager(c)
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = os.Stdout
	if path := c.String("file"); path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("create snapshot file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := mgr.Export(c.Context, w, passphrase); err != nil {
		return err
	}

	if path := c.String("file"); path != "" {
		fmt.Printf("Keyring exported to %s.\n", path)
	}
	return nil
}

func keysImport(c *cli.Context) error {
	passphrase, err := readPassphraseFile(c.String("passphrase-file"))
	if err != nil {
		return err
	}

	mgr, store, err := openManager(c)
	if err != nil {
		return err
	}
	defer store.Close()

	var r io.Reader = os.Stdin
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open snapshot file: %w", err)
		}
		defer f.Close()
		r = f
	}

	n, err := mgr.Import(c.Context, r, passphrase)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d records.\n", n)
	return nil
}

// readPassphraseFile reads and trims a passphrase from a file.
func readPassphraseFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read passphrase file: %w", err)
	}

	passphrase := bytes.TrimSpace(data)
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase file %s is empty", path)
	}

	return passphrase, nil
}

// truncateID shortens a record ID for table display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:13] + "..."
}
