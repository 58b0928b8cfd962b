package command

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/truestamp/prefixed-api-key/internal/cli/config"
)

// Sample token shared across command tests.
const (
	testToken     = "my_company_BRTRKFsL_51FwqftsmMDHHbJAMEXXHCgG"
	testLongToken = "51FwqftsmMDHHbJAMEXXHCgG"
	testTokenHash = "d70d981d87b449c107327c2a2afbf00d4b58070d6ba571aac35d7ea3e7c79f37"
)

// testConfig returns a default config whose keyring lives under a
// temporary directory.
func testConfig(t *testing.T) *cliconfig.Config {
	t.Helper()

	cfg := cliconfig.Default()
	cfg.Keyring.Path = filepath.Join(t.TempDir(), "keyring")
	return cfg
}

// testContext creates a CLI context the way urfave/cli would hand it to
// cmd's action: global flags plus the command's flags, parsed from args.
// Pass nil for cmd when only global flags matter.
func testContext(t *testing.T, cfg *cliconfig.Config, cmd *cli.Command, args ...string) *cli.Context {
	t.Helper()

	app := &cli.App{
		Name:  "test",
		Flags: globalFlags(),
		Metadata: map[string]any{
			"config": cfg,
			"logger": slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range globalFlags() {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply global flag: %v", err)
		}
	}
	if cmd != nil {
		for _, f := range cmd.Flags {
			if err := f.Apply(set); err != nil {
				t.Fatalf("apply command flag: %v", err)
			}
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	return cli.NewContext(app, set, nil)
}

// subcommand finds a named subcommand or fails the test.
func subcommand(t *testing.T, cmd *cli.Command, name string) *cli.Command {
	t.Helper()

	for _, sub := range cmd.Subcommands {
		if sub.Name == name {
			return sub
		}
	}
	t.Fatalf("subcommand %s not found under %s", name, cmd.Name)
	return nil
}

// captureStdout runs fn while capturing everything it writes to stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = old

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}
	return string(data), fnErr
}

// writeTempFile writes contents to a file under a temporary directory
// and returns its path.
func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
