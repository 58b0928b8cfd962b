package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/truestamp/prefixed-api-key/internal/cli/output"
	"github.com/truestamp/prefixed-api-key/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version and build information",
		Action: versionRun,
	}
}

func versionRun(c *cli.Context) error {
	info := buildinfo.Get()

	cfg := GetConfig(c)
	switch output.Format(cfg.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(cfg.Output), false)
		return formatter.Format(os.Stdout, info)
	default:
		fmt.Printf("Version:    %s\n", info.Version)
		fmt.Printf("Commit:     %s\n", info.Commit)
		fmt.Printf("Build time: %s\n", info.BuildTime)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		return nil
	}
}
