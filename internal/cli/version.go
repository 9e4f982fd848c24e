package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Задаются при сборке через -ldflags "-X feastiq/internal/cli.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), GetVersionString())
			return nil
		},
	}
}

func GetVersionString() string {
	return fmt.Sprintf("feastiq version %s (commit: %s, built: %s, %s %s/%s)",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
