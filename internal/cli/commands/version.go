package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbind/pkg/adapter"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the leapbind version, the build it came from and the database
adapters compiled in for catalog introspection.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, info.Version)
				return
			}
			_, _ = fmt.Fprintf(out, "leapbind v%s\n", info.Version)
			_, _ = fmt.Fprintf(out, "  commit:   %s\n", info.Commit)
			_, _ = fmt.Fprintf(out, "  built:    %s\n", info.Date)
			_, _ = fmt.Fprintf(out, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			adapters := adapter.Names()
			if len(adapters) == 0 {
				adapters = []string{"none"}
			}
			_, _ = fmt.Fprintf(out, "  adapters: %s\n", strings.Join(adapters, ", "))
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")

	return cmd
}
