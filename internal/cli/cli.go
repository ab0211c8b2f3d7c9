package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. Called by
// main with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the arbor CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "arbor",
		Short:        "arbor visualizes trees as interactive GPU treemaps",
		Long:         `arbor renders large hierarchical trees as nested treemaps you can pan, zoom, rotate and click into.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			arbor.SetLogger(logger.WithPrefix("arbor"))
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("arbor %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newViewCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newDemoCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// loadConfig returns the file's configuration, or the defaults when path is
// empty.
func loadConfig(path string) (arbor.Config, error) {
	if path == "" {
		return arbor.DefaultConfig(), nil
	}
	return arbor.LoadConfig(path)
}
