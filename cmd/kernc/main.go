package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kernc/internal/diag"
	"kernc/internal/version"
)

// newRootCmd builds the command tree. Each call returns an independent tree
// so tests can run commands side by side. The caller runs app.teardown after
// Execute, whether or not the command failed.
func newRootCmd() (*cobra.Command, *app) {
	app := &app{}
	root := &cobra.Command{
		Use:           "kernc",
		Short:         "Target resolution and runtime composition for kernel compilation",
		Long:          `kernc resolves the target kernels are compiled for and links the matching runtime modules into one LLVM module.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.String("config", "", "path to kernc.toml (default: search upward from the working directory)")
	flags.String("log-level", "", "operational log level (debug|info|warn|error), overrides [log].level")
	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go execution trace to this file")

	root.AddCommand(
		newTargetCmd(app),
		newRuntimeCmd(app),
		newModulesCmd(app),
		newCacheCmd(app),
		newVersionCmd(app),
	)
	return root, app
}

func main() {
	root, app := newRootCmd()
	err := root.Execute()
	app.teardown(root)
	if err != nil {
		diag.Fatal(err)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
