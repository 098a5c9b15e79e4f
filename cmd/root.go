package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blitz-web/blitz/internal/build"
)

var rootCmd = &cobra.Command{
	Use:     "blitz",
	Short:   "Zero-config isomorphic JavaScript tooling",
	Long:    "blitz bundles and serves universal JavaScript applications: a Node server bundle and a browser client bundle built from the same project, with a file-watching dev loop and production builds.",
	Version: build.String(),
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd.AddCommand(NewStartCmd(), NewBuildCmd(), NewUpdateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
