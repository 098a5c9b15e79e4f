package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/blitz-web/blitz/internal/build"
)

const releaseSlug = "blitz-web/blitz"

// NewUpdateCmd returns the "update" subcommand that replaces the running
// binary with the latest published release.
func NewUpdateCmd() *cobra.Command {
	var (
		yes       bool
		checkOnly bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update blitz to the latest release",
		Long:  "Compare the running binary against the latest published release and swap it in place.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(yes, checkOnly)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without asking")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether a newer release exists")
	return cmd
}

func runUpdate(skipConfirm, checkOnly bool) error {
	current := strings.TrimPrefix(build.Version, "v")
	if current == "dev" || current == "unknown" {
		return fmt.Errorf("running a source build (%s); updates apply to tagged releases only", build.Version)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("creating updater: %w", err)
	}

	release, found, err := updater.DetectLatest(context.Background(), selfupdate.ParseSlug(releaseSlug))
	if err != nil {
		return fmt.Errorf("querying releases: %w", err)
	}

	if !found || !release.GreaterThan(current) {
		fmt.Printf("blitz %s is the latest release.\n", build.Version)
		return nil
	}

	fmt.Printf("blitz %s is available (running %s).\n", release.Version(), build.Version)
	if checkOnly {
		return nil
	}

	if !skipConfirm {
		fmt.Print("Install it now? [y/N] ")
		var input string
		fmt.Scanln(&input) //nolint:errcheck,gosec
		if !strings.EqualFold(input, "y") {
			fmt.Println("Leaving the current binary in place.")
			return nil
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating current executable: %w", err)
	}

	if err := updater.UpdateTo(context.Background(), release, exe); err != nil {
		return fmt.Errorf("installing %s: %w", release.Version(), err)
	}

	fmt.Printf("Installed blitz %s.\n", release.Version())
	return nil
}
