package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"

	"github.com/blitz-web/blitz/internal/console"
	"github.com/blitz-web/blitz/internal/eventbus"
	"github.com/blitz-web/blitz/internal/factory"
	"github.com/blitz-web/blitz/internal/logger"
	"github.com/blitz-web/blitz/internal/manifest"
	"github.com/blitz-web/blitz/internal/preset"
)

// NewBuildCmd returns the "build" subcommand that produces production
// bundles for both targets and writes the asset manifest.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build production bundles",
		Long:  "Build minified, content-hashed server and client bundles into the build directory and write build/assets.json mapping entry names to their output files.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild()
		},
	}
	return cmd
}

func runBuild() error {
	setup, err := resolveSetup(".", 0, "", preset.EnvProduction)
	if err != nil {
		console.New(os.Stderr, false).Errorf("%v", err)
		os.Exit(1)
	}

	// Stale hashed outputs from earlier builds would otherwise accumulate.
	// The log file lives under the build directory, so clean before opening it.
	if err := os.RemoveAll(setup.Project.Build()); err != nil {
		return fmt.Errorf("cleaning build directory: %w", err)
	}

	log, err := logger.NewBuildLogger(setup.Project.BuildLogDir(), setup.App.SlogLevel())
	if err != nil {
		return err
	}

	bus := eventbus.New(log)
	reporter := console.New(os.Stdout, false)
	bus.Subscribe(reporter.Handle)

	opts := setup.factoryOptions(bus)

	assets := manifest.AssetManifest{}
	for _, target := range []factory.Target{factory.TargetNode, factory.TargetWeb} {
		cfg, err := factory.Create(target, factory.ModeProd, opts)
		if err != nil {
			return err
		}

		result := api.Build(cfg.Build)
		if len(result.Errors) > 0 {
			for _, msg := range result.Errors {
				reporter.Errorf("%s", formatBuildMessage(msg))
			}
			return fmt.Errorf("%s build failed with %d error(s)", target, len(result.Errors))
		}

		partial, err := manifest.BuildAssetManifest(result.Metafile, "")
		if err != nil {
			return fmt.Errorf("reading %s build metadata: %w", target, err)
		}
		for name, entry := range partial {
			assets[name] = entry
		}
	}

	if err := manifest.WriteAssetManifest(assets, setup.Project.AssetManifest()); err != nil {
		return err
	}

	// Close drains queued lifecycle events before the summary line.
	bus.Close()
	reporter.Successf("wrote %s", relPath(setup.Project.Root, setup.Project.AssetManifest()))
	return nil
}

func formatBuildMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d %s", msg.Location.File, msg.Location.Line, msg.Text)
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
