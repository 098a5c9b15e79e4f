package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"

	"github.com/blitz-web/blitz/internal/console"
	"github.com/blitz-web/blitz/internal/devserver"
	"github.com/blitz-web/blitz/internal/eventbus"
	"github.com/blitz-web/blitz/internal/factory"
	"github.com/blitz-web/blitz/internal/logger"
	"github.com/blitz-web/blitz/internal/preset"
	"github.com/blitz-web/blitz/internal/runner"
)

// NewStartCmd returns the "start" subcommand that runs the development loop:
// both compilers in watch mode, the asset dev server, and the application
// server process restarted after every successful server rebuild.
func NewStartCmd() *cobra.Command {
	var (
		port    int
		host    string
		noClear bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the development build loop",
		Long:  "Build the server and client bundles in watch mode, serve client assets on the port next to the application's, and restart the application server after each successful rebuild.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStart(port, host, noClear)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Application port (default from PORT or blitz.yaml, falling back to 3000)")
	cmd.Flags().StringVar(&host, "host", "", "Bind host for dev serving (default from HOST or blitz.yaml)")
	cmd.Flags().BoolVar(&noClear, "no-clear", false, "Never clear the terminal between rebuilds")
	return cmd
}

func runStart(flagPort int, flagHost string, noClear bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	setup, err := resolveSetup(".", flagPort, flagHost, preset.EnvDevelopment)
	if err != nil {
		console.New(os.Stderr, false).Errorf("%v", err)
		os.Exit(1)
	}

	log, err := logger.NewBuildLogger(setup.Project.BuildLogDir(), setup.App.SlogLevel())
	if err != nil {
		return err
	}

	bus := eventbus.New(log)
	defer bus.Close()

	reporter := console.New(os.Stdout, setup.File.ClearConsole && !noClear)
	bus.Subscribe(reporter.Handle)

	opts := setup.factoryOptions(bus)

	serverCfg, err := factory.Create(factory.TargetNode, factory.ModeDev, opts)
	if err != nil {
		return err
	}
	clientCfg, err := factory.Create(factory.TargetWeb, factory.ModeDev, opts)
	if err != nil {
		return err
	}

	run := runner.New(ctx, runner.Options{
		Script: filepath.Join(setup.Project.Build(), "server.js"),
		Port:   setup.Port,
		Logger: log,
	})
	bus.Subscribe(run.Handle)
	defer run.Stop()

	serverCtx, ctxErr := api.Context(serverCfg.Build)
	if ctxErr != nil {
		reporter.Errorf("server compiler: %v", ctxErr)
		os.Exit(1)
	}
	defer serverCtx.Dispose()

	clientCtx, ctxErr := api.Context(clientCfg.Build)
	if ctxErr != nil {
		reporter.Errorf("client compiler: %v", ctxErr)
		os.Exit(1)
	}
	defer clientCtx.Dispose()

	// Each compiler watches its own file graph; a change rebuilds only the
	// bundles whose graph it touches.
	if err := serverCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("watching server sources: %w", err)
	}
	if err := clientCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("watching client sources: %w", err)
	}

	srv, err := devserver.Start(clientCtx, clientCfg.DevServer, log)
	if err != nil {
		return err
	}

	reporter.Ready(fmt.Sprintf("http://%s:%d", setup.Host, setup.Port), srv.URL())

	return srv.Run(ctx)
}
