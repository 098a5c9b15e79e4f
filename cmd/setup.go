package cmd

import (
	"github.com/blitz-web/blitz/internal/config"
	"github.com/blitz-web/blitz/internal/envloader"
	"github.com/blitz-web/blitz/internal/eventbus"
	"github.com/blitz-web/blitz/internal/factory"
	"github.com/blitz-web/blitz/internal/paths"
)

// projectSetup is the resolved startup configuration shared by the start and
// build commands: project paths, merged settings and the frozen environment
// snapshot.
type projectSetup struct {
	Project *paths.Project
	App     *config.AppConfig
	File    *config.ProjectConfig
	Port    int
	Host    string
	Env     *envloader.Snapshot
}

// resolveSetup loads every configuration source for a command run. A missing
// blitz.yaml yields working defaults; a malformed one is an error the caller
// treats as fatal. defaultEnv fills NODE_ENV when no source sets it.
func resolveSetup(root string, flagPort int, flagHost, defaultEnv string) (*projectSetup, error) {
	project, err := paths.New(root)
	if err != nil {
		return nil, err
	}

	appCfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	projCfg, err := config.LoadProject(project.ConfigFile())
	if err != nil {
		return nil, err
	}

	port := config.ResolvePort(flagPort, appCfg, projCfg)
	host := config.ResolveHost(flagHost, appCfg, projCfg)

	nodeEnv := appCfg.NodeEnv
	if nodeEnv == "" {
		nodeEnv = defaultEnv
	}

	env, err := envloader.Load(envloader.Options{
		DotenvPath: project.DotenvFile(),
		NodeEnv:    nodeEnv,
		Host:       host,
		Port:       port,
	})
	if err != nil {
		return nil, err
	}

	return &projectSetup{
		Project: project,
		App:     appCfg,
		File:    projCfg,
		Port:    port,
		Host:    host,
		Env:     env,
	}, nil
}

// factoryOptions builds the factory inputs from the resolved setup.
func (s *projectSetup) factoryOptions(bus eventbus.Bus) factory.Options {
	return factory.Options{
		Paths:   s.Project,
		Env:     s.Env,
		Port:    s.Port,
		Host:    s.Host,
		Headers: s.File.Headers,
		Bus:     bus,
	}
}
