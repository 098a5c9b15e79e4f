package factory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitz-web/blitz/internal/client"
	"github.com/blitz-web/blitz/internal/envloader"
	"github.com/blitz-web/blitz/internal/paths"
)

func testOptions(t *testing.T, nodeEnv string) Options {
	t.Helper()

	root := t.TempDir()
	project, err := paths.New(root)
	require.NoError(t, err)

	pkg := `{"dependencies": {"react": "*", "express": "*", "theme.css": "*", "logo.svg": "*"}}`
	require.NoError(t, os.WriteFile(project.PackageJSON(), []byte(pkg), 0600))

	// Pin the well-known variables so the surrounding environment cannot
	// shadow the injected defaults.
	t.Setenv("NODE_ENV", nodeEnv)
	t.Setenv("HOST", "localhost")
	t.Setenv("PORT", "3000")

	snap, err := envloader.Load(envloader.Options{NodeEnv: nodeEnv, Host: "localhost", Port: 3000})
	require.NoError(t, err)

	return Options{
		Paths: project,
		Env:   snap,
		Port:  3000,
		Host:  "localhost",
	}
}

func TestCreate_FilenameHashingPolicy(t *testing.T) {
	tests := []struct {
		target   Target
		mode     Mode
		nodeEnv  string
		wantHash bool
	}{
		{TargetWeb, ModeDev, "development", false},
		{TargetNode, ModeDev, "development", false},
		{TargetWeb, ModeProd, "production", true},
		{TargetNode, ModeProd, "production", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.target)+"/"+string(tt.mode), func(t *testing.T) {
			cfg, err := Create(tt.target, tt.mode, testOptions(t, tt.nodeEnv))
			require.NoError(t, err)

			require.NotEmpty(t, cfg.Build.EntryNames)
			assert.Equal(t, tt.wantHash, strings.Contains(cfg.Build.EntryNames, "[hash]"))
			assert.Equal(t, tt.wantHash, strings.Contains(cfg.Build.AssetNames, "[hash]"))
		})
	}
}

func TestCreate_OutputLocations(t *testing.T) {
	opts := testOptions(t, "development")

	web, err := Create(TargetWeb, ModeDev, opts)
	require.NoError(t, err)
	assert.Equal(t, opts.Paths.PublicBuild(), web.Build.Outdir)
	assert.Equal(t, "http://localhost:3001/", web.Build.PublicPath)

	node, err := Create(TargetNode, ModeDev, opts)
	require.NoError(t, err)
	assert.Equal(t, opts.Paths.Build(), node.Build.Outdir)
	assert.Equal(t, "/", node.Build.PublicPath)
}

func TestCreate_NodeExternalsExcludeAssets(t *testing.T) {
	for _, mode := range []Mode{ModeDev, ModeProd} {
		t.Run(string(mode), func(t *testing.T) {
			nodeEnv := "development"
			if mode == ModeProd {
				nodeEnv = "production"
			}
			cfg, err := Create(TargetNode, mode, testOptions(t, nodeEnv))
			require.NoError(t, err)

			assert.ElementsMatch(t, []string{"express", "react"}, cfg.Build.External)
			assert.NotContains(t, cfg.Build.External, "theme.css")
			assert.NotContains(t, cfg.Build.External, "logo.svg")
		})
	}
}

func TestCreate_InvalidEnvironmentFails(t *testing.T) {
	for _, env := range []string{"", "staging", "Production"} {
		t.Run("env="+env, func(t *testing.T) {
			cfg, err := Create(TargetWeb, ModeDev, testOptions(t, env))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestCreate_ModifyHookPassthrough(t *testing.T) {
	sentinel := &Config{Target: "sentinel"}
	opts := testOptions(t, "development")
	opts.Modify = func(cfg *Config) *Config {
		// The incoming config is the fully assembled one.
		assert.Equal(t, TargetWeb, cfg.Target)
		return sentinel
	}

	cfg, err := Create(TargetWeb, ModeDev, opts)
	require.NoError(t, err)
	assert.Same(t, sentinel, cfg)
}

func TestCreate_DevEntriesPrependClients(t *testing.T) {
	opts := testOptions(t, "development")
	cfg, err := Create(TargetWeb, ModeDev, opts)
	require.NoError(t, err)

	require.Len(t, cfg.Entries, 3)
	assert.Equal(t, client.Specifiers(), cfg.Entries[:2])

	require.NotNil(t, cfg.Build.Stdin)
	devIdx := strings.Index(cfg.Build.Stdin.Contents, client.DevClientSpecifier)
	hotIdx := strings.Index(cfg.Build.Stdin.Contents, client.HotClientSpecifier)
	userIdx := strings.Index(cfg.Build.Stdin.Contents, "./src/client")
	assert.True(t, devIdx >= 0 && devIdx < hotIdx && hotIdx < userIdx,
		"dev clients must be imported ahead of the user entry")
}

func TestCreate_ProdWebHasNoDevEntries(t *testing.T) {
	cfg, err := Create(TargetWeb, ModeProd, testOptions(t, "production"))
	require.NoError(t, err)

	assert.Nil(t, cfg.Build.Stdin)
	require.Len(t, cfg.Entries, 1)
	assert.NotContains(t, cfg.Entries[0], "blitz/")
	assert.Nil(t, cfg.DevServer)
}

func TestCreate_DevServerDescriptor(t *testing.T) {
	tests := []struct {
		name     string
		port     int
		wantPort int
	}{
		{"explicit port", 8080, 8081},
		{"default port", 0, DefaultPort + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, "development")
			opts.Port = tt.port
			opts.Headers = map[string]string{"X-Custom": "1"}

			cfg, err := Create(TargetWeb, ModeDev, opts)
			require.NoError(t, err)

			require.NotNil(t, cfg.DevServer)
			assert.Equal(t, tt.wantPort, cfg.DevServer.Port)
			assert.Equal(t, "*", cfg.DevServer.Headers["Access-Control-Allow-Origin"])
			assert.Equal(t, "1", cfg.DevServer.Headers["X-Custom"])
			assert.Equal(t, filepath.Join(opts.Paths.PublicAssets(), "index.html"), cfg.DevServer.Fallback)
		})
	}
}

func TestDevServerPort(t *testing.T) {
	assert.Equal(t, 3001, DevServerPort(3000))
	assert.Equal(t, 9080, DevServerPort(9079))
}

func TestCreate_PluginSelection(t *testing.T) {
	opts := testOptions(t, "development")

	dev, err := Create(TargetWeb, ModeDev, opts)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"blitz-dev-client-modules", "blitz-styles", "blitz-overlay-silencer", "blitz-reporter"},
		pluginNames(dev))

	node, err := Create(TargetNode, ModeDev, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"blitz-bundled-assets", "blitz-styles", "blitz-reporter"}, pluginNames(node))
}

func pluginNames(cfg *Config) []string {
	names := make([]string, 0, len(cfg.Build.Plugins))
	for _, p := range cfg.Build.Plugins {
		names = append(names, p.Name)
	}
	return names
}

func TestCreate_EnvDefinesInjected(t *testing.T) {
	cfg, err := Create(TargetWeb, ModeDev, testOptions(t, "development"))
	require.NoError(t, err)

	assert.Equal(t, `"development"`, cfg.Build.Define["process.env.NODE_ENV"])
}

func TestChainFor(t *testing.T) {
	tests := []struct {
		target Target
		mode   Mode
		want   styleChain
	}{
		{TargetNode, ModeDev, chainInline},
		{TargetNode, ModeProd, chainInline},
		{TargetWeb, ModeDev, chainInject},
		{TargetWeb, ModeProd, chainExtract},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chainFor(tt.target, tt.mode), "%s/%s", tt.target, tt.mode)
	}
}

func TestApplyChain(t *testing.T) {
	css := ".a { color: red; }"

	inline, loader := applyChain(chainInline, css)
	assert.Contains(t, inline, "module.exports =")
	assert.NotEqual(t, css, inline)
	assert.Equal(t, api.LoaderJS, loader)

	inject, loader := applyChain(chainInject, css)
	assert.Contains(t, inject, "document.createElement")
	assert.Equal(t, api.LoaderJS, loader)

	extract, loader := applyChain(chainExtract, css)
	assert.Equal(t, css, extract)
	assert.Equal(t, api.LoaderCSS, loader)
}
