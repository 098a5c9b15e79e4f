package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitz-web/blitz/internal/config"
	"github.com/blitz-web/blitz/internal/factory"
	"github.com/blitz-web/blitz/internal/preset"
)

// clearWellKnown drops the well-known variables from the process environment
// for the duration of the test, so the built-in defaults are observable.
func clearWellKnown(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NODE_ENV", "PORT", "HOST"} {
		t.Setenv(key, "") // register restore
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestResolveSetup_MissingProjectConfigUsesDefaults(t *testing.T) {
	clearWellKnown(t)
	root := t.TempDir()

	setup, err := resolveSetup(root, 0, "", preset.EnvDevelopment)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, setup.Port)
	assert.Equal(t, config.DefaultHost, setup.Host)
	assert.Equal(t, preset.EnvDevelopment, setup.Env.NodeEnv())

	// The defaulted setup yields a working dev config with the full plugin
	// complement.
	cfg, err := factory.Create(factory.TargetWeb, factory.ModeDev, setup.factoryOptions(nil))
	require.NoError(t, err)

	names := make([]string, 0, len(cfg.Build.Plugins))
	for _, p := range cfg.Build.Plugins {
		names = append(names, p.Name)
	}
	assert.Equal(t,
		[]string{"blitz-dev-client-modules", "blitz-styles", "blitz-overlay-silencer", "blitz-reporter"},
		names)
	require.NotNil(t, cfg.DevServer)
	assert.Equal(t, config.DefaultPort+1, cfg.DevServer.Port)
}

func TestResolveSetup_MalformedProjectConfigFails(t *testing.T) {
	clearWellKnown(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "blitz.yaml"), []byte("port: [oops\n"), 0600))

	setup, err := resolveSetup(root, 0, "", preset.EnvDevelopment)
	assert.Error(t, err)
	assert.Nil(t, setup)
}

func TestResolveSetup_ProjectConfigApplied(t *testing.T) {
	clearWellKnown(t)
	root := t.TempDir()
	content := "port: 4000\nhost: 0.0.0.0\nheaders:\n  X-Robots-Tag: none\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "blitz.yaml"), []byte(content), 0600))

	setup, err := resolveSetup(root, 0, "", preset.EnvDevelopment)
	require.NoError(t, err)

	assert.Equal(t, 4000, setup.Port)
	assert.Equal(t, "0.0.0.0", setup.Host)

	opts := setup.factoryOptions(nil)
	assert.Equal(t, "none", opts.Headers["X-Robots-Tag"])
}

func TestResolveSetup_FlagBeatsProjectConfig(t *testing.T) {
	clearWellKnown(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "blitz.yaml"), []byte("port: 4000\n"), 0600))

	setup, err := resolveSetup(root, 9000, "", preset.EnvDevelopment)
	require.NoError(t, err)
	assert.Equal(t, 9000, setup.Port)
	assert.Equal(t, 9000, setup.Env.Port())
}
