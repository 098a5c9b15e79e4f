package envloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearWellKnown drops the well-known variables from the process environment
// for the duration of the test, so injected defaults are observable.
func clearWellKnown(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NODE_ENV", "PORT", "HOST"} {
		t.Setenv(key, "") // register restore
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_InjectedDefaults(t *testing.T) {
	clearWellKnown(t)

	snap, err := Load(Options{NodeEnv: "development", Host: "localhost", Port: 3000})
	require.NoError(t, err)

	assert.Equal(t, "development", snap.NodeEnv())
	assert.Equal(t, "localhost", snap.Host())
	assert.Equal(t, 3000, snap.Port())
}

func TestLoad_Precedence(t *testing.T) {
	clearWellKnown(t)

	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("PORT=4000\nBLITZ_API=from-file\n"), 0600))

	t.Setenv("PORT", "5000")
	t.Setenv("BLITZ_TOKEN", "from-process")

	snap, err := Load(Options{DotenvPath: dotenv, NodeEnv: "development", Host: "localhost", Port: 3000})
	require.NoError(t, err)

	raw := snap.Raw()
	// Process environment beats the .env file, which beats injected defaults.
	assert.Equal(t, "5000", raw["PORT"])
	assert.Equal(t, "from-file", raw["BLITZ_API"])
	assert.Equal(t, "from-process", raw["BLITZ_TOKEN"])
}

func TestLoad_UnprefixedVariablesExcluded(t *testing.T) {
	clearWellKnown(t)

	t.Setenv("SECRET_THING", "do-not-leak")

	snap, err := Load(Options{NodeEnv: "development", Host: "localhost", Port: 3000})
	require.NoError(t, err)

	_, ok := snap.Raw()["SECRET_THING"]
	assert.False(t, ok)
}

func TestLoad_MissingDotenvIsNotAnError(t *testing.T) {
	clearWellKnown(t)

	snap, err := Load(Options{
		DotenvPath: filepath.Join(t.TempDir(), ".env"),
		NodeEnv:    "production",
		Host:       "localhost",
		Port:       3000,
	})
	require.NoError(t, err)
	assert.Equal(t, "production", snap.NodeEnv())
}

func TestSnapshot_Stringified(t *testing.T) {
	clearWellKnown(t)

	t.Setenv("BLITZ_NAME", `say "hi"`)

	snap, err := Load(Options{NodeEnv: "test", Host: "localhost", Port: 3000})
	require.NoError(t, err)

	defs := snap.Stringified()
	assert.Equal(t, `"test"`, defs["process.env.NODE_ENV"])
	assert.Equal(t, `"say \"hi\""`, defs["process.env.BLITZ_NAME"])
}

func TestSnapshot_RawReturnsCopy(t *testing.T) {
	clearWellKnown(t)

	snap, err := Load(Options{NodeEnv: "test", Host: "localhost", Port: 3000})
	require.NoError(t, err)

	snap.Raw()["NODE_ENV"] = "mutated"
	assert.Equal(t, "test", snap.NodeEnv())
}
