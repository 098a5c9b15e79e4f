package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blitz.yaml")
	content := "port: 4000\nhost: 0.0.0.0\nclearConsole: true\nheaders:\n  X-Robots-Tag: none\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	pc, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, pc.Port)
	assert.Equal(t, "0.0.0.0", pc.Host)
	assert.True(t, pc.ClearConsole)
	assert.Equal(t, "none", pc.Headers["X-Robots-Tag"])
}

func TestLoadProject_MissingFileYieldsDefaults(t *testing.T) {
	pc, err := LoadProject(filepath.Join(t.TempDir(), "blitz.yaml"))
	require.NoError(t, err)
	assert.Zero(t, pc.Port)
	assert.Empty(t, pc.Host)
	assert.False(t, pc.ClearConsole)
}

func TestLoadProject_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blitz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [oops\n"), 0600))

	pc, err := LoadProject(path)
	assert.Error(t, err)
	assert.Nil(t, pc)
}

func TestResolvePort(t *testing.T) {
	tests := []struct {
		name    string
		flag    int
		env     int
		project int
		want    int
	}{
		{"flag wins", 9000, 8000, 7000, 9000},
		{"env beats project", 0, 8000, 7000, 8000},
		{"project beats default", 0, 0, 7000, 7000},
		{"default", 0, 0, 0, DefaultPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePort(tt.flag, &AppConfig{Port: tt.env}, &ProjectConfig{Port: tt.project})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveHost(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		env     string
		project string
		want    string
	}{
		{"flag wins", "a", "b", "c", "a"},
		{"env beats project", "", "b", "c", "b"},
		{"project beats default", "", "", "c", "c"},
		{"default", "", "", "", DefaultHost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveHost(tt.flag, &AppConfig{Host: tt.env}, &ProjectConfig{Host: tt.project})
			assert.Equal(t, tt.want, got)
		})
	}
}
