package factory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStylesheet_CSS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.css")
	require.NoError(t, os.WriteFile(path, []byte(`.a { content: base64("x"); }`), 0600))

	css, err := loadStylesheet(path)
	require.NoError(t, err)
	assert.Contains(t, css, `"eA=="`)
	assert.NotContains(t, css, "base64(")
}

func TestLoadStylesheet_Missing(t *testing.T) {
	_, err := loadStylesheet(filepath.Join(t.TempDir(), "missing.css"))
	assert.Error(t, err)
}
