package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectConfig is the optional per-project customization file (blitz.yaml).
// A missing file is not an error; every field has a working default.
type ProjectConfig struct {
	// Port overrides the declared application port.
	Port int `yaml:"port"`

	// Host overrides the dev serving bind host.
	Host string `yaml:"host"`

	// ClearConsole clears the terminal before each dev rebuild report.
	ClearConsole bool `yaml:"clearConsole"`

	// Headers are extra response headers set by the asset dev server.
	Headers map[string]string `yaml:"headers"`
}

// LoadProject reads the project config at path. A missing file yields a zero
// ProjectConfig; a malformed file is a fatal startup error for the caller.
func LoadProject(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var pc ProjectConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &pc, nil
}

// Built-in defaults used when neither flags, environment nor the project
// config provide a value.
const (
	DefaultPort = 3000
	DefaultHost = "localhost"
)

// ResolvePort picks the declared application port. Precedence, highest
// first: command flag, PORT environment value, project config, default.
func ResolvePort(flagPort int, app *AppConfig, project *ProjectConfig) int {
	if flagPort > 0 {
		return flagPort
	}
	if app.Port > 0 {
		return app.Port
	}
	if project.Port > 0 {
		return project.Port
	}
	return DefaultPort
}

// ResolveHost picks the dev serving host with the same precedence as
// ResolvePort.
func ResolveHost(flagHost string, app *AppConfig, project *ProjectConfig) string {
	if flagHost != "" {
		return flagHost
	}
	if app.Host != "" {
		return app.Host
	}
	if project.Host != "" {
		return project.Host
	}
	return DefaultHost
}
