// Package preset assembles the source-transformation preset for a build
// environment. The preset is an ordered list of transform identifiers plus
// feature presets, mapped onto the bundler's transform settings.
package preset

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
)

// Recognized build environments. Exactly one must be in effect.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Preset is the resolved transformation preset for one environment.
type Preset struct {
	// Env is the environment the preset was built for.
	Env string

	// Plugins is the ordered list of transform-plugin identifiers.
	Plugins []string

	// Presets is the ordered list of feature-preset identifiers.
	Presets []string
}

// New builds the preset for the given environment flag. An unset or
// unrecognized flag is a fatal configuration error: the invocation
// environment is broken and no build may proceed.
func New(env string) (*Preset, error) {
	if env == "" {
		return nil, fmt.Errorf("build environment is not set: expected %s, %s or %s",
			EnvDevelopment, EnvTest, EnvProduction)
	}

	base := []string{
		"syntax-typescript",
		"transform-jsx",
		"transform-class-properties",
	}
	presets := []string{"preset-env", "preset-react"}

	switch env {
	case EnvDevelopment:
		return &Preset{
			Env:     env,
			Plugins: append(base, "jsx-source", "jsx-self"),
			Presets: presets,
		}, nil
	case EnvTest:
		return &Preset{
			Env:     env,
			Plugins: append(base, "transform-modules-commonjs"),
			Presets: presets,
		}, nil
	case EnvProduction:
		return &Preset{
			Env:     env,
			Plugins: append(base, "minify-dead-code", "transform-react-constant-elements"),
			Presets: presets,
		}, nil
	}
	return nil, fmt.Errorf("unrecognized build environment %q: expected %s, %s or %s",
		env, EnvDevelopment, EnvTest, EnvProduction)
}

// Development reports whether the preset targets the development environment.
func (p *Preset) Development() bool {
	return p.Env == EnvDevelopment
}

// ApplyTo maps the preset onto bundler build options: JSX handling, syntax
// target and the production minify axes.
func (p *Preset) ApplyTo(o *api.BuildOptions) {
	o.JSX = api.JSXAutomatic
	o.Target = api.ES2020
	if p.Env == EnvProduction {
		o.MinifyWhitespace = true
		o.MinifyIdentifiers = true
		o.MinifySyntax = true
		o.TreeShaking = api.TreeShakingTrue
	}
	if p.Development() {
		o.JSXDev = true
	}
}
