// Package factory produces bundler configurations for the (target, mode)
// axes: web or node output, development or production build. The factory is
// pure assembly; all compilation behavior lives in the bundler itself.
package factory

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/blitz-web/blitz/internal/client"
	"github.com/blitz-web/blitz/internal/envloader"
	"github.com/blitz-web/blitz/internal/eventbus"
	"github.com/blitz-web/blitz/internal/manifest"
	"github.com/blitz-web/blitz/internal/paths"
	"github.com/blitz-web/blitz/internal/preset"
)

// Target selects the platform a bundle is built for.
type Target string

const (
	TargetWeb  Target = "web"
	TargetNode Target = "node"
)

// Mode selects the build environment.
type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

// DefaultPort is the application port used when nothing else is configured.
const DefaultPort = 3000

// DevServerPort returns the port the client asset dev server listens on. The
// application server's own listener occupies the declared port, so the asset
// server always takes the adjacent one.
func DevServerPort(appPort int) int {
	return appPort + 1
}

// Options carries the caller-supplied inputs to a factory invocation.
type Options struct {
	// Paths is the resolved project path table. Required.
	Paths *paths.Project

	// Env is the frozen environment snapshot. Required; its NODE_ENV value
	// selects the transpiler preset.
	Env *envloader.Snapshot

	// Port is the declared application port. Zero means DefaultPort.
	Port int

	// Host is the bind host for dev serving.
	Host string

	// Headers are extra response headers for the dev server.
	Headers map[string]string

	// Bus receives build lifecycle events from the reporter plugin. Optional.
	Bus eventbus.Bus

	// Modify, when set, receives the assembled configuration and its return
	// value is used verbatim. The factory does not validate the result.
	Modify func(*Config) *Config
}

// DevServer describes the client asset dev server for web development builds.
type DevServer struct {
	Host     string
	Port     int
	Headers  map[string]string
	Fallback string
}

// Config is a fully populated build configuration for one (target, mode)
// pair. Build is handed to the bundler as-is.
type Config struct {
	Target Target
	Mode   Mode

	// Entries is the ordered entry-module list. In web development builds the
	// dev-server bridge and hot-reload client precede the user entry.
	Entries []string

	Build api.BuildOptions

	// DevServer is populated only for web development builds.
	DevServer *DevServer
}

// Create deterministically assembles the configuration for the given target
// and mode. It fails before returning any configuration when the resolved
// build environment is not one of the recognized values, when the target is
// unknown, or when the dependency manifest cannot be parsed.
func Create(target Target, mode Mode, opts Options) (*Config, error) {
	if opts.Paths == nil {
		return nil, errors.New("factory: project paths are required")
	}
	if opts.Env == nil {
		return nil, errors.New("factory: environment snapshot is required")
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	pre, err := preset.New(opts.Env.NodeEnv())
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Target: target,
		Mode:   mode,
		Build: api.BuildOptions{
			AbsWorkingDir: opts.Paths.Root,
			Bundle:        true,
			Write:         true,
			Metafile:      true,
			LogLevel:      api.LogLevelSilent,
			Sourcemap:     sourcemapFor(mode),
			Define:        opts.Env.Stringified(),
			Loader:        assetLoaders(),
		},
	}
	pre.ApplyTo(&cfg.Build)

	switch target {
	case TargetNode:
		if err := configureNode(cfg, opts); err != nil {
			return nil, err
		}
	case TargetWeb:
		configureWeb(cfg, opts, mode)
	default:
		return nil, fmt.Errorf("factory: unknown build target %q", target)
	}

	applyOutputPolicy(cfg, opts)

	asm := &assembly{cfg: cfg, opts: opts}
	for _, d := range pluginTable[axis{target, mode}] {
		cfg.Build.Plugins = append(cfg.Build.Plugins, d.build(asm))
	}

	if opts.Modify != nil {
		return opts.Modify(cfg), nil
	}
	return cfg, nil
}

// configureNode sets up the server bundle: node platform, CommonJS output,
// and every manifest dependency externalized except allow-listed assets.
func configureNode(cfg *Config, opts Options) error {
	pkg, err := manifest.ReadPackageJSON(opts.Paths.PackageJSON())
	if err != nil {
		return err
	}

	cfg.Entries = []string{opts.Paths.ServerEntry()}
	cfg.Build.EntryPoints = cfg.Entries
	cfg.Build.Platform = api.PlatformNode
	cfg.Build.Format = api.FormatCommonJS
	cfg.Build.External = pkg.Externals()
	return nil
}

// configureWeb sets up the client bundle. Development builds synthesize the
// entry so the dev-server bridge and hot-reload client load ahead of the
// user's entry point.
func configureWeb(cfg *Config, opts Options, mode Mode) {
	cfg.Build.Platform = api.PlatformBrowser
	cfg.Build.Format = api.FormatESModule

	userEntry := opts.Paths.ClientEntry()
	if mode == ModeDev {
		cfg.Entries = append(client.Specifiers(), userEntry)
		cfg.Build.Stdin = &api.StdinOptions{
			Contents:   syntheticEntry(cfg.Entries, opts.Paths.Root),
			ResolveDir: opts.Paths.Root,
			Sourcefile: "client.js",
			Loader:     api.LoaderJS,
		}
		cfg.DevServer = &DevServer{
			Host:     opts.Host,
			Port:     DevServerPort(opts.Port),
			Headers:  devServerHeaders(opts.Headers),
			Fallback: filepath.Join(opts.Paths.PublicAssets(), "index.html"),
		}
		return
	}

	cfg.Entries = []string{userEntry}
	cfg.Build.EntryPoints = cfg.Entries
	cfg.Build.Splitting = true
}

// applyOutputPolicy fixes the output directory, public URL and filename
// hashing per (target, mode). Development names carry no hash so rebuilds
// stay fast and cache busting stays trivial; production names carry a content
// hash for long-term caching.
func applyOutputPolicy(cfg *Config, opts Options) {
	switch {
	case cfg.Target == TargetNode && cfg.Mode == ModeDev:
		cfg.Build.Outdir = opts.Paths.Build()
		cfg.Build.EntryNames = "[name]"
		cfg.Build.ChunkNames = "chunks/[name]"
		cfg.Build.AssetNames = "media/[name]"
		cfg.Build.PublicPath = "/"
	case cfg.Target == TargetNode && cfg.Mode == ModeProd:
		cfg.Build.Outdir = opts.Paths.Build()
		cfg.Build.EntryNames = "[name].[hash]"
		cfg.Build.ChunkNames = "chunks/[name].[hash]"
		cfg.Build.AssetNames = "media/[name].[hash]"
		cfg.Build.PublicPath = "/"
	case cfg.Target == TargetWeb && cfg.Mode == ModeDev:
		cfg.Build.Outdir = opts.Paths.PublicBuild()
		cfg.Build.EntryNames = "static/js/[name]"
		cfg.Build.ChunkNames = "static/js/[name]"
		cfg.Build.AssetNames = "static/media/[name]"
		cfg.Build.PublicPath = fmt.Sprintf("http://%s:%d/", opts.Host, DevServerPort(opts.Port))
	case cfg.Target == TargetWeb && cfg.Mode == ModeProd:
		cfg.Build.Outdir = opts.Paths.PublicBuild()
		cfg.Build.EntryNames = "static/js/[name].[hash]"
		cfg.Build.ChunkNames = "static/js/[name].[hash]"
		cfg.Build.AssetNames = "static/media/[name].[hash]"
		cfg.Build.PublicPath = "/"
	}
}

func sourcemapFor(mode Mode) api.SourceMap {
	if mode == ModeProd {
		return api.SourceMapLinked
	}
	return api.SourceMapInline
}

// assetLoaders maps static asset extensions to file emission, so imports
// resolve to generated URLs.
func assetLoaders() map[string]api.Loader {
	loaders := make(map[string]api.Loader)
	for _, ext := range manifest.AssetExtensions {
		switch ext {
		case ".css", ".scss", ".sass":
			// Styles go through the style plugin chain instead.
			continue
		}
		loaders[ext] = api.LoaderFile
	}
	return loaders
}

func devServerHeaders(extra map[string]string) map[string]string {
	headers := map[string]string{
		"Access-Control-Allow-Origin": "*",
	}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}

// syntheticEntry renders the dev entry module: one import per entry, in
// order. Filesystem entries are imported relative to the project root.
func syntheticEntry(entries []string, root string) string {
	var b strings.Builder
	for _, e := range entries {
		spec := e
		if filepath.IsAbs(e) {
			if rel, err := filepath.Rel(root, e); err == nil {
				spec = "./" + filepath.ToSlash(rel)
			}
		}
		fmt.Fprintf(&b, "import %q;\n", spec)
	}
	return b.String()
}
