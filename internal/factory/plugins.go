package factory

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/blitz-web/blitz/internal/client"
	"github.com/blitz-web/blitz/internal/eventbus"
	"github.com/blitz-web/blitz/internal/manifest"
	"github.com/blitz-web/blitz/internal/paths"
)

// assembly carries the state plugin builders close over.
type assembly struct {
	cfg  *Config
	opts Options
}

// axis keys the plugin table on the (target, mode) pair.
type axis struct {
	target Target
	mode   Mode
}

// descriptor names one plugin slot and how to build it.
type descriptor struct {
	name  string
	build func(*assembly) api.Plugin
}

// pluginTable is the declarative (target, mode) → ordered plugin list
// mapping. Selection happens once per factory call; no runtime branching
// inside the lists.
var pluginTable = map[axis][]descriptor{
	{TargetWeb, ModeDev}: {
		{"dev-client-modules", devClientModulesPlugin},
		{"styles", stylesPlugin},
		{"overlay-silencer", overlaySilencerPlugin},
		{"reporter", reporterPlugin},
	},
	{TargetWeb, ModeProd}: {
		{"styles", stylesPlugin},
		{"reporter", reporterPlugin},
	},
	{TargetNode, ModeDev}: {
		{"bundled-assets", bundledAssetsPlugin},
		{"styles", stylesPlugin},
		{"reporter", reporterPlugin},
	},
	{TargetNode, ModeProd}: {
		{"bundled-assets", bundledAssetsPlugin},
		{"styles", stylesPlugin},
		{"reporter", reporterPlugin},
	},
}

const clientNamespace = "blitz-client"

// bundledAssetsPlugin keeps asset files imported through externalized
// packages inside node bundles. Externalization matches whole package
// prefixes, so a stylesheet like pkg/dist/pkg.css reached via an external
// dependency would otherwise leave the bundle as a bare require that the
// runtime cannot load. Resolving it here, before the external check, routes
// it through the normal loader chains instead.
func bundledAssetsPlugin(asm *assembly) api.Plugin {
	root := asm.opts.Paths.Root

	return api.Plugin{
		Name: "blitz-bundled-assets",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: manifest.AssetFilter()},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					// Relative and absolute asset paths never match an
					// external prefix; leave them to the default resolver.
					if strings.HasPrefix(args.Path, ".") || filepath.IsAbs(args.Path) {
						return api.OnResolveResult{}, nil
					}
					resolved, ok := resolveNodeModule(args.ResolveDir, root, args.Path)
					if !ok {
						return api.OnResolveResult{}, nil
					}
					return api.OnResolveResult{Path: resolved}, nil
				})
		},
	}
}

// resolveNodeModule looks the request up in node_modules directories from
// dir upward, stopping at the project root.
func resolveNodeModule(dir, root, request string) (string, bool) {
	for {
		candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(request))
		if paths.Exists(candidate) {
			return candidate, true
		}
		if dir == root || dir == filepath.Dir(dir) {
			return "", false
		}
		dir = filepath.Dir(dir)
	}
}

// devClientModulesPlugin resolves the blitz/* dev client specifiers to the
// embedded module sources.
func devClientModulesPlugin(_ *assembly) api.Plugin {
	return api.Plugin{
		Name: "blitz-dev-client-modules",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `^blitz/`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      args.Path,
						Namespace: clientNamespace,
					}, nil
				})
			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: clientNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					src, err := client.Source(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					return api.OnLoadResult{
						Contents: &src,
						Loader:   api.LoaderJS,
					}, nil
				})
		},
	}
}

// overlaySilencerPlugin drops warnings from development build results so the
// in-browser overlay only surfaces hard errors.
func overlaySilencerPlugin(_ *assembly) api.Plugin {
	return api.Plugin{
		Name: "blitz-overlay-silencer",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				result.Warnings = nil
				return api.OnEndResult{}, nil
			})
		},
	}
}

// reporterPlugin publishes build lifecycle events to the bus instead of
// letting the bundler print per-build stats.
func reporterPlugin(asm *assembly) api.Plugin {
	bus := asm.opts.Bus
	target := string(asm.cfg.Target)

	return api.Plugin{
		Name: "blitz-reporter",
		Setup: func(build api.PluginBuild) {
			if bus == nil {
				return
			}
			var started time.Time

			build.OnStart(func() (api.OnStartResult, error) {
				started = time.Now()
				bus.Publish(eventbus.Event{Type: eventbus.BuildStarted, Target: target})
				return api.OnStartResult{}, nil
			})

			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				e := eventbus.Event{
					Target:   target,
					Duration: time.Since(started),
					Warnings: len(result.Warnings),
				}
				if len(result.Errors) > 0 {
					e.Type = eventbus.BuildFailed
					for _, msg := range result.Errors {
						e.Errors = append(e.Errors, formatMessage(msg))
					}
				} else {
					e.Type = eventbus.BuildSucceeded
				}
				bus.Publish(e)
				return api.OnEndResult{}, nil
			})
		},
	}
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d %s", msg.Location.File, msg.Location.Line, msg.Text)
}
