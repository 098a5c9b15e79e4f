package factory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/evanw/esbuild/pkg/api"
	libsass "github.com/wellington/go-libsass"

	"github.com/blitz-web/blitz/internal/stylefn"
)

// styleChain selects how compiled stylesheet content enters the bundle.
type styleChain int

const (
	// chainInline converts the stylesheet into a plain JS module exporting
	// the CSS string. Used for the node target: there is no DOM to inject
	// into, the server only needs the content.
	chainInline styleChain = iota

	// chainInject wraps the stylesheet in JS that mounts a <style> tag at
	// load time, so edits apply without a full reload. Used for web dev.
	chainInject

	// chainExtract hands the content to the bundler's native CSS pipeline,
	// which emits a separate cacheable file. Used for web prod.
	chainExtract
)

func chainFor(target Target, mode Mode) styleChain {
	if target == TargetNode {
		return chainInline
	}
	if mode == ModeDev {
		return chainInject
	}
	return chainExtract
}

// stylesPlugin handles .css, .scss and .sass sources: SCSS is compiled with
// libsass, style helper functions are expanded, and the result enters the
// bundle through the chain selected for this (target, mode).
func stylesPlugin(asm *assembly) api.Plugin {
	chain := chainFor(asm.cfg.Target, asm.cfg.Mode)

	return api.Plugin{
		Name: "blitz-styles",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.(css|scss|sass)$`},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					css, err := loadStylesheet(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					contents, loader := applyChain(chain, css)
					return api.OnLoadResult{
						Contents:   &contents,
						Loader:     loader,
						ResolveDir: filepath.Dir(args.Path),
					}, nil
				})
		},
	}
}

// loadStylesheet reads and, for SCSS/Sass sources, compiles the stylesheet,
// then expands the style helper functions.
func loadStylesheet(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading stylesheet %s: %w", path, err)
	}

	css := string(raw)
	switch filepath.Ext(path) {
	case ".scss", ".sass":
		css, err = compileSCSS(path, raw)
		if err != nil {
			return "", err
		}
	}

	return stylefn.Rewrite(css, filepath.Dir(path))
}

func compileSCSS(path string, src []byte) (string, error) {
	var out bytes.Buffer
	comp, err := libsass.New(&out, bytes.NewReader(src),
		libsass.Path(path),
		libsass.IncludePaths([]string{filepath.Dir(path)}),
	)
	if err != nil {
		return "", fmt.Errorf("preparing scss compiler for %s: %w", path, err)
	}
	if err := comp.Run(); err != nil {
		return "", fmt.Errorf("compiling %s: %w", path, err)
	}
	return out.String(), nil
}

func applyChain(chain styleChain, css string) (string, api.Loader) {
	switch chain {
	case chainInline:
		return "module.exports = " + strconv.Quote(css) + ";\n", api.LoaderJS
	case chainInject:
		return injectorModule(css), api.LoaderJS
	default:
		return css, api.LoaderCSS
	}
}

// injectorModule wraps css in a module that mounts it into the document.
func injectorModule(css string) string {
	return `var css = ` + strconv.Quote(css) + `;
var style = document.createElement("style");
style.setAttribute("data-blitz", "");
style.appendChild(document.createTextNode(css));
document.head.appendChild(style);
export default css;
`
}
