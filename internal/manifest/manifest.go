// Package manifest reads the project dependency manifest (package.json) and
// derives the externalization list for node-target builds. It also writes the
// assets.json build manifest from the bundler metafile.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// AssetExtensions is the allow-list of extensions that must always be bundled,
// never externalized. These files are referenced through generated file paths
// rather than module semantics, so leaving them external would break the
// emitted bundles even on the node target.
var AssetExtensions = []string{
	".css", ".scss", ".sass",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico", ".svg", ".bmp",
	".woff", ".woff2", ".ttf", ".eot", ".otf",
	".mp3", ".wav", ".mp4", ".webm", ".ogg",
}

// PackageJSON is the subset of package.json this tool reads.
type PackageJSON struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ReadPackageJSON parses the manifest at path. A missing file yields an empty
// manifest rather than an error: projects without dependencies are valid.
func ReadPackageJSON(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &PackageJSON{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &pkg, nil
}

// Externals returns the sorted list of dependency names to leave external in
// node-target builds. Entries matching the asset-extension allow-list are
// filtered out unconditionally.
func (p *PackageJSON) Externals() []string {
	seen := make(map[string]struct{}, len(p.Dependencies)+len(p.DevDependencies))
	for name := range p.Dependencies {
		seen[name] = struct{}{}
	}
	for name := range p.DevDependencies {
		seen[name] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		if IsAsset(name) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AssetFilter returns a regular expression source matching any import path
// that ends with an allow-listed asset extension.
func AssetFilter() string {
	exts := make([]string, len(AssetExtensions))
	for i, ext := range AssetExtensions {
		exts[i] = regexp.QuoteMeta(strings.TrimPrefix(ext, "."))
	}
	return `\.(` + strings.Join(exts, "|") + `)$`
}

// IsAsset reports whether the import path ends with an allow-listed asset
// extension.
func IsAsset(importPath string) bool {
	ext := strings.ToLower(filepath.Ext(importPath))
	for _, allowed := range AssetExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
