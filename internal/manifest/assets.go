package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// metafile mirrors the bundler's metafile JSON structure, limited to the
// fields the asset manifest needs.
type metafile struct {
	Outputs map[string]metafileOutput `json:"outputs"`
}

type metafileOutput struct {
	Bytes      int    `json:"bytes"`
	EntryPoint string `json:"entryPoint,omitempty"`
	CSSBundle  string `json:"cssBundle,omitempty"`
}

// AssetManifest maps a stable entry name to its emitted (possibly hashed)
// output paths.
type AssetManifest map[string]AssetEntry

// AssetEntry holds the emitted files for one entry point.
type AssetEntry struct {
	JS  string `json:"js,omitempty"`
	CSS string `json:"css,omitempty"`
}

// BuildAssetManifest derives the asset manifest from a metafile JSON string.
// Output paths are reported relative to root.
func BuildAssetManifest(metaJSON string, root string) (AssetManifest, error) {
	var meta metafile
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return nil, fmt.Errorf("parsing metafile: %w", err)
	}

	out := make(AssetManifest)
	outputs := make([]string, 0, len(meta.Outputs))
	for path := range meta.Outputs {
		outputs = append(outputs, path)
	}
	sort.Strings(outputs)

	for _, outPath := range outputs {
		info := meta.Outputs[outPath]
		if info.EntryPoint == "" {
			continue
		}
		name := entryName(info.EntryPoint)
		entry := out[name]
		entry.JS = relativeTo(root, outPath)
		if info.CSSBundle != "" {
			entry.CSS = relativeTo(root, info.CSSBundle)
		}
		out[name] = entry
	}
	return out, nil
}

// WriteAssetManifest writes the manifest as indented JSON to path.
func WriteAssetManifest(m AssetManifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing asset manifest %s: %w", path, err)
	}
	return nil
}

func entryName(entryPoint string) string {
	base := filepath.Base(entryPoint)
	return base[:len(base)-len(filepath.Ext(base))]
}

func relativeTo(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
