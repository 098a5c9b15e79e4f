// Package stylefn exposes helper functions callable from stylesheet source.
// Stylesheets may use base64("...") to embed an encoded string and
// inline-svg("file.svg") to embed an SVG file as a data URL; Rewrite expands
// both before the stylesheet enters the bundle.
package stylefn

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Base64 returns the standard base64 encoding of s.
func Base64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// InlineSVG reads the SVG file at path and returns it as a CSS-ready
// base64 data URL.
func InlineSVG(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("inlining svg %s: %w", path, err)
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(data), nil
}

var (
	base64Call    = regexp.MustCompile(`base64\(\s*"([^"]*)"\s*\)`)
	inlineSVGCall = regexp.MustCompile(`inline-svg\(\s*"([^"]*)"\s*\)`)
)

// Rewrite expands base64() and inline-svg() calls in stylesheet source.
// Relative inline-svg paths are resolved against dir, the directory of the
// stylesheet being compiled. The first failing inline-svg call aborts the
// rewrite.
func Rewrite(source string, dir string) (string, error) {
	var inlineErr error

	out := inlineSVGCall.ReplaceAllStringFunc(source, func(call string) string {
		if inlineErr != nil {
			return call
		}
		target := inlineSVGCall.FindStringSubmatch(call)[1]
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		dataURL, err := InlineSVG(target)
		if err != nil {
			inlineErr = err
			return call
		}
		return fmt.Sprintf("url(%q)", dataURL)
	})
	if inlineErr != nil {
		return "", inlineErr
	}

	out = base64Call.ReplaceAllStringFunc(out, func(call string) string {
		value := base64Call.FindStringSubmatch(call)[1]
		return fmt.Sprintf("%q", Base64(value))
	})
	return out, nil
}
