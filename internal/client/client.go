// Package client carries the development client modules that web builds load
// ahead of the user's entry point in dev mode. The modules are embedded and
// surfaced to the bundler as virtual modules rather than files on disk.
package client

import (
	"embed"
	"fmt"
)

// Import specifiers under which the clients are resolvable from build entries.
const (
	DevClientSpecifier = "blitz/dev-client"
	HotClientSpecifier = "blitz/hot-client"
)

//go:embed devclient.js hotclient.js
var modules embed.FS

// Source returns the JavaScript source for the given import specifier.
func Source(specifier string) (string, error) {
	var name string
	switch specifier {
	case DevClientSpecifier:
		name = "devclient.js"
	case HotClientSpecifier:
		name = "hotclient.js"
	default:
		return "", fmt.Errorf("unknown client module %q", specifier)
	}
	data, err := modules.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Specifiers returns the dev client entries in injection order: the
// dev-server bridge first, then the hot-reload client.
func Specifiers() []string {
	return []string{DevClientSpecifier, HotClientSpecifier}
}
