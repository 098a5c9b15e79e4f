// Package envloader merges process environment variables with .env files and
// injected defaults into an immutable snapshot. The snapshot carries both the
// raw values and a JSON-stringified variant keyed for compile-time injection
// into bundles.
package envloader

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Prefix marks custom variables that are allowed to cross into client bundles.
const Prefix = "BLITZ_"

// Options controls how a snapshot is assembled.
type Options struct {
	// DotenvPath is the optional .env file. A missing file is not an error.
	DotenvPath string

	// NodeEnv, Host and Port are injected defaults. They lose against values
	// already present in the process environment or the .env file.
	NodeEnv string
	Host    string
	Port    int
}

// Snapshot is a frozen view of the resolved environment. It is built once per
// invocation and never mutated afterwards; accessors return copies.
type Snapshot struct {
	raw map[string]string
}

// Load assembles a snapshot. Precedence, highest first: process environment,
// .env file, injected defaults. Only variables carrying the BLITZ_ prefix plus
// the well-known NODE_ENV, PORT and HOST keys are included.
func Load(opts Options) (*Snapshot, error) {
	merged := map[string]string{
		"NODE_ENV": opts.NodeEnv,
		"HOST":     opts.Host,
		"PORT":     strconv.Itoa(opts.Port),
	}

	if opts.DotenvPath != "" {
		if _, err := os.Stat(opts.DotenvPath); err == nil {
			fileVars, err := godotenv.Read(opts.DotenvPath)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", opts.DotenvPath, err)
			}
			for k, v := range fileVars {
				if included(k) {
					merged[k] = v
				}
			}
		}
	}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !included(k) {
			continue
		}
		merged[k] = v
	}

	return &Snapshot{raw: merged}, nil
}

func included(key string) bool {
	switch key {
	case "NODE_ENV", "PORT", "HOST":
		return true
	}
	return strings.HasPrefix(key, Prefix)
}

// Raw returns a copy of the resolved variables.
func (s *Snapshot) Raw() map[string]string {
	out := make(map[string]string, len(s.raw))
	for k, v := range s.raw {
		out[k] = v
	}
	return out
}

// NodeEnv returns the resolved NODE_ENV value, possibly empty.
func (s *Snapshot) NodeEnv() string {
	return s.raw["NODE_ENV"]
}

// Port returns the resolved PORT value, or 0 when unset or malformed.
func (s *Snapshot) Port() int {
	n, err := strconv.Atoi(s.raw["PORT"])
	if err != nil {
		return 0
	}
	return n
}

// Host returns the resolved HOST value.
func (s *Snapshot) Host() string {
	return s.raw["HOST"]
}

// Stringified returns the snapshot as a define map for bundle injection:
// every variable appears as a `process.env.NAME` key with a JSON-quoted value.
func (s *Snapshot) Stringified() map[string]string {
	out := make(map[string]string, len(s.raw))
	for k, v := range s.raw {
		quoted, _ := json.Marshal(v)
		out["process.env."+k] = string(quoted)
	}
	return out
}
