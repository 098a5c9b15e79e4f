// Package paths resolves the fixed filesystem locations of a blitz project.
// All locations are derived from a single project root; nothing here touches
// the filesystem except the existence helpers.
package paths

import (
	"os"
	"path/filepath"
)

// Well-known file and directory names inside a project.
const (
	SrcDirName         = "src"
	BuildDirName       = "build"
	PublicBuildDirName = "public"
	PublicAssetsDir    = "public"
	ConfigFileName     = "blitz.yaml"
	DotenvFileName     = ".env"
	PackageJSONName    = "package.json"
	ServerEntryName    = "server"
	ClientEntryName    = "client"
)

// Project is the resolved path table for one project root.
type Project struct {
	Root string
}

// New returns the path table for the given project root. A relative root is
// made absolute against the current working directory.
func New(root string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Project{Root: abs}, nil
}

// Src returns the application source directory.
func (p *Project) Src() string {
	return filepath.Join(p.Root, SrcDirName)
}

// Build returns the build output directory.
func (p *Project) Build() string {
	return filepath.Join(p.Root, BuildDirName)
}

// PublicBuild returns the directory that client assets are emitted into.
func (p *Project) PublicBuild() string {
	return filepath.Join(p.Root, BuildDirName, PublicBuildDirName)
}

// PublicAssets returns the directory of static files copied verbatim.
func (p *Project) PublicAssets() string {
	return filepath.Join(p.Root, PublicAssetsDir)
}

// ConfigFile returns the path of the optional blitz.yaml project config.
func (p *Project) ConfigFile() string {
	return filepath.Join(p.Root, ConfigFileName)
}

// DotenvFile returns the path of the optional .env file.
func (p *Project) DotenvFile() string {
	return filepath.Join(p.Root, DotenvFileName)
}

// PackageJSON returns the path of the dependency manifest.
func (p *Project) PackageJSON() string {
	return filepath.Join(p.Root, PackageJSONName)
}

// ServerEntry returns the server entry point. The first existing extension
// among .tsx, .ts, .jsx and .js wins; the .js form is returned when none
// exist yet so error messages name a concrete file.
func (p *Project) ServerEntry() string {
	return p.resolveEntry(ServerEntryName)
}

// ClientEntry returns the client entry point, resolved like ServerEntry.
func (p *Project) ClientEntry() string {
	return p.resolveEntry(ClientEntryName)
}

// BuildLogDir returns the directory that build logs are written to.
func (p *Project) BuildLogDir() string {
	return filepath.Join(p.Root, BuildDirName, "logs")
}

// AssetManifest returns the path of the emitted assets.json manifest.
func (p *Project) AssetManifest() string {
	return filepath.Join(p.Root, BuildDirName, "assets.json")
}

var entryExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

func (p *Project) resolveEntry(name string) string {
	base := filepath.Join(p.Src(), name)
	for _, ext := range entryExtensions {
		if Exists(base + ext) {
			return base + ext
		}
	}
	return base + ".js"
}

// Exists reports whether the given path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
