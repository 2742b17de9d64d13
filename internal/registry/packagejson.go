package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/h5p-mirror/h5pmirror/internal/manifest"
)

// PackageFile is the descriptor file name npm reads.
const PackageFile = "package.json"

// PackageJSON is the subset of package.json the mirror writes.
type PackageJSON struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description"`
	License      string            `json:"license"`
	Author       string            `json:"author"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewPackageJSON derives the npm descriptor of a library.
func NewPackageJSON(operator string, lib *manifest.Library) *PackageJSON {
	return &PackageJSON{
		Name:         PackageName(operator, lib.MachineName),
		Version:      fmt.Sprintf("%d.%d.%d", lib.MajorVersion, lib.MinorVersion, lib.PatchVersion),
		Description:  fmt.Sprintf("An unofficial mirrored version of the distribution files of the H5P library %s from the H5P Hub", lib.MachineName),
		License:      SPDXLicense(lib.License),
		Author:       fmt.Sprintf("%s (uploaded by %s)", lib.Author, operator),
		Dependencies: Dependencies(operator, lib),
	}
}

// WritePackageJSON writes pkg as dir/package.json.
func WritePackageJSON(dir string, pkg *PackageJSON) error {
	data, err := json.Marshal(pkg)
	if err != nil {
		return fmt.Errorf("marshaling package.json: %w", err)
	}
	path := filepath.Join(dir, PackageFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
