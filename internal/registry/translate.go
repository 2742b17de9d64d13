package registry

import (
	"fmt"
	"strings"

	"github.com/h5p-mirror/h5pmirror/internal/manifest"
)

// licenseFallback is used when a library declares no license at all.
const licenseFallback = "see license in GitHub Repository"

// PackageName maps a machine name to the operator-scoped npm package name.
// Only the first dot is replaced, so "H5P.Foo.Bar" becomes
// "@<operator>/h5p-foo.bar".
func PackageName(operator, machineName string) string {
	return fmt.Sprintf("@%s/%s", operator, strings.Replace(strings.ToLower(machineName), ".", "-", 1))
}

// DependencyRange returns the npm range a dependency is pinned to: any patch
// of its major.minor line.
func DependencyRange(dep manifest.Dependency) string {
	return fmt.Sprintf("%d.%d.x", dep.MajorVersion, dep.MinorVersion)
}

// Dependencies builds the package.json dependency map from the editor and
// preloaded dependencies, in that order. A later entry for the same package
// overwrites an earlier one.
func Dependencies(operator string, lib *manifest.Library) map[string]string {
	deps := make(map[string]string, len(lib.EditorDependencies)+len(lib.PreloadedDependencies))
	for _, list := range [][]manifest.Dependency{lib.EditorDependencies, lib.PreloadedDependencies} {
		for _, dep := range list {
			deps[PackageName(operator, dep.MachineName)] = DependencyRange(dep)
		}
	}
	return deps
}

// SPDXLicense converts an H5P license code to an SPDX identifier. Unknown
// codes are passed through unchanged.
func SPDXLicense(code string) string {
	switch code {
	case "MPL":
		return "MPL-1.0"
	case "MPL2":
		return "MPL-2.0"
	case "pd":
		return "Public Domain"
	case "":
		return licenseFallback
	default:
		return code
	}
}
