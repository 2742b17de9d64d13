package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// LibraryName identifies one version of a library.
type LibraryName struct {
	MachineName  string `json:"machineName"`
	MajorVersion int    `json:"majorVersion"`
	MinorVersion int    `json:"minorVersion"`
	PatchVersion int    `json:"patchVersion"`
}

// UberName returns the display identity "machineName-major.minor", which is
// also the library's directory name in storage.
func (n LibraryName) UberName() string {
	return UberName(n.MachineName, n.MajorVersion, n.MinorVersion)
}

// Version returns the full version triple as a semver value.
func (n LibraryName) Version() *semver.Version {
	return semver.New(uint64(n.MajorVersion), uint64(n.MinorVersion), uint64(n.PatchVersion), "", "")
}

// String returns "machineName major.minor.patch".
func (n LibraryName) String() string {
	return fmt.Sprintf("%s %d.%d.%d", n.MachineName, n.MajorVersion, n.MinorVersion, n.PatchVersion)
}

// Dependency references another library by major and minor version.
type Dependency struct {
	MachineName  string `json:"machineName"`
	MajorVersion int    `json:"majorVersion"`
	MinorVersion int    `json:"minorVersion"`
}

// UberName returns the dependency's "machineName-major.minor".
func (d Dependency) UberName() string {
	return UberName(d.MachineName, d.MajorVersion, d.MinorVersion)
}

// CoreAPI is the minimum H5P core API version a library needs.
type CoreAPI struct {
	MajorVersion int `json:"majorVersion"`
	MinorVersion int `json:"minorVersion"`
}

// Path is a file entry in preloadedJs/preloadedCss.
type Path struct {
	Path string `json:"path"`
}

// Flag is a library.json switch written either as 0/1 or as a boolean.
type Flag bool

// UnmarshalJSON accepts 0, 1, true and false.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true":
		*f = true
	case "0", "false", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s, want 0, 1, true or false", data)
	}
	return nil
}

// MarshalJSON writes the flag in its numeric form.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return json.Marshal(1)
	}
	return json.Marshal(0)
}

// Library is the content of a library.json file.
type Library struct {
	LibraryName

	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	License     string   `json:"license,omitempty"`
	Author      string   `json:"author,omitempty"`
	Runnable    Flag     `json:"runnable"`
	EmbedTypes  []string `json:"embedTypes,omitempty"`

	CoreAPI *CoreAPI `json:"coreApi,omitempty"`

	PreloadedJS  []Path `json:"preloadedJs,omitempty"`
	PreloadedCSS []Path `json:"preloadedCss,omitempty"`

	PreloadedDependencies []Dependency `json:"preloadedDependencies,omitempty"`
	EditorDependencies    []Dependency `json:"editorDependencies,omitempty"`
	DynamicDependencies   []Dependency `json:"dynamicDependencies,omitempty"`
}

// FileName is the manifest file name inside every library directory.
const FileName = "library.json"

// UberName formats "machineName-major.minor".
func UberName(machineName string, major, minor int) string {
	return fmt.Sprintf("%s-%d.%d", machineName, major, minor)
}
