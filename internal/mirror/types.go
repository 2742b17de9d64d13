package mirror

import (
	"context"

	"github.com/h5p-mirror/h5pmirror/internal/manifest"
)

// CatalogEntry is one hub content type as seen from local storage.
type CatalogEntry struct {
	MachineName string
	Installed   bool
	CanInstall  bool
}

// Installable reports whether the loop may select this entry.
func (e CatalogEntry) Installable() bool {
	return !e.Installed && e.CanInstall
}

// InstallType classifies an installed library relative to what storage held
// before the install.
type InstallType string

// Install types.
const (
	InstallNew     InstallType = "new"
	InstallUpgrade InstallType = "upgrade"
	InstallPatch   InstallType = "patch"
)

// InstalledLibrary describes one library written to storage by an install.
// A single install may yield several when dependencies come along.
type InstalledLibrary struct {
	NewVersion manifest.LibraryName
	Type       InstallType
}

// Outcome is the tally of one run.
type Outcome struct {
	Errors    int
	Published int
}

// Session is the hub/editor side of the mirror.
type Session interface {
	// RefreshCatalog fetches the content-type list from the hub, bypassing
	// any cached copy.
	RefreshCatalog(ctx context.Context) error
	// Catalog returns the current catalog in hub order.
	Catalog(ctx context.Context) ([]CatalogEntry, error)
	// Install downloads and installs a content type and whatever libraries
	// ship with it.
	Install(ctx context.Context, machineName string) ([]InstalledLibrary, error)
	// LoadManifest reads the manifest of an installed library.
	LoadManifest(ctx context.Context, name manifest.LibraryName) (*manifest.Library, error)
}

// Storage is the local library storage.
type Storage interface {
	// LibraryDir returns the directory holding an installed library.
	LibraryDir(name manifest.LibraryName) string
	// RemoveAll deletes the storage entirely.
	RemoveAll() error
}

// Publisher uploads a prepared package directory to the registry.
type Publisher interface {
	Publish(ctx context.Context, dir string, dryRun bool) error
}

// CredentialWriter materializes registry credentials for the publish tool.
type CredentialWriter interface {
	WriteCredentials(token string) error
}
