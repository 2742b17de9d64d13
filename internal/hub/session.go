package hub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/h5p-mirror/h5pmirror/internal/manifest"
	"github.com/h5p-mirror/h5pmirror/internal/mirror"
	"github.com/h5p-mirror/h5pmirror/internal/storage"
	"github.com/rs/zerolog"
)

// SessionConfig holds everything a Session needs besides its collaborators.
type SessionConfig struct {
	CacheFile       string
	TempDir         string
	CoreAPIVersion  string
	PlatformName    string
	PlatformVersion string
	SiteUUID        string
	User            User
}

// Session evaluates the hub catalog against local storage and installs
// content types into it. It implements mirror.Session.
type Session struct {
	client  *Client
	store   *storage.Store
	cfg     SessionConfig
	coreAPI *semver.Version
	logger  zerolog.Logger

	// settled holds machine names installed during this session. They stay
	// installed even when the hub lists a newer patch than its package ships.
	settled map[string]bool
}

var _ mirror.Session = (*Session)(nil)

// NewSession wires a hub client to a library store.
func NewSession(client *Client, store *storage.Store, cfg SessionConfig, logger zerolog.Logger) (*Session, error) {
	coreAPI, err := ParseCoreAPIVersion(cfg.CoreAPIVersion)
	if err != nil {
		return nil, err
	}
	return &Session{
		client:  client,
		store:   store,
		cfg:     cfg,
		coreAPI: coreAPI,
		logger:  logger,
		settled: make(map[string]bool),
	}, nil
}

// RefreshCatalog fetches the content-type list and replaces the cache.
func (s *Session) RefreshCatalog(ctx context.Context) error {
	cache, err := LoadCache(s.cfg.CacheFile)
	if err != nil {
		// A corrupt cache is replaced, not fatal.
		s.logger.Warn().Err(err).Msg("discarding unreadable hub cache")
		cache = nil
	}

	siteUUID := s.cfg.SiteUUID
	if siteUUID == "" && cache != nil {
		siteUUID = cache.SiteUUID
	}
	if siteUUID == "" {
		siteUUID = uuid.NewString()
	}

	types, err := s.client.ContentTypes(ctx, Registration{
		UUID:            siteUUID,
		PlatformName:    s.cfg.PlatformName,
		PlatformVersion: s.cfg.PlatformVersion,
		CoreAPIVersion:  s.cfg.CoreAPIVersion,
	})
	if err != nil {
		return fmt.Errorf("refreshing hub catalog: %w", err)
	}

	if err := SaveCache(s.cfg.CacheFile, &Cache{
		UpdatedAt:    time.Now().UTC(),
		SiteUUID:     siteUUID,
		ContentTypes: types,
	}); err != nil {
		return err
	}

	s.logger.Debug().Int("content_types", len(types)).Str("cache", s.cfg.CacheFile).Msg("hub catalog refreshed")
	return nil
}

// ContentTypes returns the cached hub list, fetching it if there is no cache.
func (s *Session) ContentTypes(ctx context.Context) ([]ContentType, error) {
	cache, err := LoadCache(s.cfg.CacheFile)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		if err := s.RefreshCatalog(ctx); err != nil {
			return nil, err
		}
		if cache, err = LoadCache(s.cfg.CacheFile); err != nil {
			return nil, err
		}
	}
	return cache.ContentTypes, nil
}

// Catalog returns one entry per hub content type, in hub order.
func (s *Session) Catalog(ctx context.Context) ([]mirror.CatalogEntry, error) {
	types, err := s.ContentTypes(ctx)
	if err != nil {
		return nil, err
	}

	installed, err := s.store.List()
	if err != nil {
		return nil, err
	}

	entries := make([]mirror.CatalogEntry, 0, len(types))
	for _, ct := range types {
		entries = append(entries, mirror.CatalogEntry{
			MachineName: ct.ID,
			Installed:   s.settled[ct.ID] || upToDate(installed, ct),
			CanInstall:  coreCompatible(ct.CoreAPIVersionNeeded, s.coreAPI) && s.cfg.User.canInstall(ct),
		})
	}
	return entries, nil
}

// Install downloads the content type's package and installs every library in
// it that storage does not already hold at the same or a newer patch level.
// Libraries are reported in archive order. After a successful install the
// content type counts as installed for the rest of the session.
func (s *Session) Install(ctx context.Context, machineName string) ([]mirror.InstalledLibrary, error) {
	if err := os.MkdirAll(s.cfg.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	archive, err := s.client.Download(ctx, machineName, s.cfg.TempDir)
	if err != nil {
		return nil, err
	}
	defer os.Remove(archive)

	extractDir, err := os.MkdirTemp(s.cfg.TempDir, "extract-")
	if err != nil {
		return nil, fmt.Errorf("creating extract directory: %w", err)
	}
	defer os.RemoveAll(extractDir)

	dirs, err := ExtractPackage(archive, extractDir)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", machineName, err)
	}

	var result []mirror.InstalledLibrary
	for _, dir := range dirs {
		if dir == contentDir {
			continue
		}
		libDir := filepath.Join(extractDir, dir)
		manifestPath := filepath.Join(libDir, manifest.FileName)
		if _, err := os.Stat(manifestPath); err != nil {
			continue
		}

		validation, err := manifest.ValidateFile(manifestPath)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, fmt.Errorf("invalid library manifest in %s/%s: %s", machineName, dir, validation.Error())
		}

		lib, err := manifest.ParseFile(manifestPath)
		if err != nil {
			return nil, err
		}

		existing, err := s.store.Installed(lib.MachineName)
		if err != nil {
			return nil, err
		}
		typ, ok := Classify(existing, lib.LibraryName)
		if !ok {
			s.logger.Debug().Str("library", lib.UberName()).Msg("library already installed, skipping")
			continue
		}

		if err := s.store.Install(libDir, lib.LibraryName); err != nil {
			return nil, err
		}
		s.logger.Debug().Str("library", lib.UberName()).Str("type", string(typ)).Msg("library installed")

		result = append(result, mirror.InstalledLibrary{NewVersion: lib.LibraryName, Type: typ})
	}

	if len(result) == 0 {
		s.logger.Debug().Str("content_type", machineName).Msg("package added no libraries")
	}
	s.settled[machineName] = true
	return result, nil
}

// LoadManifest reads an installed library's manifest from storage.
func (s *Session) LoadManifest(_ context.Context, name manifest.LibraryName) (*manifest.Library, error) {
	return s.store.LoadManifest(name)
}
