package cli

import (
	"fmt"

	"github.com/h5p-mirror/h5pmirror/internal/config"
	"github.com/h5p-mirror/h5pmirror/internal/hub"
	"github.com/h5p-mirror/h5pmirror/internal/storage"
)

// openSession builds the hub session over the library storage described by s.
func openSession(s *config.Settings, store *storage.Store) (*hub.Session, error) {
	client := hub.NewClient(s.Hub.ContentTypesURL,
		hub.WithTimeout(s.Hub.Timeout),
		hub.WithLogger(logger),
	)
	session, err := hub.NewSession(client, store, hub.SessionConfig{
		CacheFile:       s.CacheFile(),
		TempDir:         s.TempDir(),
		CoreAPIVersion:  s.Hub.CoreAPIVersion,
		PlatformName:    s.Hub.PlatformName,
		PlatformVersion: buildVersion,
		SiteUUID:        s.Hub.SiteUUID,
		User:            hub.MirrorUser(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating hub session: %w", err)
	}
	return session, nil
}
