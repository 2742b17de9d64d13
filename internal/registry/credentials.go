package registry

import (
	"fmt"

	"github.com/h5p-mirror/h5pmirror/internal/platform"
)

// NPMRC writes the auth token line npm reads from ~/.npmrc.
type NPMRC struct {
	Path string
	Host string
}

// AuthLine returns the .npmrc line that authenticates against host.
func AuthLine(host, token string) string {
	return fmt.Sprintf("//%s/:_authToken=%s", host, token)
}

// WriteCredentials replaces the .npmrc file with the auth token line.
func (n NPMRC) WriteCredentials(token string) error {
	if err := platform.WriteSecureFile(n.Path, []byte(AuthLine(n.Host, token)+"\n")); err != nil {
		return fmt.Errorf("writing registry credentials: %w", err)
	}
	return nil
}
