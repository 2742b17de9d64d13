package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// NPMPublisher publishes package directories with `npm publish`.
type NPMPublisher struct {
	// Path is the npm executable; a bare name is looked up on PATH.
	Path   string
	Logger zerolog.Logger
}

// NewNPMPublisher returns a publisher using the given npm executable.
func NewNPMPublisher(path string, logger zerolog.Logger) *NPMPublisher {
	if path == "" {
		path = "npm"
	}
	return &NPMPublisher{Path: path, Logger: logger}
}

// PublishArgs returns the npm arguments for a public publish.
func PublishArgs(dryRun bool) []string {
	args := []string{"publish", "--access=public"}
	if dryRun {
		args = append(args, "--dry-run")
	}
	return args
}

// Publish runs npm publish inside dir. The returned error carries npm's
// stderr so the operator sees why the registry refused the package.
func (p *NPMPublisher) Publish(ctx context.Context, dir string, dryRun bool) error {
	npmPath, err := exec.LookPath(p.Path)
	if err != nil {
		return fmt.Errorf("npm not found: %w", err)
	}

	args := PublishArgs(dryRun)
	p.Logger.Debug().Str("dir", dir).Strs("args", args).Msg("running npm")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, npmPath, args...)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("npm publish in %s: %w\n%s", dir, err, msg)
		}
		return fmt.Errorf("npm publish in %s: %w", dir, err)
	}
	return nil
}
