// Package doctor checks that the environment can run a mirror: credentials,
// the npm executable, the working directory, the registry credentials file
// and the hub cache. With fix enabled it repairs what it safely can.
package doctor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/h5p-mirror/h5pmirror/internal/config"
	"github.com/h5p-mirror/h5pmirror/internal/hub"
	"github.com/h5p-mirror/h5pmirror/internal/platform"
)

// ErrUnhealthy is returned by Check when at least one check failed.
var ErrUnhealthy = errors.New("environment is not ready for a mirror run")

// Checker runs the checks against one set of settings.
type Checker struct {
	W        io.Writer
	Settings *config.Settings
	Fix      bool

	// LookPath resolves the npm executable; defaults to exec.LookPath.
	LookPath func(file string) (string, error)

	failures int
}

// Check runs every check and reports ErrUnhealthy if any failed. Warnings
// and missing optional files do not fail the check.
func Check(w io.Writer, s *config.Settings, fix bool) error {
	c := &Checker{W: w, Settings: s, Fix: fix}
	return c.Run()
}

// Run prints one line per check.
func (c *Checker) Run() error {
	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}
	c.failures = 0

	fmt.Fprintln(c.W, "Mirror check:")
	c.checkCredentials()
	c.checkNPM()
	c.checkCoreAPI()
	c.checkLibrariesDir()
	c.checkNPMRC()
	c.checkCache()

	if c.failures > 0 {
		return fmt.Errorf("%w: %d problem(s)", ErrUnhealthy, c.failures)
	}
	return nil
}

func (c *Checker) ok(format string, args ...any) {
	fmt.Fprintf(c.W, "  [ OK ] "+format+"\n", args...)
}

func (c *Checker) warn(format string, args ...any) {
	fmt.Fprintf(c.W, "  [WARN] "+format+"\n", args...)
}

func (c *Checker) miss(format string, args ...any) {
	fmt.Fprintf(c.W, "  [MISS] "+format+"\n", args...)
}

func (c *Checker) fail(format string, args ...any) {
	c.failures++
	fmt.Fprintf(c.W, "  [FAIL] "+format+"\n", args...)
}

func (c *Checker) fixed(format string, args ...any) {
	fmt.Fprintf(c.W, "  [FIX ] "+format+"\n", args...)
}

func (c *Checker) checkCredentials() {
	if c.Settings.AuthToken == "" {
		c.fail("NPM_AUTH_TOKEN is not set")
	} else {
		c.ok("NPM_AUTH_TOKEN is set")
	}
	if c.Settings.User == "" {
		c.fail("NPM_USER is not set")
	} else {
		c.ok("NPM_USER is %s", c.Settings.User)
	}
}

func (c *Checker) checkNPM() {
	path, err := c.LookPath(c.Settings.Registry.NPMPath)
	if err != nil {
		c.fail("npm executable %q not found: %v", c.Settings.Registry.NPMPath, err)
		return
	}
	c.ok("npm at %s", path)
}

func (c *Checker) checkCoreAPI() {
	if _, err := hub.ParseCoreAPIVersion(c.Settings.Hub.CoreAPIVersion); err != nil {
		c.fail("%v", err)
		return
	}
	c.ok("core API version %s", c.Settings.Hub.CoreAPIVersion)
}

func (c *Checker) checkLibrariesDir() {
	dir := c.Settings.LibrariesDir()
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		c.miss("%s does not exist (created by the first run)", dir)
		if c.Fix {
			if err := os.MkdirAll(dir, platform.DirPermNormal); err != nil {
				c.fail("could not create %s: %v", dir, err)
				return
			}
			c.fixed("created %s", dir)
		}
	case err != nil:
		c.fail("%s: %v", dir, err)
	case !info.IsDir():
		c.fail("%s is not a directory", dir)
	default:
		c.ok("%s exists", dir)
	}
}

func (c *Checker) checkNPMRC() {
	path := c.Settings.NPMRC()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		c.miss("%s does not exist (written by each run)", path)
		return
	}
	if err != nil {
		c.fail("%s: %v", path, err)
		return
	}

	perm := info.Mode().Perm()
	if perm == platform.FilePermSecure {
		c.ok("%s (permissions %o)", path, perm)
		return
	}
	c.warn("%s has permissions %o (expected %o)", path, perm, platform.FilePermSecure)
	if c.Fix {
		if err := platform.Chmod(path, platform.FilePermSecure); err != nil {
			c.fail("could not fix permissions on %s: %v", path, err)
			return
		}
		c.fixed("fixed permissions on %s to %o", path, platform.FilePermSecure)
	}
}

func (c *Checker) checkCache() {
	path := c.Settings.CacheFile()
	cache, err := hub.LoadCache(path)
	switch {
	case err != nil:
		c.warn("%v (replaced by the next refresh)", err)
	case cache == nil:
		c.miss("%s not fetched yet", path)
	case hub.IsStale(cache, hub.DefaultCacheMaxAge):
		c.warn("%s is stale (%d content types, updated %s)", path, len(cache.ContentTypes), cache.UpdatedAt.Format("2006-01-02 15:04"))
	default:
		c.ok("%s (%d content types)", path, len(cache.ContentTypes))
	}
}
