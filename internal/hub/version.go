package hub

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/h5p-mirror/h5pmirror/internal/manifest"
	"github.com/h5p-mirror/h5pmirror/internal/mirror"
)

// Classify decides how candidate relates to the installed versions of the
// same machine name. ok is false when storage already holds candidate's
// major.minor at an equal or newer patch, in which case nothing is installed.
func Classify(installed []manifest.LibraryName, candidate manifest.LibraryName) (typ mirror.InstallType, ok bool) {
	if len(installed) == 0 {
		return mirror.InstallNew, true
	}
	for _, lib := range installed {
		if lib.MajorVersion != candidate.MajorVersion || lib.MinorVersion != candidate.MinorVersion {
			continue
		}
		if candidate.Version().GreaterThan(lib.Version()) {
			return mirror.InstallPatch, true
		}
		return "", false
	}
	return mirror.InstallUpgrade, true
}

// ParseCoreAPIVersion parses a "major.minor" core API version.
func ParseCoreAPIVersion(v string) (*semver.Version, error) {
	parsed, err := semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(v), "v"))
	if err != nil {
		return nil, fmt.Errorf("parsing core API version %q: %w", v, err)
	}
	return parsed, nil
}

// coreCompatible reports whether a content type's required core API is
// satisfied by have.
func coreCompatible(needed APIVersion, have *semver.Version) bool {
	if have == nil {
		return true
	}
	n := semver.New(uint64(needed.Major), uint64(needed.Minor), 0, "", "")
	return !n.GreaterThan(have)
}

// upToDate reports whether installed holds ct's major.minor at ct's patch
// or newer.
func upToDate(installed []manifest.LibraryName, ct ContentType) bool {
	want := semver.New(uint64(ct.Version.Major), uint64(ct.Version.Minor), uint64(ct.Version.Patch), "", "")
	for _, lib := range installed {
		if lib.MachineName != ct.ID || lib.MajorVersion != ct.Version.Major || lib.MinorVersion != ct.Version.Minor {
			continue
		}
		if !want.GreaterThan(lib.Version()) {
			return true
		}
	}
	return false
}
