package hub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// contentDir is the example content bundled in every .h5p package; it is
// not a library and is never installed.
const contentDir = "content"

// ExtractPackage unpacks a .h5p archive into destDir and returns the
// top-level directories in the order they first appear in the archive.
// Entries that would escape destDir are rejected.
func ExtractPackage(archivePath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening h5p archive: %w", err)
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolving extract directory: %w", err)
	}

	var dirs []string
	seen := make(map[string]bool)

	for _, f := range r.File {
		name := filepath.FromSlash(f.Name)
		target := filepath.Join(root, name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return nil, fmt.Errorf("archive entry %q escapes extract directory", f.Name)
		}

		top := strings.SplitN(filepath.ToSlash(f.Name), "/", 2)[0]
		if top != "" && (f.FileInfo().IsDir() || strings.Contains(f.Name, "/")) && !seen[top] {
			seen[top] = true
			dirs = append(dirs, top)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("creating %s: %w", f.Name, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return nil, err
		}
	}

	return dirs, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return out.Close()
}
