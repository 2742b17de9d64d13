package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Parse decodes library.json content.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("unmarshaling library manifest: %w", err)
	}
	if lib.MachineName == "" {
		return nil, fmt.Errorf("library manifest missing required 'machineName' field")
	}
	return &lib, nil
}

// ParseFile reads and decodes a library.json file.
func ParseFile(path string) (*Library, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	lib, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return lib, nil
}

// ParseDir reads the library.json inside a library directory.
func ParseDir(dir string) (*Library, error) {
	return ParseFile(filepath.Join(dir, FileName))
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
