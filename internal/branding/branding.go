// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	HomeDir      string `yaml:"home_dir"`
	EnvPrefix    string `yaml:"env_prefix"`
	GoModule     string `yaml:"go_module"`
	HubURL       string `yaml:"hub_url"`
	RegistryHost string `yaml:"registry_host"`
	PlatformName string `yaml:"platform_name"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:      "h5pmirror",
			DisplayName:  "H5P Mirror",
			Description:  "Mirrors H5P Hub content types into the npm registry",
			HomeDir:      ".h5pmirror",
			EnvPrefix:    "H5PMIRROR",
			GoModule:     "github.com/h5p-mirror/h5pmirror",
			HubURL:       "https://api.h5p.org/v1/content-types/",
			RegistryHost: "registry.npmjs.org",
			PlatformName: "h5pmirror",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "h5pmirror").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".h5pmirror").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "H5PMIRROR").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// HubURL returns the default H5P Hub content-types endpoint.
func HubURL() string { load(); return defaults.HubURL }

// RegistryHost returns the default npm registry host used in .npmrc.
func RegistryHost() string { load(); return defaults.RegistryHost }

// PlatformName returns the platform name reported to the hub.
func PlatformName() string { load(); return defaults.PlatformName }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("WORK_DIR") → "H5PMIRROR_WORK_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
