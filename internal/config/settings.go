package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/h5p-mirror/h5pmirror/internal/mirror"
	"github.com/spf13/viper"
)

// Missing credential errors, shared with the mirror run.
var (
	ErrMissingToken = mirror.ErrMissingToken
	ErrMissingUser  = mirror.ErrMissingUser
)

// Settings is the resolved configuration of one mirror run.
type Settings struct {
	AuthToken string `validate:"required"`
	User      string `validate:"required"`
	DryRun    bool
	WorkDir   string `validate:"required"`

	Hub      HubSettings
	Registry RegistrySettings

	// MaxIterations bounds the mirror loop; 0 disables the bound.
	MaxIterations int `validate:"gte=0"`

	Log LogSettings
}

// HubSettings configures the H5P Hub client.
type HubSettings struct {
	ContentTypesURL string        `validate:"required,url"`
	Timeout         time.Duration `validate:"gte=0"`
	CoreAPIVersion  string        `validate:"required"`
	PlatformName    string
	SiteUUID        string `validate:"omitempty,uuid"`
}

// RegistrySettings configures the npm side.
type RegistrySettings struct {
	Host      string `validate:"required,hostname_port|hostname"`
	NPMPath   string `validate:"required"`
	NPMRCPath string
}

// LogSettings configures the zerolog logger.
type LogSettings struct {
	Level  string `validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format string `validate:"omitempty,oneof=auto console json"`
	Output string
}

var validate = validator.New()

// Current builds Settings from the loaded Viper state.
func Current() *Settings {
	return &Settings{
		AuthToken: viper.GetString(KeyAuthToken),
		User:      viper.GetString(KeyUser),
		DryRun:    viper.GetBool(KeyDryRun),
		WorkDir:   viper.GetString(KeyWorkDir),
		Hub: HubSettings{
			ContentTypesURL: viper.GetString(KeyHubURL),
			Timeout:         viper.GetDuration(KeyHubTimeout),
			CoreAPIVersion:  viper.GetString(KeyHubCoreAPI),
			PlatformName:    viper.GetString(KeyHubPlatformName),
			SiteUUID:        viper.GetString(KeyHubSiteUUID),
		},
		Registry: RegistrySettings{
			Host:      viper.GetString(KeyRegistryHost),
			NPMPath:   viper.GetString(KeyNPMPath),
			NPMRCPath: viper.GetString(KeyNPMRCPath),
		},
		MaxIterations: viper.GetInt(KeyMaxIterations),
		Log: LogSettings{
			Level:  viper.GetString(KeyLogLevel),
			Format: viper.GetString(KeyLogFormat),
			Output: viper.GetString(KeyLogOutput),
		},
	}
}

// Validate checks the settings and returns the first problem found.
// A missing token is reported before a missing user.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating settings: %w", err)
	}

	fe := verrs[0]
	switch fe.StructNamespace() {
	case "Settings.AuthToken":
		return ErrMissingToken
	case "Settings.User":
		return ErrMissingUser
	}
	return fmt.Errorf("invalid setting %s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
}

// LibrariesDir is the local library storage root.
func (s *Settings) LibrariesDir() string {
	return s.resolve("libraries")
}

// TempDir holds downloaded hub packages while they are extracted.
func (s *Settings) TempDir() string {
	return s.resolve("temp")
}

// CacheFile is the persisted hub content-type cache.
func (s *Settings) CacheFile() string {
	return s.resolve("hub-cache.json")
}

// NPMRC returns the path of the registry credentials file (~/.npmrc unless
// overridden).
func (s *Settings) NPMRC() string {
	if s.Registry.NPMRCPath != "" {
		return s.Registry.NPMRCPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".npmrc")
	}
	return filepath.Join(home, ".npmrc")
}

func (s *Settings) resolve(name string) string {
	p := filepath.Join(s.WorkDir, name)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
