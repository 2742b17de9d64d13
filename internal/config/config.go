package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h5p-mirror/h5pmirror/internal/branding"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the mirror.
const (
	KeyAuthToken       = "auth_token"
	KeyUser            = "user"
	KeyDryRun          = "dry_run"
	KeyWorkDir         = "work_dir"
	KeyHubURL          = "hub.content_types_url"
	KeyHubTimeout      = "hub.timeout"
	KeyHubCoreAPI      = "hub.core_api_version"
	KeyHubPlatformName = "hub.platform_name"
	KeyHubSiteUUID     = "hub.site_uuid"
	KeyRegistryHost    = "registry.host"
	KeyNPMPath         = "registry.npm_path"
	KeyNPMRCPath       = "registry.npmrc_path"
	KeyMaxIterations   = "mirror.max_iterations"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyLogOutput       = "log.output"
)

// envFiles are loaded in order; variables already set are never overridden.
var envFiles = []string{".env", ".env.local"}

// Dir returns the path to the config directory (~/.h5pmirror/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.h5pmirror/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from .env files, the config file and the
// environment.
func Load() {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// The credentials keep their historical, unprefixed names.
	_ = viper.BindEnv(KeyAuthToken, branding.EnvVar(KeyAuthToken), "NPM_AUTH_TOKEN")
	_ = viper.BindEnv(KeyUser, branding.EnvVar(KeyUser), "NPM_USER")
	_ = viper.BindEnv(KeyDryRun, branding.EnvVar(KeyDryRun), "DRY_RUN")

	setDefaults()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

func setDefaults() {
	viper.SetDefault(KeyDryRun, false)
	viper.SetDefault(KeyWorkDir, "working_dir")
	viper.SetDefault(KeyHubURL, branding.HubURL())
	viper.SetDefault(KeyHubTimeout, "60s")
	viper.SetDefault(KeyHubCoreAPI, "1.24")
	viper.SetDefault(KeyHubPlatformName, branding.PlatformName())
	viper.SetDefault(KeyRegistryHost, branding.RegistryHost())
	viper.SetDefault(KeyNPMPath, "npm")
	viper.SetDefault(KeyMaxIterations, 1000)
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "auto")
	viper.SetDefault(KeyLogOutput, "stderr")
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
