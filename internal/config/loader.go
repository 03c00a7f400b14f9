package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for courtside.yaml/.yml in
// standard locations. The search requires an explicit YAML extension to
// avoid matching the binary itself, which Viper's built-in SetConfigName
// would match (same base name, no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location. Set name/type
		// without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("courtside")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: COURTSIDE_API_BASE_URL
	viper.SetEnvPrefix("COURTSIDE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a courtside config file
// with an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".courtside"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "courtside"))
		}
	} else {
		paths = append(paths, "/etc/courtside")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for courtside.yaml
// or .yml. Returns the first match, or empty string if none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "courtside"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds all config keys for environment variable
// support. Example: COURTSIDE_CACHE_TTL overrides cache.ttl.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("api_base_url")
	_ = viper.BindEnv("ws_url")
	_ = viper.BindEnv("timeout")
	_ = viper.BindEnv("state_path")
	_ = viper.BindEnv("log_level")
	_ = viper.BindEnv("dev_mode")

	_ = viper.BindEnv("cache.ttl")
	_ = viper.BindEnv("cache.max_entries")
	_ = viper.BindEnv("cache.snapshot_path")

	_ = viper.BindEnv("realtime.initial_interval")
	_ = viper.BindEnv("realtime.max_interval")
	_ = viper.BindEnv("realtime.max_attempts")

	_ = viper.BindEnv("live.poll_interval")
}

// LoadConfig reads the configuration file, applies environment overrides
// and defaults, and returns the validated Config.
// Note: callers that let CLI flags override DevMode should use
// LoadConfigRaw, apply the flags, then call SetDevDefaults and Validate.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults, but
// does NOT apply dev defaults or validate.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: env vars and defaults only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path of the loaded configuration file, or
// empty when running on env vars and defaults only.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
