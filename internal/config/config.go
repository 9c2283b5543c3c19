// Package config loads runtime settings from the environment, with an
// optional env file in the user's config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	AppName     = "tonsuu"
	EnvFileName = "config.env"
)

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Config holds the resolved runtime settings.
type Config struct {
	// DataDir is the root for the result cache, the history store and the
	// vehicle registry.
	DataDir string
	// Backend selects the vision backend ("gemini" or "openai").
	Backend string
	// Model overrides the backend's default model when non-empty.
	Model string
	// Jobs is the batch worker count.
	Jobs int
	// Ensemble is the number of inference passes per image.
	Ensemble int
}

const (
	defaultBackend  = "gemini"
	defaultJobs     = 4
	defaultEnsemble = 1
)

// Load resolves the configuration from the environment.
func Load() (*Config, error) {
	dataDir := os.Getenv("TONSUU_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tonsuu")
	}

	backend := os.Getenv("TONSUU_BACKEND")
	if backend == "" {
		backend = defaultBackend
	}

	jobs, err := intEnv("TONSUU_JOBS", defaultJobs)
	if err != nil {
		return nil, err
	}
	ensemble, err := intEnv("TONSUU_ENSEMBLE", defaultEnsemble)
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir:  dataDir,
		Backend:  backend,
		Model:    os.Getenv("TONSUU_MODEL"),
		Jobs:     jobs,
		Ensemble: ensemble,
	}, nil
}

// CacheDir is where analysis results are cached by image digest.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// StoreDir is where the judgment history lives.
func (c *Config) StoreDir() string {
	return filepath.Join(c.DataDir, "store")
}

// VehicleDBPath is the vehicle registry database file.
func (c *Config) VehicleDBPath() string {
	return filepath.Join(c.DataDir, "vehicles.db")
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", key, v)
	}
	return v, nil
}
