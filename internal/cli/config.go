package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emberveil/storyweave/internal/platform/config"
)

// Config holds the client's environment configuration.
type Config struct {
	// APIURL is the backend base URL, including the API prefix.
	APIURL string `env:"STORYWEAVE_API_URL" envDefault:"http://localhost:8000/api/v1"`
	// DataDir holds the keyring and transcript archive. Empty means
	// ~/.storyweave.
	DataDir string `env:"STORYWEAVE_DATA_DIR"`
	// HTTPTimeout overrides the default per-request timeout. Turn
	// submissions keep their longer cap regardless.
	HTTPTimeout time.Duration `env:"STORYWEAVE_HTTP_TIMEOUT"`
}

// LoadConfig reads configuration from the environment and resolves the
// data directory.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".storyweave")
	}
	return cfg, nil
}
