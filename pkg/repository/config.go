package repository

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config stores repository-local settings persisted at
// "<path_repository>/config". Missing config reads as a zero Config.
type Config struct {
	Core struct {
		Bare bool `toml:"bare"`
	} `toml:"core"`
	User struct {
		Name  string `toml:"name,omitempty"`
		Email string `toml:"email,omitempty"`
	} `toml:"user"`
	Signing struct {
		KeyPath string `toml:"key_path,omitempty"`
	} `toml:"signing"`
}

func (r *Repository) configPath() string {
	return filepath.Join(r.pathRepository, "config")
}

// ReadConfig reads the repository's TOML config file. A missing file is
// not an error: it reads as a zero Config.
func (r *Repository) ReadConfig() (*Config, error) {
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("repository: read config: %w", err)
	}
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("repository: read config: decode: %w", err)
	}
	return &cfg, nil
}

// WriteConfig atomically writes cfg to the repository's config file via
// a temp file and rename, mirroring the write discipline used by the
// loose-object backend.
func (r *Repository) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("repository: write config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(r.pathRepository, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("repository: write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("repository: write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("repository: write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("repository: write config: rename: %w", err)
	}
	return nil
}
