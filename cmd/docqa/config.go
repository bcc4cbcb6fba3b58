package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/docqa"
	"github.com/pelletier/go-toml/v2"
)

// LoadConfig reads the TOML file at path over docqa.DefaultConfig. An empty
// path means ~/.docqa/config.toml, which may be absent; an explicitly named
// file must exist.
func LoadConfig(path string) (*docqa.Config, error) {
	cfg := docqa.DefaultConfig()

	explicit := path != ""
	path = configPathOrDefault(path)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, docqa.Errorf(docqa.EINVALID, "config %s:%d:%d: %s", path, row, col, derr.Error())
		}
		return nil, docqa.Errorf(docqa.EINVALID, "config %s: %v", path, err)
	}
	return cfg, nil
}

func configPathOrDefault(path string) string {
	if path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".docqa", "config.toml")
}
