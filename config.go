package bitrie

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/naoina/toml"
)

type Config struct {
	// Path is the store file used by Open.
	Path string `toml:"path"`
	// SyncOnFlush fsyncs the storage after every Flush.
	SyncOnFlush bool `toml:"sync-on-flush"`
	// RebuildAfter rebuilds the index after that many successful mutations.
	// Zero disables it.
	RebuildAfter int `toml:"rebuild-after"`
	// Logger is nil for slog.Default().
	Logger *slog.Logger `toml:"-"`
}

// LoadConfig reads a Config from a TOML file.
//
//	path = "dbset/names"
//	sync-on-flush = true
//	rebuild-after = 10000
func LoadConfig(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err = toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.RebuildAfter < 0 {
		return cfg, fmt.Errorf("%s: rebuild-after must not be negative", path)
	}
	return cfg, nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
