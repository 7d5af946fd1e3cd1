// Package config loads and saves the global ~/.chatvault/config.toml.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the global configuration.
type Config struct {
	Import ImportConfig `toml:"import"`
}

// ImportConfig tunes chunking and intake validation. Chunk sizes are tuning
// knobs, not correctness parameters.
type ImportConfig struct {
	ParseChunkLines int  `toml:"parse_chunk_lines"`
	WriteBatchSize  int  `toml:"write_batch_size"`
	DeleteBatchSize int  `toml:"delete_batch_size"`
	Strict          bool `toml:"strict"`
	MinMessages     int  `toml:"min_messages"`
	MaxFileSizeMB   int  `toml:"max_file_size_mb"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			ParseChunkLines: 500,
			WriteBatchSize:  200,
			DeleteBatchSize: 500,
			MinMessages:     5,
			MaxFileSizeMB:   512,
		},
	}
}

// Load reads config from path, falling back to defaults when the file is
// missing. Unset fields also fall back to their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Import.ParseChunkLines <= 0 {
		cfg.Import.ParseChunkLines = def.Import.ParseChunkLines
	}
	if cfg.Import.WriteBatchSize <= 0 {
		cfg.Import.WriteBatchSize = def.Import.WriteBatchSize
	}
	if cfg.Import.DeleteBatchSize <= 0 {
		cfg.Import.DeleteBatchSize = def.Import.DeleteBatchSize
	}
	if cfg.Import.MinMessages <= 0 {
		cfg.Import.MinMessages = def.Import.MinMessages
	}
	if cfg.Import.MaxFileSizeMB <= 0 {
		cfg.Import.MaxFileSizeMB = def.Import.MaxFileSizeMB
	}
}
