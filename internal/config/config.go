package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Vectors VectorsConfig `toml:"vectors"`
	Vocab   VocabConfig   `toml:"vocab"`
}

type VectorsConfig struct {
	// Path to the pretrained vector file.
	Path string `toml:"path"`
	// Dim is the expected vector length; 0 infers it from the file.
	Dim int `toml:"dim"`
	// Policy for vocabulary tokens missing from the file: "omit" or "zero".
	Policy string `toml:"policy"`
}

type VocabConfig struct {
	// Cap keeps only the most frequent corpus tokens when > 0.
	Cap int `toml:"cap"`
	// KeepStopwords disables the stopword filter.
	KeepStopwords bool `toml:"keep_stopwords"`
}

func LoadConfig() (*Config, error) {
	config := &Config{}

	// Config file first, environment overrides on top
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".ddr.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	if path := os.Getenv("DDR_VECTORS"); path != "" {
		config.Vectors.Path = path
	}
	if policy := os.Getenv("DDR_POLICY"); policy != "" {
		config.Vectors.Policy = policy
	}
	if dim := os.Getenv("DDR_DIM"); dim != "" {
		n, err := strconv.Atoi(dim)
		if err != nil {
			return nil, fmt.Errorf("invalid DDR_DIM value %q: %w", dim, err)
		}
		config.Vectors.Dim = n
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".ddr.toml")
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
