// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agents

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable settings for the agent system.
type Config struct {
	// Provider selects the reasoning backend: ollama, openai, or
	// anthropic.
	Provider string `yaml:"provider"`

	// ShortTermCapacity bounds the conversation turn log.
	ShortTermCapacity int `yaml:"short_term_capacity"`

	// MaxToolIterations caps the per-subtask tool loop.
	MaxToolIterations int `yaml:"max_tool_iterations"`

	// RetrievalK is the default number of long-term memory hits.
	RetrievalK int `yaml:"retrieval_k"`

	// PersistResults stores every run's final output in long-term
	// memory when a backend is configured.
	PersistResults bool `yaml:"persist_results"`

	// EnableLongTerm connects the Weaviate-backed memory tier.
	EnableLongTerm bool `yaml:"enable_long_term"`

	// ListenAddr is the HTTP bind address for serve mode.
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfig returns the baked-in defaults.
func DefaultConfig() Config {
	return Config{
		Provider:          "ollama",
		ShortTermCapacity: 50,
		MaxToolIterations: DefaultMaxToolIterations,
		RetrievalK:        3,
		PersistResults:    false,
		EnableLongTerm:    false,
		ListenAddr:        ":8000",
	}
}

// ConfigFromEnv builds a config from the environment, falling back to
// defaults and logging each fallback so deployments can see what they
// forgot to set.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.Provider = v
	} else {
		slog.Info("LLM_PROVIDER not set, using default", "provider", cfg.Provider)
	}

	cfg.ShortTermCapacity = envInt("SHORT_TERM_CAPACITY", cfg.ShortTermCapacity)
	cfg.MaxToolIterations = envInt("MAX_TOOL_ITERATIONS", cfg.MaxToolIterations)
	cfg.RetrievalK = envInt("MEMORY_RETRIEVAL_K", cfg.RetrievalK)
	cfg.PersistResults = envBool("PERSIST_RESULTS", cfg.PersistResults)
	cfg.EnableLongTerm = envBool("ENABLE_LONG_TERM_MEMORY", cfg.EnableLongTerm)

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	return cfg
}

// LoadConfigFile reads a YAML config file and applies environment
// overrides on top, so a file sets the baseline and the environment
// wins.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	cfg.ShortTermCapacity = envInt("SHORT_TERM_CAPACITY", cfg.ShortTermCapacity)
	cfg.MaxToolIterations = envInt("MAX_TOOL_ITERATIONS", cfg.MaxToolIterations)
	cfg.RetrievalK = envInt("MEMORY_RETRIEVAL_K", cfg.RetrievalK)
	cfg.PersistResults = envBool("PERSIST_RESULTS", cfg.PersistResults)
	cfg.EnableLongTerm = envBool("ENABLE_LONG_TERM_MEMORY", cfg.EnableLongTerm)
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	return cfg, nil
}

// Validate rejects configurations that cannot produce a working
// system.
func (c Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider must not be empty")
	}
	if c.ShortTermCapacity <= 0 {
		return fmt.Errorf("short_term_capacity must be positive, got %d", c.ShortTermCapacity)
	}
	if c.MaxToolIterations <= 0 {
		return fmt.Errorf("max_tool_iterations must be positive, got %d", c.MaxToolIterations)
	}
	if c.RetrievalK <= 0 {
		return fmt.Errorf("retrieval_k must be positive, got %d", c.RetrievalK)
	}
	return nil
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		slog.Info(key+" not set, using default", "value", fallback)
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}
