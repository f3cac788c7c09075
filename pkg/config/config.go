// SPDX-License-Identifier: Apache-2.0
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log   LogConfig   `koanf:"log"`
	LLM   LLMConfig   `koanf:"llm"`
	TTS   TTSConfig   `koanf:"tts"`
	Audit AuditConfig `koanf:"audit"`
	Run   RunConfig   `koanf:"run"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider    string  `koanf:"provider"` // openai, ollama
	Model       string  `koanf:"model"`
	BaseURL     string  `koanf:"base_url"`
	APIKey      string  `koanf:"api_key"`
	Temperature float64 `koanf:"temperature"`
	MaxAttempts int     `koanf:"max_attempts"`
	TimeoutSec  int     `koanf:"timeout_sec"`
}

type TTSConfig struct {
	Enabled bool   `koanf:"enabled"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

type AuditConfig struct {
	Backend string `koanf:"backend"` // memory, sqlite, none
	Path    string `koanf:"path"`
}

type RunConfig struct {
	OutputDir    string `koanf:"output_dir"`
	WorkflowsDir string `koanf:"workflows_dir"`
	Artifacts    bool   `koanf:"artifacts"`
}

// Load reads configuration with precedence defaults < file < environment.
// Environment variables use the TYPECAST_ prefix, TYPECAST_LLM_MODEL
// becoming llm.model.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("llm.provider", "openai")
	k.Set("llm.model", "gpt-4o")
	k.Set("llm.temperature", 0.7)
	k.Set("llm.max_attempts", 3)
	k.Set("llm.timeout_sec", 180)

	k.Set("tts.enabled", true)
	k.Set("tts.model", "tts-1-hd")

	k.Set("audit.backend", "memory")
	k.Set("audit.path", "typecast_audit.db")

	k.Set("run.output_dir", "output")
	k.Set("run.workflows_dir", "configs")
	k.Set("run.artifacts", true)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("TYPECAST_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "TYPECAST_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
