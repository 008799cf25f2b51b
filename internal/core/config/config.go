package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pmorrell/ccscope/internal/core/convlog"
)

// Config holds user settings. Everything has a working default; the file
// is optional.
type Config struct {
	ProjectsDir  string // Claude Code projects root (default ~/.claude/projects)
	IndexPath    string // sqlite index location
	ListenAddr   string // dashboard listen address
	ContextRunes int    // search snippet context window

	Bedrock BedrockConfig
	Pricing map[string]convlog.ModelPricing
}

// BedrockConfig configures the summarization backend.
type BedrockConfig struct {
	Region  string
	ModelID string
	Profile string
}

type tomlConfig struct {
	ProjectsDir  string                 `toml:"projects_dir"`
	IndexPath    string                 `toml:"index_path"`
	ListenAddr   string                 `toml:"listen_addr"`
	ContextRunes int                    `toml:"context_runes"`
	Bedrock      tomlBedrock            `toml:"bedrock"`
	Pricing      map[string]tomlPricing `toml:"pricing"`
}

type tomlBedrock struct {
	Region  string `toml:"region"`
	ModelID string `toml:"model_id"`
	Profile string `toml:"profile"`
}

type tomlPricing struct {
	Input      float64 `toml:"input"`
	Output     float64 `toml:"output"`
	CacheWrite float64 `toml:"cache_write"`
	CacheRead  float64 `toml:"cache_read"`
}

// Load reads config from ~/.config/ccscope/config.toml, falling back to
// defaults when the file or home directory is unavailable.
func Load() (*Config, error) {
	cfg := defaults()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}
	return loadFrom(filepath.Join(home, ".config", "ccscope", "config.toml"), cfg)
}

// LoadFile reads config from an explicit path; a missing file is an error
// here, unlike Load.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return loadFrom(path, defaults())
}

func defaults() *Config {
	cfg := &Config{
		ListenAddr:   "127.0.0.1:8377",
		ContextRunes: 80,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.ProjectsDir = filepath.Join(home, ".claude", "projects")
		cfg.IndexPath = filepath.Join(home, ".config", "ccscope", "index.db")
	}
	return cfg
}

func loadFrom(path string, cfg *Config) (*Config, error) {
	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if tc.ProjectsDir != "" {
		cfg.ProjectsDir = expandHome(tc.ProjectsDir)
	}
	if tc.IndexPath != "" {
		cfg.IndexPath = expandHome(tc.IndexPath)
	}
	if tc.ListenAddr != "" {
		cfg.ListenAddr = tc.ListenAddr
	}
	if tc.ContextRunes > 0 {
		cfg.ContextRunes = tc.ContextRunes
	}
	cfg.Bedrock = BedrockConfig(tc.Bedrock)

	if len(tc.Pricing) > 0 {
		cfg.Pricing = make(map[string]convlog.ModelPricing, len(tc.Pricing))
		for model, p := range tc.Pricing {
			mp := convlog.ModelPricing{
				InputPerMTok:      p.Input,
				OutputPerMTok:     p.Output,
				CacheWritePerMTok: p.CacheWrite,
				CacheReadPerMTok:  p.CacheRead,
			}
			// Derived rates when the file only gives input/output
			if mp.CacheWritePerMTok == 0 {
				mp.CacheWritePerMTok = mp.InputPerMTok * 1.25
			}
			if mp.CacheReadPerMTok == 0 {
				mp.CacheReadPerMTok = mp.InputPerMTok * 0.10
			}
			cfg.Pricing[model] = mp
		}
	}

	return cfg, nil
}

// PriceTable builds the engine price table with this config's overrides.
func (c *Config) PriceTable() *convlog.PriceTable {
	return convlog.NewPriceTable(c.Pricing)
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
