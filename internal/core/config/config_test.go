package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
projects_dir = "/tmp/claude-projects"
listen_addr = "127.0.0.1:9000"
context_runes = 120

[bedrock]
region = "eu-west-1"
model_id = "anthropic.claude-3-haiku-20240307-v1:0"

[pricing."claude-sonnet-4-5"]
input = 2.5
output = 12.0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.ProjectsDir != "/tmp/claude-projects" {
		t.Errorf("ProjectsDir = %q", cfg.ProjectsDir)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.ContextRunes != 120 {
		t.Errorf("ContextRunes = %d", cfg.ContextRunes)
	}
	if cfg.Bedrock.Region != "eu-west-1" {
		t.Errorf("Bedrock.Region = %q", cfg.Bedrock.Region)
	}

	mp, ok := cfg.Pricing["claude-sonnet-4-5"]
	if !ok {
		t.Fatal("pricing override missing")
	}
	if mp.InputPerMTok != 2.5 || mp.OutputPerMTok != 12.0 {
		t.Errorf("pricing = %+v", mp)
	}
	// Derived cache rates when unset
	if mp.CacheReadPerMTok != 0.25 {
		t.Errorf("CacheReadPerMTok = %v, want 0.25", mp.CacheReadPerMTok)
	}
	if mp.CacheWritePerMTok != 3.125 {
		t.Errorf("CacheWritePerMTok = %v, want 3.125", mp.CacheWritePerMTok)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := defaults()
	if cfg.ListenAddr == "" || cfg.ContextRunes == 0 {
		t.Errorf("defaults incomplete: %+v", cfg)
	}
}
