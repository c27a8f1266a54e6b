package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"festive/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "festive")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "Pictures", "festive") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.API.ImageGenURL != "https://api.chromastudio.ai/image-gen" {
		t.Fatalf("unexpected image endpoint: %q", cfg.API.ImageGenURL)
	}
	if cfg.Job.EffectID != "confettitophoto" || cfg.Job.Model != config.ImageEffectsModel {
		t.Fatalf("unexpected job defaults: %+v", cfg.Job)
	}
	if !cfg.Job.RemoveWatermark || !cfg.Job.IsPrivate {
		t.Fatalf("expected watermark removal and private flags on by default: %+v", cfg.Job)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.Polling.MaxAttempts != 60 {
		t.Fatalf("unexpected max attempts: %d", cfg.Polling.MaxAttempts)
	}
	if cfg.IsVideoModel() {
		t.Fatal("expected image model by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)
	configPath := filepath.Join(tempDir, "festive.toml")

	type payload struct {
		API struct {
			ImageGenURL string `toml:"image_gen_url"`
		} `toml:"api"`
		Job struct {
			Model    string `toml:"model"`
			EffectID string `toml:"effect_id"`
		} `toml:"job"`
		Polling struct {
			IntervalSeconds int `toml:"interval_seconds"`
			MaxAttempts     int `toml:"max_attempts"`
		} `toml:"polling"`
	}
	custom := payload{}
	custom.API.ImageGenURL = "https://example.com/gen/"
	custom.Job.Model = "Video-Effects"
	custom.Job.EffectID = "snowfall"
	custom.Polling.IntervalSeconds = 5
	custom.Polling.MaxAttempts = 12

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q (exists=%v)", resolved, exists)
	}
	if cfg.API.ImageGenURL != "https://example.com/gen" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.ImageGenURL)
	}
	if !cfg.IsVideoModel() {
		t.Fatalf("expected model to normalize to video-effects, got %q", cfg.Job.Model)
	}
	if cfg.Job.ToolType != config.ImageEffectsModel {
		t.Fatalf("expected tool type default to be kept, got %q", cfg.Job.ToolType)
	}
	if cfg.Job.EffectID != "snowfall" {
		t.Fatalf("unexpected effect id: %q", cfg.Job.EffectID)
	}
	if cfg.PollInterval() != 5*time.Second || cfg.Polling.MaxAttempts != 12 {
		t.Fatalf("unexpected polling: %+v", cfg.Polling)
	}
}

func TestLoadReadsUserIDFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FESTIVE_USER_ID", "placeholder")
	os.Unsetenv("FESTIVE_USER_ID")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FESTIVE_USER_ID=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Job.UserID != "from-dotenv" {
		t.Fatalf("expected user id from .env, got %q", cfg.Job.UserID)
	}
}

func TestValidateRejectsUnknownModel(t *testing.T) {
	cfg := config.Default()
	cfg.Job.Model = "audio-effects"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "job.model") {
		t.Fatalf("expected job.model error, got %v", err)
	}
}

func TestValidateRejectsBadEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.API.ProxyURL = "ftp://example.com/proxy"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "api.proxy_url") {
		t.Fatalf("expected api.proxy_url error, got %v", err)
	}
}

func TestValidateRequiresUserID(t *testing.T) {
	cfg := config.Default()
	cfg.Job.UserID = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "FESTIVE_USER_ID") {
		t.Fatalf("expected user id hint, got %v", err)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	target := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Server.Bind != "127.0.0.1:7488" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
}
