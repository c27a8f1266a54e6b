package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateJob(); err != nil {
		return err
	}
	if err := c.validatePolling(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAPI() error {
	endpoints := []struct {
		key   string
		value string
	}{
		{"api.upload_url", c.API.UploadURL},
		{"api.image_gen_url", c.API.ImageGenURL},
		{"api.video_gen_url", c.API.VideoGenURL},
		{"api.cdn_url", c.API.CDNURL},
		{"api.proxy_url", c.API.ProxyURL},
	}
	for _, endpoint := range endpoints {
		if err := validateHTTPURL(endpoint.key, endpoint.value); err != nil {
			return err
		}
	}
	if c.API.RequestTimeoutSeconds <= 0 {
		return errors.New("api.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateJob() error {
	if c.Job.UserID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/festive/config.toml"
		}
		return fmt.Errorf("job.user_id is required. Set FESTIVE_USER_ID env var or edit %s (create with 'festive config init')", defaultPath)
	}
	if c.Job.EffectID == "" {
		return errors.New("job.effect_id must be set")
	}
	switch c.Job.Model {
	case ImageEffectsModel, VideoEffectsModel:
	default:
		return fmt.Errorf("job.model must be %q or %q, got %q", ImageEffectsModel, VideoEffectsModel, c.Job.Model)
	}
	return nil
}

func (c *Config) validatePolling() error {
	if c.Polling.IntervalSeconds <= 0 {
		return errors.New("polling.interval_seconds must be positive")
	}
	if c.Polling.MaxAttempts <= 0 {
		return errors.New("polling.max_attempts must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func validateHTTPURL(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must be set", key)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https (got %q)", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host (got %q)", key, value)
	}
	return nil
}
