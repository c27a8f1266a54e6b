package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeJob()
	c.normalizePolling()
	c.normalizeDownload()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.UploadURL = trimURL(c.API.UploadURL, defaultUploadURL)
	c.API.ImageGenURL = trimURL(c.API.ImageGenURL, defaultImageGenURL)
	c.API.VideoGenURL = trimURL(c.API.VideoGenURL, defaultVideoGenURL)
	c.API.CDNURL = trimURL(c.API.CDNURL, defaultCDNURL)
	c.API.ProxyURL = trimURL(c.API.ProxyURL, defaultProxyURL)
	c.API.UserAgent = strings.TrimSpace(c.API.UserAgent)
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaultUserAgent
	}
	if c.API.RequestTimeoutSeconds <= 0 {
		c.API.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeJob() {
	c.Job.EffectID = strings.TrimSpace(c.Job.EffectID)
	if c.Job.EffectID == "" {
		c.Job.EffectID = defaultEffectID
	}
	c.Job.Model = strings.ToLower(strings.TrimSpace(c.Job.Model))
	if c.Job.Model == "" {
		c.Job.Model = defaultModel
	}
	c.Job.ToolType = strings.TrimSpace(c.Job.ToolType)
	if c.Job.ToolType == "" {
		c.Job.ToolType = c.Job.Model
	}
	if value, ok := os.LookupEnv("FESTIVE_USER_ID"); ok && strings.TrimSpace(value) != "" {
		c.Job.UserID = value
	}
	c.Job.UserID = strings.TrimSpace(c.Job.UserID)
}

func (c *Config) normalizePolling() {
	if c.Polling.IntervalSeconds <= 0 {
		c.Polling.IntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Polling.MaxAttempts <= 0 {
		c.Polling.MaxAttempts = defaultPollMaxAttempts
	}
}

func (c *Config) normalizeDownload() {
	c.Download.FilenamePrefix = strings.TrimSpace(c.Download.FilenamePrefix)
	if c.Download.FilenamePrefix == "" {
		c.Download.FilenamePrefix = defaultFilenamePrefix
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("FESTIVE_API_TOKEN"); ok {
			c.Server.APIToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func trimURL(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}
