package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeSplit()
	c.normalizeRetention()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.UploadDir, err = ExpandPath(c.Paths.UploadDir); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeServer() {
	if c.Server.MaxUploadMiB <= 0 {
		c.Server.MaxUploadMiB = defaultMaxUploadMiB
	}
	if len(c.Server.AllowedExtensions) == 0 {
		c.Server.AllowedExtensions = defaultAllowedExtensions()
	}
	normalized := make([]string, 0, len(c.Server.AllowedExtensions))
	for _, ext := range c.Server.AllowedExtensions {
		cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if cleaned == "" {
			continue
		}
		normalized = append(normalized, cleaned)
	}
	c.Server.AllowedExtensions = normalized
}

func (c *Config) normalizeSplit() {
	if c.Split.DefaultDuration <= 0 {
		c.Split.DefaultDuration = defaultSplitDuration
	}
	c.Split.SegmentExtension = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Split.SegmentExtension), "."))
	if c.Split.SegmentExtension == "" {
		c.Split.SegmentExtension = defaultSegmentExtension
	}
}

func (c *Config) normalizeRetention() {
	if c.Retention.MaxAgeMinutes <= 0 {
		c.Retention.MaxAgeMinutes = defaultMaxAgeMinutes
	}
	if c.Retention.SweepIntervalMinutes <= 0 {
		c.Retention.SweepIntervalMinutes = defaultSweepIntervalMinutes
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
