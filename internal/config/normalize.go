package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAWS()
	if err := c.normalizeTool(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ToolCacheDir) == "" {
		c.Paths.ToolCacheDir = defaultToolCacheDir
	}
	if c.Paths.ToolCacheDir, err = expandPath(c.Paths.ToolCacheDir); err != nil {
		return fmt.Errorf("paths.tool_cache_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("MEDIAVAULT_API_TOKEN"); ok {
			c.Paths.APIToken = value
		}
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeAWS() {
	c.AWS.Region = strings.TrimSpace(c.AWS.Region)
	if c.AWS.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			c.AWS.Region = strings.TrimSpace(value)
		}
	}
	if c.AWS.AccessKeyID == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			c.AWS.AccessKeyID = strings.TrimSpace(value)
		}
	}
	if c.AWS.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			c.AWS.SecretAccessKey = strings.TrimSpace(value)
		}
	}
	c.AWS.Bucket = strings.TrimSpace(c.AWS.Bucket)
	c.AWS.Table = strings.TrimSpace(c.AWS.Table)
	c.AWS.Endpoint = strings.TrimSpace(c.AWS.Endpoint)
}

func (c *Config) normalizeTool() error {
	c.Tool.Path = strings.TrimSpace(c.Tool.Path)
	if c.Tool.Path != "" {
		expanded, err := expandPath(c.Tool.Path)
		if err != nil {
			return fmt.Errorf("tool.path: %w", err)
		}
		c.Tool.Path = expanded
	}
	c.Tool.DownloadURL = strings.TrimSpace(c.Tool.DownloadURL)
	if c.Tool.DownloadURL == "" {
		c.Tool.DownloadURL = defaultToolDownloadURL
	}
	return nil
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

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
