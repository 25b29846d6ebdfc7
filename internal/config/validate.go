package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Every ingest prerequisite is
// checked here so a misconfigured daemon fails before accepting work.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAWS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.APIToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/mediavault/config.toml"
		}
		return fmt.Errorf("paths.api_token is required. Set MEDIAVAULT_API_TOKEN env var or edit %s (create with 'mediavault config init')", defaultPath)
	}
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	return nil
}

func (c *Config) validateAWS() error {
	if c.AWS.Region == "" {
		return errors.New("aws.region is required (or set AWS_REGION)")
	}
	if c.AWS.Bucket == "" {
		return errors.New("aws.bucket must name the target object-storage bucket")
	}
	if c.AWS.Table == "" {
		return errors.New("aws.table must name the target metadata table")
	}
	if (c.AWS.AccessKeyID == "") != (c.AWS.SecretAccessKey == "") {
		return errors.New("aws.access_key_id and aws.secret_access_key must be set together")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "text", "json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
