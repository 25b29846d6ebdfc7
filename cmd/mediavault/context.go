package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"mediavault/internal/config"
)

type commandContext struct {
	configFlag  *string
	addressFlag *string
	tokenFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, addressFlag, tokenFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		addressFlag: addressFlag,
		tokenFlag:   tokenFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// client builds an API client from flags and config. Flags win over config
// values so a CLI invocation can target a non-default daemon.
func (c *commandContext) client() (*apiClient, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	address := flagValue(c.addressFlag)
	if address == "" {
		address = cfg.Paths.APIBind
	}
	token := flagValue(c.tokenFlag)
	if token == "" {
		token = cfg.Paths.APIToken
	}
	if address == "" {
		return nil, errors.New("daemon address not configured; set paths.api_bind or pass --address")
	}
	if token == "" {
		return nil, errors.New("api token not configured; set paths.api_token or pass --token")
	}
	return newAPIClient(address, token), nil
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func wrapDialError(err error, address string) error {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon at %s: connection refused; start the daemon with `mediavaultd`", address)
	default:
		return fmt.Errorf("connect to daemon at %s: %w", address, err)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
