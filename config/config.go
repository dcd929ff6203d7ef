// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config carries everything the server process needs to wire the broker and
// serve HTTP.
type Config struct {
	Addr            string `env:"COURIER_ADDR" envDefault:":8080"`
	Channel         string `env:"COURIER_CHANNEL" envDefault:"autogpt"`
	MailboxCapacity int    `env:"COURIER_MAILBOX_CAPACITY" envDefault:"64"`
	WorkspaceRoot   string `env:"COURIER_WORKSPACE_ROOT" envDefault:"~/autogpt_workspace"`

	UserSender    string `env:"COURIER_USER_SENDER" envDefault:"autogpt-user"`
	FactorySender string `env:"COURIER_FACTORY_SENDER" envDefault:"autogpt-agent-factory"`
	AgentSender   string `env:"COURIER_AGENT_SENDER" envDefault:"autogpt-agent"`
}

// Load parses the environment into a Config and expands a leading ~ in the
// workspace root.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	root, err := expandHome(cfg.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	cfg.WorkspaceRoot = root

	if cfg.MailboxCapacity <= 0 {
		return nil, fmt.Errorf("COURIER_MAILBOX_CAPACITY must be positive, got %d", cfg.MailboxCapacity)
	}
	return &cfg, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
