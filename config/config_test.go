package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "autogpt", cfg.Channel)
		assert.Equal(t, 64, cfg.MailboxCapacity)
		assert.Equal(t, "autogpt-user", cfg.UserSender)
		assert.Equal(t, "autogpt-agent-factory", cfg.FactorySender)
		assert.Equal(t, "autogpt-agent", cfg.AgentSender)
		// The default root lives under the home directory once expanded.
		assert.True(t, filepath.IsAbs(cfg.WorkspaceRoot))
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("COURIER_ADDR", "127.0.0.1:9999")
		t.Setenv("COURIER_CHANNEL", "testchan")
		t.Setenv("COURIER_WORKSPACE_ROOT", "/tmp/workspaces")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
		assert.Equal(t, "testchan", cfg.Channel)
		assert.Equal(t, "/tmp/workspaces", cfg.WorkspaceRoot)
	})

	t.Run("rejects a non-positive mailbox capacity", func(t *testing.T) {
		t.Setenv("COURIER_MAILBOX_CAPACITY", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}
