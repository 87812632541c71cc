package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/twm/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config search at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	viper.Reset()
	config.Set(nil)
	t.Cleanup(func() {
		viper.Reset()
		config.Set(nil)
		config.SetConfigPath("")
	})
	return dir
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	configFile = ""
	statusOutput = "text"
	statusWatch = false

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)
	configPath := filepath.Join(dir, "twm", "twm.toml")

	t.Run("creates config file when it doesn't exist", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "config", "init")
		require.NoError(t, err)

		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "terminal")
		assert.Contains(t, string(content), "alt+shift+q")
	})

	t.Run("doesn't overwrite existing config without force", func(t *testing.T) {
		viper.Reset()
		require.NoError(t, os.WriteFile(configPath, []byte("[spawn]\nterminal = \"kitty\"\n"), 0o644))

		_, err := executeCommand(rootCmd, "config", "init")
		require.NoError(t, err)

		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Equal(t, "[spawn]\nterminal = \"kitty\"\n", string(content))
	})

	t.Run("overwrites with force flag", func(t *testing.T) {
		viper.Reset()
		require.NoError(t, os.WriteFile(configPath, []byte("[spawn]\nterminal = \"kitty\"\n"), 0o644))

		_, err := executeCommand(rootCmd, "config", "init", "--force")
		require.NoError(t, err)

		// Values from the existing file are kept, the rest is filled in
		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "kitty")
		assert.Contains(t, string(content), "repeat_rate")
	})
}

func TestConfigShow(t *testing.T) {
	dir := isolate(t)

	out, err := executeCommand(rootCmd, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "twm", "twm.toml"))
	assert.Contains(t, out, "terminal: foot")
	assert.Contains(t, out, "kind: auto")
}

func TestConfigPath(t *testing.T) {
	isolate(t)
	custom := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(custom, []byte("[cursor]\nsize = 24\n"), 0o644))

	out, err := executeCommand(rootCmd, "--config", custom, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, custom+"\n", out)
	assert.Equal(t, 24, config.Get().Cursor.Size)
}

func TestConfigValidation(t *testing.T) {
	dir := isolate(t)
	configDir := filepath.Join(dir, "twm")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "twm.toml"), []byte("[spawn\nterminal = 1\n"), 0o644))

	_, err := executeCommand(rootCmd, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestVersion(t *testing.T) {
	isolate(t)
	Commit = "abc123"
	t.Cleanup(func() { Commit = "" })

	out, err := executeCommand(rootCmd, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "twm "+Version)
	assert.Contains(t, out, "commit: abc123")
	assert.NotContains(t, out, "built:")
}
