package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/commands/server"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	var logs, out bytes.Buffer
	cmd := NewRootCmd(&logs)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), logs.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version", "--home", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, mig.Version()+"\n", out)
}

func TestInitLogsAtConfiguredLevel(t *testing.T) {
	home := t.TempDir()
	_, logs, err := execute(t, "init", "--home", home)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, server.ConfigFile))
	assert.FileExists(t, filepath.Join(home, "genesis.json"))
	assert.True(t, strings.Contains(logs, "Generated genesis file"), logs)

	t.Setenv("MIG_LOG_LEVEL", "error")
	_, logs, err = execute(t, "init", "--home", home)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Setenv("MIG_LOG_LEVEL", "loud")
	_, _, err := execute(t, "keys", "--home", t.TempDir())
	assert.Error(t, err)
}
