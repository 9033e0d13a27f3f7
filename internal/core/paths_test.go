package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	ResetPaths()
	defer ResetPaths()

	assert.Equal(t, home, HomeDir())
	assert.Equal(t, filepath.Join(home, ".vc-ranger"), DataDir())
	assert.Equal(t, filepath.Join(home, ".vc-ranger", "batch-run.log"), LogFile("batch-run"))
	assert.Equal(t, filepath.Join(home, ".config", "vc-ranger", "config.yaml"), ConfigFile())

	info, err := os.Stat(DataDir())
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPaths_XDGConfigHome(t *testing.T) {
	home := t.TempDir()
	xdg := filepath.Join(home, "xdg")
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", xdg)
	ResetPaths()
	defer ResetPaths()

	assert.Equal(t, filepath.Join(xdg, "vc-ranger", "config.yaml"), ConfigFile())
}
