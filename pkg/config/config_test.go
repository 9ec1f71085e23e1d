package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateXDG points XDG at an empty directory so no user config interferes.
// adrg/xdg caches paths at init, so a Reload is needed after Setenv.
func isolateXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func TestLoad_Defaults(t *testing.T) {
	isolateXDG(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2379780, cfg.Game.AppID)
	assert.Equal(t, "Balatro.exe", cfg.Game.Executable)
	assert.Empty(t, cfg.Game.InstallDir)
	assert.Equal(t, 50, cfg.Classify.MaxScanDirs)
	assert.Equal(t, "ethangreen-dev/lovely-injector", cfg.Components.Lovely.Repo)
	assert.Equal(t, "version.dll", cfg.Components.Lovely.Payload)
	assert.Equal(t, "Steamodded/smods", cfg.Components.Steamodded.Repo)
	assert.Equal(t, "Steamodded", cfg.Components.Steamodded.InstallName)
}

func TestLoad_EnvOverride(t *testing.T) {
	isolateXDG(t)
	t.Setenv("BALATRO_SETUP_GAME_INSTALL_DIR", "/games/balatro")
	t.Setenv("BALATRO_SETUP_CLASSIFY_MAX_SCAN_DIRS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/games/balatro", cfg.Game.InstallDir)
	assert.Equal(t, 10, cfg.Classify.MaxScanDirs)
}

func TestDump_RoundTrips(t *testing.T) {
	isolateXDG(t)

	cfg, err := Load()
	require.NoError(t, err)

	out, err := Dump(cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "appid = 2379780")
	assert.Contains(t, out, "max_scan_dirs = 50")
	assert.Contains(t, out, "lovely-injector")
}

func TestEnvKeyToPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BALATRO_SETUP_GAME_INSTALL_DIR", "game.install_dir"},
		{"BALATRO_SETUP_GAME_APPID", "game.appid"},
		{"BALATRO_SETUP_CLASSIFY_MAX_SCAN_DIRS", "classify.max_scan_dirs"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, envKeyToPath(tt.in))
	}
}

func TestUserConfigPath_HonorsXDG(t *testing.T) {
	path := UserConfigPath()
	assert.Equal(t, "config.toml", filepath.Base(path))
	assert.Contains(t, path, string(os.PathSeparator)+"balatro-setup"+string(os.PathSeparator))
}
