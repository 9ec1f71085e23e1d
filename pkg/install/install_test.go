package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balatro-setup/pkg/classify"
	"balatro-setup/pkg/errors"
	"balatro-setup/pkg/testutil"
)

func TestInstall_CopiesTree(t *testing.T) {
	src := t.TempDir()
	mods := filepath.Join(t.TempDir(), "Mods")
	testutil.WriteTree(t, src, map[string]string{
		"main.lua":          "-- entry",
		"assets/sleeve.png": "png",
	})

	unit := classify.ContentUnit{Name: "CardSleeves", Source: src}
	require.NoError(t, Install(unit, Target{Root: mods, Name: unit.Name}))

	got := testutil.ReadTree(t, filepath.Join(mods, "CardSleeves"))
	assert.Equal(t, map[string]string{
		"main.lua":          "-- entry",
		"assets/sleeve.png": "png",
	}, got)
}

func TestInstall_CreatesMissingModsDir(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"m.lua": "--"})

	// Deeply nested, nothing exists yet: the data root may be a derived
	// template pointing at a prefix that was never created.
	mods := filepath.Join(t.TempDir(), "pfx", "drive_c", "users", "steamuser",
		"AppData", "Roaming", "Balatro", "Mods")

	require.NoError(t, Install(classify.ContentUnit{Name: "X", Source: src}, Target{Root: mods, Name: "X"}))
	assert.FileExists(t, filepath.Join(mods, "X", "m.lua"))
}

func TestInstall_ReplacesExistingTarget(t *testing.T) {
	src := t.TempDir()
	mods := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"new.lua": "-- v2"})

	// Pre-existing install with leftover files that must not survive.
	testutil.WriteTree(t, filepath.Join(mods, "MyMod"), map[string]string{
		"old.lua":        "-- v1",
		"stale/junk.txt": "junk",
	})

	require.NoError(t, Install(classify.ContentUnit{Name: "MyMod", Source: src}, Target{Root: mods, Name: "MyMod"}))

	got := testutil.ReadTree(t, filepath.Join(mods, "MyMod"))
	assert.Equal(t, map[string]string{"new.lua": "-- v2"}, got)
}

func TestInstall_Idempotent(t *testing.T) {
	src := t.TempDir()
	mods := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"main.lua": "--", "data/cfg.toml": "x = 1"})

	unit := classify.ContentUnit{Name: "Twice", Source: src}
	target := Target{Root: mods, Name: "Twice"}

	require.NoError(t, Install(unit, target))
	first := testutil.ReadTree(t, target.Path())

	require.NoError(t, Install(unit, target))
	second := testutil.ReadTree(t, target.Path())

	assert.Equal(t, first, second)
}

func TestInstall_MissingSource(t *testing.T) {
	err := Install(classify.ContentUnit{Name: "Gone", Source: "/nonexistent/path"},
		Target{Root: t.TempDir(), Name: "Gone"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSourceMissing))
}

func TestInstall_PreservesSymlinks(t *testing.T) {
	src := t.TempDir()
	mods := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"real.lua": "--"})
	require.NoError(t, os.Symlink("real.lua", filepath.Join(src, "alias.lua")))

	require.NoError(t, Install(classify.ContentUnit{Name: "L", Source: src}, Target{Root: mods, Name: "L"}))

	link, err := os.Readlink(filepath.Join(mods, "L", "alias.lua"))
	require.NoError(t, err)
	assert.Equal(t, "real.lua", link)
}

func TestInstallFile(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "version.dll")
	require.NoError(t, os.WriteFile(src, []byte("MZ-lovely"), 0644))

	gameDir := filepath.Join(tmp, "game")
	require.NoError(t, InstallFile(src, gameDir, "version.dll"))

	data, err := os.ReadFile(filepath.Join(gameDir, "version.dll"))
	require.NoError(t, err)
	assert.Equal(t, "MZ-lovely", string(data))

	// overwrite on reinstall
	require.NoError(t, os.WriteFile(src, []byte("MZ-lovely-v2"), 0644))
	require.NoError(t, InstallFile(src, gameDir, "version.dll"))
	data, err = os.ReadFile(filepath.Join(gameDir, "version.dll"))
	require.NoError(t, err)
	assert.Equal(t, "MZ-lovely-v2", string(data))
}

func TestInstallFile_MissingSource(t *testing.T) {
	err := InstallFile("/nonexistent/version.dll", t.TempDir(), "version.dll")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSourceMissing))
}
