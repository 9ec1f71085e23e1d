// Package config loads the layered balatro-setup configuration.
//
// Precedence, lowest to highest: embedded defaults, the user config file at
// $XDG_CONFIG_HOME/balatro-setup/config.toml, and BALATRO_SETUP_* environment
// variables.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"balatro-setup/pkg/errors"
)

//go:embed defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix for environment variable overrides,
// e.g. BALATRO_SETUP_GAME_INSTALL_DIR.
const EnvPrefix = "BALATRO_SETUP_"

// Game holds installation discovery settings.
type Game struct {
	InstallDir string `koanf:"install_dir" toml:"install_dir"`
	AppID      int    `koanf:"appid" toml:"appid"`
	Executable string `koanf:"executable" toml:"executable"`
}

// Classify holds archive classification settings.
type Classify struct {
	MaxScanDirs int `koanf:"max_scan_dirs" toml:"max_scan_dirs"`
}

// Component describes one fixed modding component release source.
type Component struct {
	Repo         string `koanf:"repo" toml:"repo"`
	AssetPattern string `koanf:"asset_pattern" toml:"asset_pattern,omitempty"`
	Payload      string `koanf:"payload" toml:"payload,omitempty"`
	InstallName  string `koanf:"install_name" toml:"install_name,omitempty"`
}

// Components groups the fixed components.
type Components struct {
	Lovely     Component `koanf:"lovely" toml:"lovely"`
	Steamodded Component `koanf:"steamodded" toml:"steamodded"`
}

// Config is the effective configuration for a run.
type Config struct {
	Game       Game       `koanf:"game" toml:"game"`
	Classify   Classify   `koanf:"classify" toml:"classify"`
	Components Components `koanf:"components" toml:"components"`
}

// UserConfigPath returns the path of the user config file, which may not exist.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "balatro-setup", "config.toml")
}

// Load builds the effective configuration from defaults, the user config
// file (if present) and environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load built-in defaults")
	}

	userPath := UserConfigPath()
	if _, err := os.Stat(userPath); err == nil {
		if err := k.Load(file.Provider(userPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", userPath)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	return &cfg, nil
}

// Dump renders a configuration as TOML, used by the config subcommand.
func Dump(cfg *Config) (string, error) {
	out, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return string(out), nil
}

// envKeyToPath maps BALATRO_SETUP_GAME_INSTALL_DIR to "game.install_dir".
// Only the first underscore separates the section from the key; the rest of
// the name is the key itself.
func envKeyToPath(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}
