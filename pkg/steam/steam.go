// Package steam locates the Balatro installation and its per-user data root
// across the Steam deployments found on Linux machines: native packages,
// the Flatpak Steam and the Snap Steam.
//
// Probing is ordered and tagged: every candidate path carries the deployment
// environment it belongs to, so the data-root template is chosen from the
// environment that actually matched rather than re-derived from the resolved
// path afterwards. Path-string classification survives only for
// operator-supplied directories, where no tag exists.
package steam

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"balatro-setup/pkg/errors"
	"balatro-setup/pkg/logging"
)

// Environment identifies which Steam deployment a path belongs to.
type Environment int

const (
	EnvUnknown Environment = iota
	EnvNative
	EnvFlatpak
	EnvSnap
)

// String returns a human-readable environment name.
func (e Environment) String() string {
	switch e {
	case EnvNative:
		return "native"
	case EnvFlatpak:
		return "flatpak"
	case EnvSnap:
		return "snap"
	default:
		return "unknown"
	}
}

// Path fragments used to classify operator-supplied install directories.
const (
	flatpakFragment = ".var/app/com.valvesoftware.Steam"
	snapFragment    = "snap/steam"
)

// gameDir is the directory name Steam installs the game under.
const gameDir = "Balatro"

// Candidate is one probed filesystem root, tagged with its deployment
// environment. Candidate lists are ordered by priority: first match wins.
type Candidate struct {
	Path string
	Env  Environment
}

// ResolvedEnvironment is the pair of roots everything downstream installs
// into. Both paths are absolute and the value is immutable once produced.
type ResolvedEnvironment struct {
	InstallRoot string
	DataRoot    string
	Env         Environment
}

// PathPrompter is the interactive fallback used when probing finds nothing.
// AskInstallDir returns the next path to try, or an error to abort.
type PathPrompter interface {
	AskInstallDir() (string, error)
}

// Options configures Resolve.
type Options struct {
	// Home overrides the user home directory, for tests.
	Home string

	// InstallDir, when non-empty, skips probing entirely. The directory is
	// still validated against the marker.
	InstallDir string

	// AppID is the Steam application id used for the compatdata prefix.
	AppID int

	// Marker is the executable whose presence confirms an install root.
	Marker string

	// Prompt is consulted when probing fails. A nil Prompt makes probe
	// failure fatal.
	Prompt PathPrompter
}

// Probe returns the first candidate whose path is a directory that contains
// marker as a regular file. An empty marker degrades to an existence-only
// directory check. Absence is a normal outcome, reported via ok.
func Probe(candidates []Candidate, marker string) (Candidate, bool) {
	for _, c := range candidates {
		if hasMarker(c.Path, marker) {
			return c, true
		}
	}
	return Candidate{}, false
}

// hasMarker reports whether dir exists and, if marker is non-empty, contains
// it as a regular file.
func hasMarker(dir, marker string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	if marker == "" {
		return true
	}
	fi, err := os.Stat(filepath.Join(dir, marker))
	return err == nil && fi.Mode().IsRegular()
}

// steamRoots returns the known Steam library roots, in priority order.
func steamRoots(home string) []Candidate {
	return []Candidate{
		{filepath.Join(home, ".local", "share", "Steam"), EnvNative},
		{filepath.Join(home, ".steam", "steam"), EnvNative},
		{filepath.Join(home, ".steam", "root"), EnvNative},
		{filepath.Join(home, flatpakFragment, "data", "Steam"), EnvFlatpak},
		{filepath.Join(home, "snap", "steam", "common", ".local", "share", "Steam"), EnvSnap},
	}
}

// InstallCandidates returns the ordered install-root candidates for home.
func InstallCandidates(home string) []Candidate {
	roots := steamRoots(home)
	out := make([]Candidate, 0, len(roots))
	for _, r := range roots {
		out = append(out, Candidate{
			Path: filepath.Join(r.Path, "steamapps", "common", gameDir),
			Env:  r.Env,
		})
	}
	return out
}

// DataRootCandidates returns the ordered data-root candidates inside the
// Proton prefix for appID. These are checked existence-only.
func DataRootCandidates(home string, appID int) []Candidate {
	roots := steamRoots(home)
	out := make([]Candidate, 0, len(roots))
	for _, r := range roots {
		out = append(out, Candidate{
			Path: dataRootUnder(r.Path, appID),
			Env:  r.Env,
		})
	}
	return out
}

// dataRootUnder builds the game's data directory under one Steam root.
func dataRootUnder(steamRoot string, appID int) string {
	return filepath.Join(steamRoot,
		"steamapps", "compatdata", strconv.Itoa(appID),
		"pfx", "drive_c", "users", "steamuser",
		"AppData", "Roaming", gameDir)
}

// ClassifyPath guesses the deployment environment from an install path.
// This is a substring heuristic and is only used for operator-supplied
// directories; probed candidates carry their environment directly.
func ClassifyPath(path string) Environment {
	switch {
	case strings.Contains(path, flatpakFragment):
		return EnvFlatpak
	case strings.Contains(path, snapFragment):
		return EnvSnap
	default:
		return EnvNative
	}
}

// dataRootTemplate instantiates the data-root template for env. Unknown
// environments fall back to the native layout.
func dataRootTemplate(home string, env Environment, appID int) string {
	roots := steamRoots(home)
	for _, r := range roots {
		if r.Env == env {
			return dataRootUnder(r.Path, appID)
		}
	}
	return dataRootUnder(roots[0].Path, appID)
}

// Resolve produces the ResolvedEnvironment for this run.
//
// The install root comes from Options.InstallDir when set, otherwise from
// probing, otherwise from the interactive prompt. The data root is probed
// existence-only across the known Proton prefixes; when none exists it is
// derived from the data-root template of the matched environment. The
// derived path may not exist yet; installation creates it on demand.
func Resolve(opts Options) (*ResolvedEnvironment, error) {
	logger := logging.GetLogger("steam")

	home := opts.Home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "unable to determine home directory")
		}
	}

	installRoot, env, err := resolveInstallRoot(home, opts)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("installRoot", installRoot).Stringer("env", env).Msg("Install root resolved")

	dataRoot := resolveDataRoot(home, env, opts.AppID)
	logger.Info().Str("dataRoot", dataRoot).Msg("Data root resolved")

	return &ResolvedEnvironment{
		InstallRoot: installRoot,
		DataRoot:    dataRoot,
		Env:         env,
	}, nil
}

func resolveInstallRoot(home string, opts Options) (string, Environment, error) {
	logger := logging.GetLogger("steam")

	if opts.InstallDir != "" {
		if !hasMarker(opts.InstallDir, opts.Marker) {
			return "", EnvUnknown, errors.Newf(errors.ErrGameNotFound,
				"%s does not contain %s", opts.InstallDir, opts.Marker)
		}
		return opts.InstallDir, ClassifyPath(opts.InstallDir), nil
	}

	if c, ok := Probe(InstallCandidates(home), opts.Marker); ok {
		return c.Path, c.Env, nil
	}
	logger.Debug().Msg("No install candidate matched, falling back to prompt")

	if opts.Prompt == nil {
		return "", EnvUnknown, errors.New(errors.ErrGameNotFound,
			"Balatro installation not found in any known Steam location")
	}

	for {
		path, err := opts.Prompt.AskInstallDir()
		if err != nil {
			return "", EnvUnknown, errors.Wrap(err, errors.ErrResolveAbort,
				"installation directory not provided")
		}
		if hasMarker(path, opts.Marker) {
			return path, ClassifyPath(path), nil
		}
		logger.Warn().Str("path", path).Str("marker", opts.Marker).Msg("Directory does not contain the game executable")
	}
}

func resolveDataRoot(home string, env Environment, appID int) string {
	if c, ok := Probe(DataRootCandidates(home, appID), ""); ok {
		return c.Path
	}
	// Nothing exists yet; instantiate the template for the environment the
	// install root came from. The installer creates missing directories.
	return dataRootTemplate(home, env, appID)
}
