// Package prompt is the interactive surface for the few questions the setup
// ever asks: a fallback install path and yes/no confirmations.
package prompt

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"

	"balatro-setup/pkg/errors"
)

// Interactive asks the operator on the terminal via pterm.
type Interactive struct{}

// AskInstallDir requests the path of the Balatro install directory. An empty
// answer aborts resolution.
func (Interactive) AskInstallDir() (string, error) {
	pterm.Info.Println("Balatro was not found in any known Steam location.")

	answer, err := pterm.DefaultInteractiveTextInput.
		Show("Path to the Balatro install directory (empty to abort)")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrResolveAbort, "prompt failed")
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.New(errors.ErrResolveAbort, "no path provided")
	}
	return ExpandHome(answer), nil
}

// Confirm asks a yes/no question, returning defaultYes when the terminal is
// unavailable.
func Confirm(message string, defaultYes bool) bool {
	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(defaultYes).
		Show(message)
	if err != nil {
		return defaultYes
	}
	return ok
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
