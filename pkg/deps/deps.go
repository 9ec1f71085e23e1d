// Package deps checks for optional external extraction tools. The check is
// advisory: missing tools only limit which archive formats can be installed.
package deps

import (
	"os/exec"

	"balatro-setup/pkg/logging"
)

// Tool is one optional external dependency.
type Tool struct {
	Name    string
	Formats string
}

// optionalTools are consulted for formats the native extractor cannot handle.
var optionalTools = []Tool{
	{Name: "7z", Formats: ".7z"},
	{Name: "unrar", Formats: ".rar"},
}

// Missing returns the optional tools not present on PATH.
func Missing() []Tool {
	var missing []Tool
	for _, tool := range optionalTools {
		if _, err := exec.LookPath(tool.Name); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}

// Report logs a warning per missing optional tool. Never fatal.
func Report() {
	logger := logging.GetLogger("deps")
	for _, tool := range Missing() {
		logger.Warn().
			Str("tool", tool.Name).
			Str("formats", tool.Formats).
			Msg("Optional extraction tool not found, these archive formats will be unavailable")
	}
}
