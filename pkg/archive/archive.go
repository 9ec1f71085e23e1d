// Package archive decompresses mod archives into scoped temporary
// directories. The common formats are handled natively; 7z and rar are
// delegated to external tools when present.
package archive

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/codeclysm/extract/v4"

	"balatro-setup/pkg/errors"
	"balatro-setup/pkg/logging"
)

// nativeExts are handled by codeclysm/extract without external tools.
var nativeExts = []string{
	".zip", ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tbz2", ".tar.xz", ".txz", ".gz",
}

// externalExts need 7z or unrar on PATH.
var externalExts = []string{".7z", ".rar"}

// Format returns the recognized archive extension of path, or "" when the
// format is unsupported. Multi-part extensions like .tar.gz are matched
// before their suffixes.
func Format(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range []string{".tar.gz", ".tar.bz2", ".tar.xz"} {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	for _, ext := range append(append([]string{}, nativeExts...), externalExts...) {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// Supported reports whether path looks like an archive this package can
// extract, assuming external tools are present for 7z/rar.
func Supported(path string) bool {
	return Format(path) != ""
}

// Extract decompresses archivePath into dest. Unsupported formats return
// an error with code ErrUnsupported, distinguishable from extraction
// failures (ErrExtract).
func Extract(ctx context.Context, archivePath, dest string) error {
	logger := logging.GetLogger("archive")

	format := Format(archivePath)
	if format == "" {
		return errors.Newf(errors.ErrUnsupported, "unsupported archive format: %s", filepath.Base(archivePath))
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create extraction directory %s", dest)
	}

	logger.Debug().Str("archive", archivePath).Str("format", format).Str("dest", dest).Msg("Extracting archive")

	switch format {
	case ".7z":
		return runExternal(ctx, "7z", "x", "-y", "-o"+dest, archivePath)
	case ".rar":
		return runExternal(ctx, "unrar", "x", "-y", archivePath, dest)
	default:
		f, err := os.Open(archivePath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot open archive %s", archivePath)
		}
		defer func() { _ = f.Close() }()

		if err := extract.Archive(ctx, f, dest, nil); err != nil {
			return errors.Wrapf(err, errors.ErrExtract, "failed to extract %s", filepath.Base(archivePath))
		}
		return nil
	}
}

// runExternal shells out to an optional extraction tool.
func runExternal(ctx context.Context, tool string, args ...string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return errors.Newf(errors.ErrUnsupported, "%s is required for this archive format but was not found on PATH", tool)
	}
	cmd := exec.CommandContext(ctx, tool, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "%s failed: %s", tool, strings.TrimSpace(string(out)))
	}
	return nil
}
