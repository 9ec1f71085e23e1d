// Package classify decides what, inside an extracted archive of unknown
// layout, constitutes installable mod content.
//
// The sole signal for "this is a mod" is the presence of files with the mod
// marker extension (.lua for Balatro). A flat or single-mod archive is the
// common case and is preferred; treating top-level directories as independent
// mods is the fallback when the archive root itself carries no mod content.
package classify

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"balatro-setup/pkg/archive"
	"balatro-setup/pkg/logging"
)

// DefaultMarkerExt identifies mod source files.
const DefaultMarkerExt = ".lua"

// DefaultMaxScanDirs bounds the multi-mod fallback scan.
const DefaultMaxScanDirs = 50

// ContentUnit is one installable mod resolved from an archive: a source
// path (file tree or the extraction root itself) and the logical name it
// installs under.
type ContentUnit struct {
	Name   string
	Source string
}

// Options tunes classification.
type Options struct {
	// MarkerExt is the extension that marks mod source files.
	// Defaults to DefaultMarkerExt.
	MarkerExt string

	// MaxScanDirs caps how many top-level directories the multi-mod
	// fallback inspects. Directories past the cap are skipped with a
	// warning. Defaults to DefaultMaxScanDirs.
	MaxScanDirs int
}

func (o Options) withDefaults() Options {
	if o.MarkerExt == "" {
		o.MarkerExt = DefaultMarkerExt
	}
	if o.MaxScanDirs <= 0 {
		o.MaxScanDirs = DefaultMaxScanDirs
	}
	return o
}

// Classify inspects the extraction tree at root and returns the content
// units it holds. archiveName is the original archive filename, used to name
// single-mod archives. An empty result with a nil error means the archive
// holds no recognizable mod content; callers surface that as a warning.
func Classify(root, archiveName string, opts Options) ([]ContentUnit, error) {
	opts = opts.withDefaults()
	logger := logging.GetLogger("classify")

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	unit, ok, err := singleUnit(root, archiveName, entries, opts)
	if err != nil {
		return nil, err
	}
	if ok {
		logger.Debug().Str("name", unit.Name).Str("source", unit.Source).Msg("Archive classified as a single mod")
		return []ContentUnit{unit}, nil
	}

	units, err := multiUnits(root, entries, opts)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		logger.Warn().Str("archive", archiveName).Msg("Archive contains no mod content")
	}
	return units, nil
}

// singleUnit applies rule 1: the archive is one mod when marker files sit
// at the extraction root itself, or when the payload is wrapped in exactly
// one outer directory (the shape source-hosting sites generate). The unit is
// named after the archive. Trees whose mod content is spread across several
// top-level directories are not a single mod; those fall through to rule 2.
func singleUnit(root, archiveName string, entries []os.DirEntry, opts Options) (ContentUnit, bool, error) {
	name := StripArchiveExt(archiveName)

	if markerAtTopLevel(entries, opts.MarkerExt) {
		return ContentUnit{Name: name, Source: root}, true, nil
	}

	dirs := subdirs(entries)
	if len(dirs) == 1 {
		wrapped := filepath.Join(root, dirs[0])
		inner, err := containsMarker(wrapped, opts.MarkerExt)
		if err != nil {
			return ContentUnit{}, false, err
		}
		if inner {
			return ContentUnit{Name: name, Source: wrapped}, true, nil
		}
	}

	return ContentUnit{}, false, nil
}

// multiUnits applies rule 2: no mod content at the archive root, so each
// top-level directory holding marker files becomes its own unit, named after
// the directory.
func multiUnits(root string, entries []os.DirEntry, opts Options) ([]ContentUnit, error) {
	logger := logging.GetLogger("classify")

	var units []ContentUnit
	scanned := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if scanned >= opts.MaxScanDirs {
			logger.Warn().
				Int("cap", opts.MaxScanDirs).
				Str("dir", e.Name()).
				Msg("Too many top-level directories, skipping the rest")
			break
		}
		scanned++

		dir := filepath.Join(root, e.Name())
		ok, err := containsMarker(dir, opts.MarkerExt)
		if err != nil {
			return nil, err
		}
		if ok {
			units = append(units, ContentUnit{Name: e.Name(), Source: dir})
		} else {
			logger.Warn().Str("dir", e.Name()).Msg("Skipping directory without mod files")
		}
	}
	return units, nil
}

// containsMarker reports whether any file under dir, at any depth, has the
// marker extension.
func containsMarker(dir, markerExt string) (bool, error) {
	found := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), markerExt) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found, err
}

// markerAtTopLevel reports whether any immediate child entry is itself a
// marker file.
func markerAtTopLevel(entries []os.DirEntry, markerExt string) bool {
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), markerExt) {
			return true
		}
	}
	return false
}

// subdirs returns the names of the immediate subdirectories among entries.
func subdirs(entries []os.DirEntry) []string {
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out
}

// StripArchiveExt removes the archive extension chain from a filename, so
// "CardSleeves.tar.gz" and "CardSleeves.zip" both become "CardSleeves".
func StripArchiveExt(name string) string {
	base := filepath.Base(name)
	if format := archive.Format(base); format != "" {
		return base[:len(base)-len(format)]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
