package archive

import (
	"os"
	"path/filepath"

	"balatro-setup/pkg/errors"
	"balatro-setup/pkg/logging"
)

// Workdir owns the per-run temporary hierarchy. Each archive gets its own
// uniquely named subdirectory; Cleanup removes the whole tree and is safe to
// call more than once.
type Workdir struct {
	root string
}

// NewWorkdir creates the per-run temporary root.
func NewWorkdir() (*Workdir, error) {
	root, err := os.MkdirTemp("", "balatro-setup-")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create temporary directory")
	}
	return &Workdir{root: root}, nil
}

// Root returns the temporary root path.
func (w *Workdir) Root() string {
	return w.root
}

// Sub creates a fresh, uniquely named extraction directory for one archive.
func (w *Workdir) Sub(name string) (string, error) {
	dir, err := os.MkdirTemp(w.root, filepath.Base(name)+"-")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create extraction directory for %s", name)
	}
	return dir, nil
}

// Cleanup deletes the entire temporary hierarchy.
func (w *Workdir) Cleanup() {
	if w.root == "" {
		return
	}
	if err := os.RemoveAll(w.root); err != nil {
		logger := logging.GetLogger("archive")
		logger.Warn().Err(err).Str("path", w.root).Msg("Failed to remove temporary directory")
	}
	w.root = ""
}
