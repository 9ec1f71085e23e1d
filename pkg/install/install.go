// Package install copies classified mod content into its destination.
//
// Installs are last-install-wins: an existing directory at the destination
// is removed in its entirety before the new content is copied. There is no
// merge, no backup and no ownership check; this mirrors how mod loaders
// expect the Mods directory to be managed.
package install

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"balatro-setup/pkg/classify"
	"balatro-setup/pkg/errors"
	"balatro-setup/pkg/logging"
)

// Target is the destination of one content unit: its files end up at
// Root/Name.
type Target struct {
	Root string
	Name string
}

// Path returns the full destination path.
func (t Target) Path() string {
	return filepath.Join(t.Root, t.Name)
}

// Install places unit's content at the target, replacing whatever directory
// already sits there. The target's parent is created on demand.
func Install(unit classify.ContentUnit, target Target) error {
	logger := logging.GetLogger("install")

	info, err := os.Stat(unit.Source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceMissing, "mod source %s is gone", unit.Source)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrSourceMissing, "mod source %s is not a directory", unit.Source)
	}

	if err := os.MkdirAll(target.Root, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", target.Root)
	}

	dest := target.Path()
	if _, err := os.Lstat(dest); err == nil {
		logger.Info().Str("path", dest).Msg("Removing previously installed version")
		if err := os.RemoveAll(dest); err != nil {
			return errors.Wrapf(err, errors.ErrInstallClean, "cannot remove existing %s", dest)
		}
	}

	if err := copyTree(unit.Source, dest); err != nil {
		return err
	}

	logger.Info().Str("name", unit.Name).Str("path", dest).Msg("Mod installed")
	return nil
}

// InstallFile copies a single file into destDir under name, overwriting any
// existing file. Used for components whose payload is one binary (the Lovely
// injector's version.dll goes straight into the game directory).
func InstallFile(src, destDir, name string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceMissing, "payload %s is gone", src)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", destDir)
	}
	if err := copyFile(src, filepath.Join(destDir, name), info.Mode()); err != nil {
		return err
	}
	logger := logging.GetLogger("install")
	logger.Info().Str("name", name).Str("dir", destDir).Msg("File installed")
	return nil
}

// copyTree recursively copies the contents of src into dest, preserving
// directory structure, file modes and symlinks.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Wrap(err, errors.ErrInstallCopy, "cannot compute relative path")
		}
		out := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
		}

		switch {
		case d.IsDir():
			if err := os.MkdirAll(out, info.Mode().Perm()); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", out)
			}
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", path)
			}
			if err := os.Symlink(link, out); err != nil {
				return errors.Wrapf(err, errors.ErrInstallCopy, "cannot create link %s", out)
			}
		default:
			if err := copyFile(path, out, info.Mode()); err != nil {
				return err
			}
		}
		return nil
	})
}

// copyFile copies one regular file, preserving mode.
func copyFile(src, dest string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return errors.Wrapf(err, errors.ErrInstallCopy, "cannot create %s", dest)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrInstallCopy, "cannot write %s", dest)
	}
	return out.Close()
}
