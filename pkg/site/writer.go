package site

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm      = 0o750
	filePerm     = 0o644
	tmpExtension = ".tmp"
)

// ErrUnsafeName is returned for document files that would escape the
// output directory.
var ErrUnsafeName = errors.New("site: unsafe file name")

// WriteDocument writes every file of doc under dir. All files are first
// written and synced as temporary files, then renamed into place, so a failed
// write never leaves a truncated page behind.
func WriteDocument(dir string, doc *Document) error {
	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	temps := make([]string, 0, len(doc.Files))

	cleanup := func() {
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
	}

	for _, f := range doc.Files {
		if !filepath.IsLocal(f.Name) {
			cleanup()

			return fmt.Errorf("%w: %q", ErrUnsafeName, f.Name)
		}

		tmp, writeErr := writeTemp(dir, f)
		if writeErr != nil {
			cleanup()

			return writeErr
		}

		temps = append(temps, tmp)
	}

	for i, f := range doc.Files {
		renameErr := os.Rename(temps[i], filepath.Join(dir, f.Name))
		if renameErr != nil {
			temps = temps[i:]
			cleanup()

			return fmt.Errorf("rename %s: %w", f.Name, renameErr)
		}
	}

	return nil
}

func writeTemp(dir string, f File) (string, error) {
	fd, err := os.CreateTemp(dir, filepath.Base(f.Name)+".*"+tmpExtension)
	if err != nil {
		return "", fmt.Errorf("create temp for %s: %w", f.Name, err)
	}

	tmp := fd.Name()

	_, err = fd.Write(f.Data)
	if err == nil {
		err = fd.Sync()
	}

	if err == nil {
		err = fd.Chmod(filePerm)
	}

	closeErr := fd.Close()

	err = errors.Join(err, closeErr)
	if err != nil {
		_ = os.Remove(tmp)

		return "", fmt.Errorf("write %s: %w", f.Name, err)
	}

	return tmp, nil
}
