// Package state implements the on-disk fingerprint store.
//
// The store keeps one file per target inside the hidden state directory next
// to the configuration file. Each file holds the target's last fingerprint
// as an opaque byte string.
package state

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/ward/internal/core/domain"
	"go.trai.ch/ward/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FingerprintStore = (*Store)(nil)

// Store implements ports.FingerprintStore with one file per target.
type Store struct {
	dir string
}

// NewStore creates a fingerprint store rooted at the given state directory.
// The directory is created lazily on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

func (s *Store) path(target string) string {
	return filepath.Join(s.dir, target+domain.FingerprintFileExt)
}

// Load returns the recorded fingerprint for a target.
// A missing record is a miss, not an error.
func (s *Store) Load(target string) (domain.Fingerprint, error) {
	data, err := os.ReadFile(s.path(target)) //nolint:gosec // path is derived from a validated target name
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", zerr.With(zerr.Wrap(err, "failed to read fingerprint"), "target", target)
	}
	if len(data) == 0 {
		// A truncated record is dropped and treated as a miss.
		_ = os.Remove(s.path(target))
		return "", nil
	}
	return domain.Fingerprint(data), nil
}

// Save records the fingerprint for a target. The write goes to a temporary
// file in the state directory and is renamed into place so a crash cannot
// leave a truncated record.
func (s *Store) Save(target string, fp domain.Fingerprint) error {
	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create state directory")
	}

	tmp, err := os.CreateTemp(s.dir, target+".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create fingerprint temp file"), "target", target)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(string(fp)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to write fingerprint"), "target", target)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to close fingerprint temp file"), "target", target)
	}

	if err := os.Rename(tmpName, s.path(target)); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to rename fingerprint into place"), "target", target)
	}
	return nil
}

// Clear removes the recorded fingerprint for a target, if any.
func (s *Store) Clear(target string) error {
	if err := os.Remove(s.path(target)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove fingerprint"), "target", target)
	}
	return nil
}

// Drop removes the whole state directory.
func (s *Store) Drop() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return zerr.Wrap(err, "failed to remove state directory")
	}
	return nil
}
