package fs

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/ward/internal/core/domain"
	"go.trai.ch/ward/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// recordSep delimits records in the digest stream so that path and content
// boundaries cannot alias each other.
const recordSep = byte(0)

// missingMarker is folded into the digest for a declared input path that
// does not exist. A missing input is not an error: the target is simply
// stale until the path appears.
const missingMarker = "missing"

// Hasher computes input fingerprints as a SHA-256 digest over the declared
// input paths of a target.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// Fingerprint computes the digest of the target's declared input paths,
// resolved relative to dir.
//
// The digest folds, per input path in declared order: the path spec itself,
// then either a missing marker, the file record, or one record per regular
// file found by a lexicographic directory walk. The result is deterministic
// over identical file content and layout regardless of platform walk order.
func (h *Hasher) Fingerprint(target *domain.Target, dir string) (domain.Fingerprint, error) {
	if !target.HasInputs() {
		return domain.AlwaysStale, nil
	}

	digest := sha256.New()

	for _, input := range target.InputPaths {
		spec := input.String()
		_, _ = digest.Write([]byte(spec))
		_, _ = digest.Write([]byte{recordSep})

		abs := spec
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(dir, spec)
		}

		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				_, _ = digest.Write([]byte(missingMarker))
				_, _ = digest.Write([]byte{recordSep})
				continue
			}
			return "", zerr.With(zerr.Wrap(err, "failed to stat input path"), "path", abs)
		}

		if info.IsDir() {
			err = h.walker.Walk(abs, func(rel, fileAbs string) error {
				return hashFile(digest, rel, fileAbs)
			})
		} else {
			err = hashFile(digest, spec, abs)
		}
		if err != nil {
			return "", err
		}
	}

	return domain.Fingerprint(fmt.Sprintf("%x", digest.Sum(nil))), nil
}

// hashFile folds one file record into the digest: relative path, content
// length, content bytes.
func hashFile(digest hash.Hash, rel, abs string) error {
	f, err := os.Open(abs) //nolint:gosec // path comes from declared inputs
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open input file"), "path", abs)
	}
	defer f.Close() //nolint:errcheck // best effort close in defer

	info, err := f.Stat()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat input file"), "path", abs)
	}

	_, _ = digest.Write([]byte(rel))
	_, _ = digest.Write([]byte{recordSep})
	if err := binary.Write(digest, binary.LittleEndian, uint64(info.Size())); err != nil {
		return zerr.Wrap(err, "failed to write length to digest")
	}
	if _, err := io.Copy(digest, f); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to hash input file"), "path", abs)
	}
	_, _ = digest.Write([]byte{recordSep})
	return nil
}
