package domain

import "path/filepath"

const (
	// StateDirName is the name of the hidden state directory kept next to
	// the configuration file.
	StateDirName = ".ward"

	// WardFileName is the name of the project configuration file.
	WardFileName = "ward.yaml"

	// FingerprintFileExt is the extension of per-target fingerprint files.
	FingerprintFileExt = ".fingerprint"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// StatePath returns the state directory for a project rooted at dir.
func StatePath(dir string) string {
	return filepath.Join(dir, StateDirName)
}

// FingerprintPath returns the fingerprint file for a target in a project
// rooted at dir.
func FingerprintPath(dir, target string) string {
	return filepath.Join(StatePath(dir), target+FingerprintFileExt)
}
