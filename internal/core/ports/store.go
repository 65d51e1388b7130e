package ports

import "go.trai.ch/ward/internal/core/domain"

// FingerprintStore persists the last fingerprint associated with a
// successful build, one record per target.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type FingerprintStore interface {
	// Load returns the recorded fingerprint for a target.
	// A miss is reported as a zero fingerprint with a nil error.
	Load(target string) (domain.Fingerprint, error)

	// Save records the fingerprint for a target. The write is atomic.
	Save(target string, fp domain.Fingerprint) error

	// Clear removes the recorded fingerprint for a target, if any.
	Clear(target string) error
}
