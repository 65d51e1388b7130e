package ports

import "go.trai.ch/ward/internal/core/domain"

// Hasher defines the interface for computing input fingerprints.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Fingerprint computes the digest of the target's declared input paths,
	// resolved relative to dir. Missing inputs contribute a marker to the
	// digest rather than causing an error.
	Fingerprint(target *domain.Target, dir string) (domain.Fingerprint, error)
}
