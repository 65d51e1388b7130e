package domain

// Fingerprint is a fixed-width digest summarizing the content of all files
// resolved by a target's input paths. It is opaque outside the hasher: the
// scheduler only ever compares fingerprints for equality.
type Fingerprint string

// AlwaysStale is the sentinel fingerprint for targets that declare no input
// paths. Such targets are rebuilt on every scheduling decision and their
// fingerprint is never persisted.
const AlwaysStale Fingerprint = "ALWAYS_STALE"

// IsZero reports whether the fingerprint is empty (e.g. a store miss).
func (f Fingerprint) IsZero() bool {
	return f == ""
}
