package interfaces

import "errors"

// Key store verification failures. GetAndVerify wraps exactly one of these
// (or a plain I/O error) so callers can classify the failure without string
// matching; functionally every variant blocks decryption equally.
var (
	// ErrKeyAbsent: the store has no key under the requested name.
	ErrKeyAbsent = errors.New("key not present in store")

	// ErrKeyChecksumMismatch: the stored key's fingerprint does not match
	// the caller's expectation.
	ErrKeyChecksumMismatch = errors.New("key checksum mismatch")

	// ErrKeyStore: the store itself failed to load or read.
	ErrKeyStore = errors.New("key store error")
)

// KeyStore resolves symbolic key names to key bytes and verifies them
// against a caller-supplied fingerprint before handing them out.
type KeyStore interface {
	// GetAndVerify returns the key stored under name after checking its
	// 16-byte fingerprint. Failures wrap one of the sentinel errors above.
	GetAndVerify(name string, fingerprint [16]byte) ([]byte, error)
}
