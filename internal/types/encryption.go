package types

// EncryptionKeyID identifies a symbolic key known to the key store. Disc
// partitions only ever select the common, Korean, or debug keys; the vWii
// and SD-card keys exist so callers can name every key the store holds.
type EncryptionKeyID int

const (
	// KeyUnknown means the ticket fields did not match any known key.
	KeyUnknown EncryptionKeyID = iota - 1

	// KeyCommon is the retail common key.
	KeyCommon

	// KeyKorean is the Korean common key.
	KeyKorean

	// KeyVWii is the Wii U virtual Wii common key. Never selected for a
	// disc partition.
	KeyVWii

	// KeyDebug is the RVT-R/RVT-H debug common key.
	KeyDebug

	// KeySDAES and KeySDIV are the SD card keys; not used by the disc
	// partition reader.
	KeySDAES
	KeySDIV

	// KeyNone means the partition data is stored unencrypted.
	KeyNone
)

// String returns the key store name for the key, or a placeholder for the
// pseudo-values.
func (k EncryptionKeyID) String() string {
	switch k {
	case KeyCommon:
		return "rvl-common"
	case KeyKorean:
		return "rvl-korean"
	case KeyVWii:
		return "wup-vwii-common"
	case KeyDebug:
		return "rvt-debug"
	case KeySDAES:
		return "rvl-sd-aes"
	case KeySDIV:
		return "rvl-sd-iv"
	case KeyNone:
		return "none"
	default:
		return "unknown"
	}
}

// CryptoMode fixes, at construction time, how a partition's data area is
// laid out and whether it is encrypted. The three values are the only legal
// combinations: a full-32K sector layout implies no encryption, so an
// "encrypted full" mode cannot be expressed.
type CryptoMode uint8

const (
	// ModeEncryptedStandard: retail layout, AES-CBC encrypted sectors with
	// a 0x400-byte hash/IV area and 0x7C00 bytes of payload.
	ModeEncryptedStandard CryptoMode = iota

	// ModeUnencryptedStandard: same split layout but the payload is stored
	// in plaintext (debug/NASOS "no-crypto" dumps).
	ModeUnencryptedStandard

	// ModeUnencryptedFull32K: every byte of the physical sector is payload
	// (RVT-H and certain NASOS dumps).
	ModeUnencryptedFull32K
)

// Encrypted reports whether sector payloads require decryption.
func (m CryptoMode) Encrypted() bool {
	return m == ModeEncryptedStandard
}

// PayloadSize returns the usable payload bytes per physical sector.
func (m CryptoMode) PayloadSize() int64 {
	if m == ModeUnencryptedFull32K {
		return SectorSize
	}
	return SectorPayloadSize
}

// PayloadOffset returns where the payload starts within a physical sector.
func (m CryptoMode) PayloadOffset() int {
	if m == ModeUnencryptedFull32K {
		return 0
	}
	return SectorPayloadOffset
}

// String returns a short name for the mode.
func (m CryptoMode) String() string {
	switch m {
	case ModeEncryptedStandard:
		return "encrypted"
	case ModeUnencryptedStandard:
		return "unencrypted"
	case ModeUnencryptedFull32K:
		return "unencrypted-32k"
	default:
		return "invalid"
	}
}

// DecryptionState is the outcome of a partition's one-time decryption
// initialization. It starts Unknown and moves exactly once to one of the
// terminal values; failures are sticky and never retried.
type DecryptionState int

const (
	// DecryptionUnknown: initialization has not run yet.
	DecryptionUnknown DecryptionState = iota

	// DecryptionOK: the title key was derived and verified.
	DecryptionOK

	// DecryptionKeyNotFound: the required key is absent from the store, or
	// the ticket fields matched no known key.
	DecryptionKeyNotFound

	// DecryptionKeyChecksumMismatch: the store holds the key but its
	// fingerprint check failed.
	DecryptionKeyChecksumMismatch

	// DecryptionKeyStoreError: the store itself failed (I/O).
	DecryptionKeyStoreError

	// DecryptionCipherInitError: the AES cipher rejected the key material.
	DecryptionCipherInitError

	// DecryptionKeyDecryptError: title key decryption failed.
	DecryptionKeyDecryptError

	// DecryptionWrongKey: decryption ran but sector 0 did not carry the
	// boot magic; almost always the wrong key variant for this disc.
	DecryptionWrongKey
)

// Ok reports whether reads of decrypted data may proceed.
func (s DecryptionState) Ok() bool {
	return s == DecryptionOK
}

// String returns a short name for the state, suitable for diagnostics.
func (s DecryptionState) String() string {
	switch s {
	case DecryptionUnknown:
		return "unknown"
	case DecryptionOK:
		return "ok"
	case DecryptionKeyNotFound:
		return "key-not-found"
	case DecryptionKeyChecksumMismatch:
		return "key-checksum-mismatch"
	case DecryptionKeyStoreError:
		return "key-store-error"
	case DecryptionCipherInitError:
		return "cipher-init-error"
	case DecryptionKeyDecryptError:
		return "key-decrypt-error"
	case DecryptionWrongKey:
		return "wrong-key"
	default:
		return "invalid"
	}
}
