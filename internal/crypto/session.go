package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"

	"github.com/disctools/go-wiidisc/internal/interfaces"
	"github.com/disctools/go-wiidisc/internal/types"
)

// KeyProperties names a key in the store and carries the fingerprint the
// store must verify it against before handing it out.
type KeyProperties struct {
	Name        string
	Fingerprint [16]byte
}

// defaultKeyTable maps each selectable key to its store entry. The
// fingerprints are MD5 digests of the known-good key bytes; a store whose
// key fails this check reports a checksum mismatch rather than silently
// producing garbage plaintext.
var defaultKeyTable = map[types.EncryptionKeyID]KeyProperties{
	types.KeyCommon: {
		Name: "rvl-common",
		Fingerprint: [16]byte{
			0x19, 0xde, 0x7f, 0xf4, 0x57, 0xb5, 0xf9, 0x28,
			0x03, 0x4d, 0xe5, 0x3c, 0x9a, 0xf1, 0x6c, 0x42,
		},
	},
	types.KeyKorean: {
		Name: "rvl-korean",
		Fingerprint: [16]byte{
			0x8a, 0x1f, 0x05, 0xd2, 0xe0, 0x9b, 0x77, 0x53,
			0xc4, 0x26, 0x4e, 0xbb, 0x13, 0x68, 0xaf, 0x90,
		},
	},
	types.KeyVWii: {
		Name: "wup-vwii-common",
		Fingerprint: [16]byte{
			0x6e, 0x33, 0xc1, 0x08, 0x95, 0x4a, 0xde, 0x61,
			0x72, 0xf0, 0x2b, 0x84, 0x5d, 0xc7, 0x39, 0x1e,
		},
	},
	types.KeyDebug: {
		Name: "rvt-debug",
		Fingerprint: [16]byte{
			0x41, 0xe7, 0x58, 0x0c, 0x26, 0xd9, 0xba, 0x94,
			0x07, 0x63, 0xfa, 0x15, 0x88, 0x2e, 0xc5, 0x7a,
		},
	},
}

// DecryptionSession owns a partition's one-time decryption readiness. The
// state starts Unknown and becomes terminal exactly once; every failure is
// sticky, so a partition that cannot be decrypted never hits the key store
// again. The session only runs for encrypted partitions; plaintext modes
// never construct one.
type DecryptionSession struct {
	store interfaces.KeyStore
	table map[types.EncryptionKeyID]KeyProperties

	state      types.DecryptionState
	keyReady   bool
	titleKey   [16]byte
	sectorCiph *SectorCipher
}

// NewDecryptionSession creates a session against the given key store. A nil
// table selects the built-in key fingerprints; tests inject their own.
func NewDecryptionSession(store interfaces.KeyStore, table map[types.EncryptionKeyID]KeyProperties) *DecryptionSession {
	if table == nil {
		table = defaultKeyTable
	}
	return &DecryptionSession{
		store: store,
		table: table,
		state: types.DecryptionUnknown,
	}
}

// State returns the memoized decryption state. Side-effect free.
func (ds *DecryptionSession) State() types.DecryptionState {
	return ds.state
}

// SectorCipher returns the title key cipher. Only valid once EnsureKey has
// succeeded.
func (ds *DecryptionSession) SectorCipher() *SectorCipher {
	return ds.sectorCiph
}

// TitleKey returns the decrypted title key. Only valid once EnsureKey has
// succeeded.
func (ds *DecryptionSession) TitleKey() [16]byte {
	return ds.titleKey
}

// EnsureKey derives and verifies the title key cipher: it resolves the
// common key through the store, decrypts the ticket's title key with the
// title ID as IV material, and re-keys the cipher for per-sector use.
// Idempotent: once the key material is ready (or the session has failed)
// the store is never consulted again. A nil store fails as key-not-found.
// The caller still has to confirm the plaintext via VerifySector0 before
// reads may proceed.
func (ds *DecryptionSession) EnsureKey(encKey types.EncryptionKeyID, ticket types.Ticket) types.DecryptionState {
	if ds.state != types.DecryptionUnknown {
		return ds.state
	}
	if ds.keyReady {
		return ds.state
	}

	props, ok := ds.table[encKey]
	if !ok || ds.store == nil {
		ds.state = types.DecryptionKeyNotFound
		return ds.state
	}

	keyBytes, err := ds.store.GetAndVerify(props.Name, props.Fingerprint)
	if err != nil {
		ds.state = classifyStoreError(err)
		return ds.state
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil || len(keyBytes) != 16 {
		ds.state = types.DecryptionCipherInitError
		return ds.state
	}

	// IV: 8 bytes of big-endian title ID followed by 8 zero bytes.
	var iv [16]byte
	copy(iv[:8], ticket.TitleID[:])
	cipher.NewCBCDecrypter(block, iv[:]).CryptBlocks(ds.titleKey[:], ticket.EncTitleKey[:])

	sc, err := NewSectorCipher(ds.titleKey[:])
	if err != nil {
		ds.state = types.DecryptionKeyDecryptError
		return ds.state
	}

	ds.sectorCiph = sc
	ds.keyReady = true
	return ds.state
}

// VerifySector0 inspects the decrypted payload of physical sector 0 for
// the boot magic. A mismatch means the key was obtained and used but the
// plaintext is not a valid boot block, almost always the wrong key variant
// for this disc. Sets the terminal state.
func (ds *DecryptionSession) VerifySector0(payload []byte) types.DecryptionState {
	if ds.state != types.DecryptionUnknown {
		return ds.state
	}

	if len(payload) < types.DiscHeaderMagicOffset+4 {
		ds.state = types.DecryptionWrongKey
		return ds.state
	}

	magic := binary.BigEndian.Uint32(payload[types.DiscHeaderMagicOffset:])
	if magic != types.WiiMagic {
		ds.state = types.DecryptionWrongKey
	} else {
		ds.state = types.DecryptionOK
	}
	return ds.state
}

// classifyStoreError forwards the store's failure classification into the
// session state so diagnostics survive the boundary.
func classifyStoreError(err error) types.DecryptionState {
	switch {
	case errors.Is(err, interfaces.ErrKeyAbsent):
		return types.DecryptionKeyNotFound
	case errors.Is(err, interfaces.ErrKeyChecksumMismatch):
		return types.DecryptionKeyChecksumMismatch
	default:
		return types.DecryptionKeyStoreError
	}
}
