// Package interfaces declares the contracts between the disc/partition
// readers and their collaborators: the raw byte stream under a disc image,
// the key store, and the parsed-header views consumed by presentation code.
package interfaces

import (
	"github.com/disctools/go-wiidisc/internal/types"
)

// DiscReader is the raw byte stream a disc image is read through. The
// partition reader borrows it: it never closes it, treats its seek position
// as transient, and always re-seeks before reading, so callers may interleave
// their own (non-concurrent) use of the same reader between calls.
type DiscReader interface {
	// Seek positions the stream at an absolute byte offset.
	Seek(offset int64) error

	// Read reads up to len(p) bytes into p.
	Read(p []byte) (int, error)

	// Size returns the total size of the stream in bytes.
	Size() int64

	// IsOpen reports whether the stream is still usable.
	IsOpen() bool
}

// PartitionStream is a contiguous, decrypted logical address space over one
// encrypted partition. Instances are not safe for concurrent use.
type PartitionStream interface {
	// Seek positions the logical cursor. Negative positions are an error;
	// positions at or past the end clamp to the end of the stream.
	Seek(pos int64) error

	// Tell returns the current logical cursor.
	Tell() (int64, error)

	// Read copies decrypted bytes at the cursor into p and advances the
	// cursor. A short count is returned only at end of stream or, together
	// with an error, when a sector mid-run fails.
	Read(p []byte) (int, error)

	// Ticket returns the partition's decoded ticket.
	Ticket() types.Ticket

	// TMDHeader returns the partition's decoded title metadata header.
	TMDHeader() types.TMDHeader

	// EncKey returns the key required to read the partition's data area;
	// KeyNone when the data is stored unencrypted.
	EncKey() types.EncryptionKeyID

	// EncKeyReal returns the key the data would be encrypted with if the
	// encryption layer were present. Differs from EncKey only on
	// no-crypto dumps.
	EncKeyReal() types.EncryptionKeyID

	// DecryptionState returns the memoized decryption initialization
	// outcome. DecryptionUnknown until the first read forces it.
	DecryptionState() types.DecryptionState
}
