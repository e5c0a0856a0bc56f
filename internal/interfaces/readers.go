package interfaces

import "github.com/disctools/go-wiidisc/internal/types"

// DiscHeaderReader exposes the decoded plaintext disc header.
type DiscHeaderReader interface {
	// GameID returns the 6-character game identifier.
	GameID() string

	// Title returns the game title, decoded from the header's 8-bit
	// encoding and trimmed.
	Title() string

	// DiscNumber returns the disc number of a multi-disc release.
	DiscNumber() uint8

	// DiscVersion returns the pressing revision.
	DiscVersion() uint8

	// IsWii reports whether the Wii magic is present.
	IsWii() bool

	// IsGameCube reports whether the GameCube magic is present.
	IsGameCube() bool

	// Unencrypted reports whether the header flags the disc as storing
	// partition data in plaintext.
	Unencrypted() bool
}

// PartitionTableReader exposes the partitions listed in the volume group
// table.
type PartitionTableReader interface {
	// Partitions returns all partitions across the four volume groups in
	// table order.
	Partitions() []types.PartitionTableEntry

	// PartitionCount returns the total number of partitions.
	PartitionCount() int
}

// PartitionHeaderReader exposes the decoded partition header.
type PartitionHeaderReader interface {
	// Header returns the decoded header with byte-scaled offsets.
	Header() types.PartitionHeader

	// Ticket returns the decoded ticket.
	Ticket() types.Ticket

	// IsValid reports whether the header's offsets are internally
	// consistent.
	IsValid() bool
}

// TMDHeaderReader exposes the decoded title metadata header.
type TMDHeaderReader interface {
	// Header returns the decoded TMD header.
	Header() types.TMDHeader

	// TitleID returns the 64-bit title identifier.
	TitleID() uint64

	// TitleVersion returns the title version.
	TitleVersion() uint16
}
