// Package types implements the on-disc data structures of the Nintendo Wii
// optical disc format. Offsets and field widths follow the retail disc
// layout; all multi-byte fields are big-endian.
package types

// Magic numbers found in the disc header and in the boot block at the start
// of every partition's decrypted data area.
const (
	// WiiMagic is stored at offset 0x18 of the disc header.
	WiiMagic uint32 = 0x5D1C9EA3

	// GameCubeMagic is stored at offset 0x1C of the disc header.
	GameCubeMagic uint32 = 0xC2339F3D
)

// Disc header layout.
const (
	// DiscHeaderSize is the number of bytes the disc header reader consumes.
	DiscHeaderSize = 0x62

	// DiscHeaderMagicOffset is the offset of WiiMagic within the disc header
	// and within the boot block of a partition's decrypted data area.
	DiscHeaderMagicOffset = 0x18

	// DiscTitleOffset and DiscTitleLength bound the game title field.
	DiscTitleOffset = 0x20
	DiscTitleLength = 64
)

// Partition table layout. The volume group table lives at a fixed offset
// from the start of the disc image.
const (
	// VolumeGroupTableOffset is the physical offset of the volume group table.
	VolumeGroupTableOffset = 0x40000

	// VolumeGroupCount is the fixed number of volume groups on a disc.
	VolumeGroupCount = 4

	// VolumeGroupEntrySize is the size of one volume group table entry
	// (partition count + scaled offset of the partition entry array).
	VolumeGroupEntrySize = 8

	// PartitionTableEntrySize is the size of one partition entry
	// (scaled partition offset + partition type).
	PartitionTableEntrySize = 8

	// OffsetShift converts the header's block-count fields to byte offsets.
	// Offsets and sizes in partition structures are stored >> 2.
	OffsetShift = 2
)

// PartitionType identifies the role of a partition on the disc.
type PartitionType uint32

const (
	// PartitionTypeData holds the game itself.
	PartitionTypeData PartitionType = 0

	// PartitionTypeUpdate holds a system update.
	PartitionTypeUpdate PartitionType = 1

	// PartitionTypeChannel holds an installable channel.
	PartitionTypeChannel PartitionType = 2
)

// String returns a short human-readable name for the partition type.
// Types above 2 encode a four-character game ID instead of a role.
func (t PartitionType) String() string {
	switch t {
	case PartitionTypeData:
		return "data"
	case PartitionTypeUpdate:
		return "update"
	case PartitionTypeChannel:
		return "channel"
	default:
		return "game-id"
	}
}

// DiscHeader is the plaintext header at offset 0 of a Wii disc image.
type DiscHeader struct {
	// GameID is the 6-byte identifier: disc ID, game code, region, maker.
	GameID [6]byte

	// DiscNumber distinguishes multi-disc releases.
	DiscNumber uint8

	// DiscVersion is the revision of this pressing.
	DiscVersion uint8

	// AudioStreaming and StreamBufSize are GameCube-only streaming fields,
	// always zero on Wii discs.
	AudioStreaming uint8
	StreamBufSize  uint8

	// MagicWii is WiiMagic on Wii discs, zero otherwise. (offset 0x18)
	MagicWii uint32

	// MagicGameCube is GameCubeMagic on GameCube discs. (offset 0x1C)
	MagicGameCube uint32

	// Title is the raw game title field. (offset 0x20, 64 bytes, cp1252)
	Title [DiscTitleLength]byte

	// NoHashVerification disables hash checks when nonzero. (offset 0x60)
	NoHashVerification uint8

	// NoDiscEncryption disables the encryption layer when nonzero;
	// set on RVT-H and debug pressings. (offset 0x61)
	NoDiscEncryption uint8
}

// PartitionTableEntry describes one partition listed in a volume group.
type PartitionTableEntry struct {
	// Offset is the physical byte offset of the partition, already scaled
	// from the on-disc >>2 representation.
	Offset int64

	// Type is the partition's role.
	Type PartitionType
}
