package disc

import (
	"encoding/binary"
	"fmt"

	"github.com/disctools/go-wiidisc/internal/interfaces"
	"github.com/disctools/go-wiidisc/internal/types"
)

// VolumeGroup is one entry of the volume group table: how many partitions
// the group holds and where its partition entry array lives.
type VolumeGroup struct {
	// PartitionCount is the number of partition entries in the group.
	PartitionCount uint32

	// TableOffset is the physical byte offset of the group's partition
	// entry array, already scaled from the on-disc >>2 representation.
	TableOffset int64
}

// partitionTableReader implements the PartitionTableReader interface over
// the assembled partition entries.
type partitionTableReader struct {
	entries []types.PartitionTableEntry
}

// Ensure partitionTableReader implements the PartitionTableReader interface
var _ interfaces.PartitionTableReader = (*partitionTableReader)(nil)

// ParseVolumeGroups decodes the fixed volume group table. data must hold
// the VolumeGroupCount entries read from VolumeGroupTableOffset.
func ParseVolumeGroups(data []byte) ([types.VolumeGroupCount]VolumeGroup, error) {
	var groups [types.VolumeGroupCount]VolumeGroup

	need := types.VolumeGroupCount * types.VolumeGroupEntrySize
	if len(data) < need {
		return groups, fmt.Errorf("insufficient data for volume group table: need %d bytes, got %d",
			need, len(data))
	}

	for i := 0; i < types.VolumeGroupCount; i++ {
		off := i * types.VolumeGroupEntrySize
		groups[i].PartitionCount = binary.BigEndian.Uint32(data[off:])
		groups[i].TableOffset = int64(binary.BigEndian.Uint32(data[off+4:])) << types.OffsetShift
	}

	return groups, nil
}

// ParsePartitionEntries decodes one group's partition entry array.
func ParsePartitionEntries(data []byte, count uint32) ([]types.PartitionTableEntry, error) {
	need := int(count) * types.PartitionTableEntrySize
	if len(data) < need {
		return nil, fmt.Errorf("insufficient data for partition entries: need %d bytes, got %d",
			need, len(data))
	}

	entries := make([]types.PartitionTableEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		off := int(i) * types.PartitionTableEntrySize
		entries = append(entries, types.PartitionTableEntry{
			Offset: int64(binary.BigEndian.Uint32(data[off:])) << types.OffsetShift,
			Type:   types.PartitionType(binary.BigEndian.Uint32(data[off+4:])),
		})
	}

	return entries, nil
}

// NewPartitionTableReader creates a PartitionTableReader from partition
// entries assembled across the volume groups.
func NewPartitionTableReader(entries []types.PartitionTableEntry) interfaces.PartitionTableReader {
	return &partitionTableReader{entries: entries}
}

// Partitions returns all partitions in table order.
func (ptr *partitionTableReader) Partitions() []types.PartitionTableEntry {
	out := make([]types.PartitionTableEntry, len(ptr.entries))
	copy(out, ptr.entries)
	return out
}

// PartitionCount returns the total number of partitions.
func (ptr *partitionTableReader) PartitionCount() int {
	return len(ptr.entries)
}
