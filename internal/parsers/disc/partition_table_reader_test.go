package disc

import (
	"encoding/binary"
	"testing"

	"github.com/disctools/go-wiidisc/internal/types"
)

func TestParseVolumeGroups(t *testing.T) {
	data := make([]byte, types.VolumeGroupCount*types.VolumeGroupEntrySize)

	// Group 0: 2 partitions, entry array at 0x40020 (stored >> 2).
	binary.BigEndian.PutUint32(data[0:], 2)
	binary.BigEndian.PutUint32(data[4:], 0x40020>>types.OffsetShift)
	// Group 1: 1 partition at 0x40100.
	binary.BigEndian.PutUint32(data[8:], 1)
	binary.BigEndian.PutUint32(data[12:], 0x40100>>types.OffsetShift)

	groups, err := ParseVolumeGroups(data)
	if err != nil {
		t.Fatalf("ParseVolumeGroups: %v", err)
	}

	if groups[0].PartitionCount != 2 || groups[0].TableOffset != 0x40020 {
		t.Errorf("group 0 = {%d, %#x}, want {2, 0x40020}",
			groups[0].PartitionCount, groups[0].TableOffset)
	}
	if groups[1].PartitionCount != 1 || groups[1].TableOffset != 0x40100 {
		t.Errorf("group 1 = {%d, %#x}, want {1, 0x40100}",
			groups[1].PartitionCount, groups[1].TableOffset)
	}
	if groups[2].PartitionCount != 0 || groups[3].PartitionCount != 0 {
		t.Error("empty groups must decode as zero partitions")
	}
}

func TestParseVolumeGroupsShortData(t *testing.T) {
	if _, err := ParseVolumeGroups(make([]byte, 16)); err == nil {
		t.Error("expected error for truncated volume group table")
	}
}

func TestParsePartitionEntries(t *testing.T) {
	data := make([]byte, 2*types.PartitionTableEntrySize)

	// Update partition at 0x50000, data partition at 0xF800000.
	binary.BigEndian.PutUint32(data[0:], 0x50000>>types.OffsetShift)
	binary.BigEndian.PutUint32(data[4:], uint32(types.PartitionTypeUpdate))
	binary.BigEndian.PutUint32(data[8:], 0xF800000>>types.OffsetShift)
	binary.BigEndian.PutUint32(data[12:], uint32(types.PartitionTypeData))

	entries, err := ParsePartitionEntries(data, 2)
	if err != nil {
		t.Fatalf("ParsePartitionEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	if entries[0].Offset != 0x50000 || entries[0].Type != types.PartitionTypeUpdate {
		t.Errorf("entry 0 = {%#x, %v}, want {0x50000, update}", entries[0].Offset, entries[0].Type)
	}
	if entries[1].Offset != 0xF800000 || entries[1].Type != types.PartitionTypeData {
		t.Errorf("entry 1 = {%#x, %v}, want {0xF800000, data}", entries[1].Offset, entries[1].Type)
	}
}

func TestParsePartitionEntriesShortData(t *testing.T) {
	if _, err := ParsePartitionEntries(make([]byte, 8), 2); err == nil {
		t.Error("expected error for truncated entry array")
	}
}

func TestPartitionTableReader(t *testing.T) {
	entries := []types.PartitionTableEntry{
		{Offset: 0x50000, Type: types.PartitionTypeUpdate},
		{Offset: 0xF800000, Type: types.PartitionTypeData},
	}

	reader := NewPartitionTableReader(entries)

	if got := reader.PartitionCount(); got != 2 {
		t.Errorf("PartitionCount() = %d, want 2", got)
	}

	// The returned slice is a copy; mutating it must not affect the reader.
	out := reader.Partitions()
	out[0].Offset = 0
	if reader.Partitions()[0].Offset != 0x50000 {
		t.Error("Partitions() does not return a defensive copy")
	}
}
