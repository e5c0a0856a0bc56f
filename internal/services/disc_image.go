package services

import (
	"fmt"
	"io"
	"sort"

	"github.com/disctools/go-wiidisc/internal/interfaces"
	"github.com/disctools/go-wiidisc/internal/parsers/disc"
	"github.com/disctools/go-wiidisc/internal/types"
)

// DiscImage provides disc-level access to a Wii image: the plaintext
// header, the partition tables, and partition streams opened on demand.
type DiscImage struct {
	reader     interfaces.DiscReader
	header     interfaces.DiscHeaderReader
	partitions []types.PartitionTableEntry
}

// NewDiscImage reads the disc header and the volume group tables. The
// reader is borrowed; the caller keeps ownership and must keep it open for
// the image's lifetime.
func NewDiscImage(reader interfaces.DiscReader) (*DiscImage, error) {
	if reader == nil || !reader.IsOpen() {
		return nil, fmt.Errorf("disc reader is not open")
	}

	di := &DiscImage{reader: reader}

	headerData := make([]byte, types.DiscHeaderSize)
	if err := di.readAt(0, headerData); err != nil {
		return nil, fmt.Errorf("failed to read disc header: %w", err)
	}

	header, err := disc.NewDiscHeaderReader(headerData)
	if err != nil {
		return nil, err
	}
	if !header.IsWii() {
		return nil, fmt.Errorf("not a Wii disc image (magic missing)")
	}
	di.header = header

	if err := di.loadPartitionTables(); err != nil {
		return nil, err
	}

	return di, nil
}

// loadPartitionTables reads the volume group table and every group's
// partition entry array.
func (di *DiscImage) loadPartitionTables() error {
	groupData := make([]byte, types.VolumeGroupCount*types.VolumeGroupEntrySize)
	if err := di.readAt(types.VolumeGroupTableOffset, groupData); err != nil {
		return fmt.Errorf("failed to read volume group table: %w", err)
	}

	groups, err := disc.ParseVolumeGroups(groupData)
	if err != nil {
		return err
	}

	for _, group := range groups {
		if group.PartitionCount == 0 {
			continue
		}

		entryData := make([]byte, int(group.PartitionCount)*types.PartitionTableEntrySize)
		if err := di.readAt(group.TableOffset, entryData); err != nil {
			return fmt.Errorf("failed to read partition entries: %w", err)
		}

		entries, err := disc.ParsePartitionEntries(entryData, group.PartitionCount)
		if err != nil {
			return err
		}
		di.partitions = append(di.partitions, entries...)
	}

	return nil
}

// Header returns the decoded disc header view.
func (di *DiscImage) Header() interfaces.DiscHeaderReader {
	return di.header
}

// PartitionTable returns a reader over the discovered partitions.
func (di *DiscImage) PartitionTable() interfaces.PartitionTableReader {
	return disc.NewPartitionTableReader(di.partitions)
}

// PartitionSize estimates a partition's total size as the distance to the
// next partition on disc, or to the end of the image for the last one.
// Only used as the data-size fallback for dumps whose headers declare zero.
func (di *DiscImage) PartitionSize(index int) (int64, error) {
	if index < 0 || index >= len(di.partitions) {
		return 0, fmt.Errorf("partition index %d out of range", index)
	}

	start := di.partitions[index].Offset
	end := di.reader.Size()

	offsets := make([]int64, 0, len(di.partitions))
	for _, entry := range di.partitions {
		offsets = append(offsets, entry.Offset)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	for _, off := range offsets {
		if off > start && off < end {
			end = off
			break
		}
	}

	return end - start, nil
}

// OpenPartition opens a stream over one partition, picking the crypto mode
// from the disc header's no-encryption flag.
func (di *DiscImage) OpenPartition(index int, store interfaces.KeyStore) (*PartitionStream, error) {
	mode := types.ModeEncryptedStandard
	if di.header.Unencrypted() {
		mode = types.ModeUnencryptedStandard
	}
	return di.OpenPartitionWithMode(index, store, mode)
}

// OpenPartitionWithMode opens a stream over one partition with an explicit
// crypto mode, for RVT-H and full-32K dumps the header cannot identify.
func (di *DiscImage) OpenPartitionWithMode(index int, store interfaces.KeyStore, mode types.CryptoMode) (*PartitionStream, error) {
	if index < 0 || index >= len(di.partitions) {
		return nil, fmt.Errorf("partition index %d out of range", index)
	}

	size, err := di.PartitionSize(index)
	if err != nil {
		return nil, err
	}

	return NewPartitionStream(di.reader, PartitionStreamConfig{
		PartitionOffset: di.partitions[index].Offset,
		PartitionSize:   size,
		Mode:            mode,
		KeyStore:        store,
	})
}

// readAt seeks the raw reader and fills buf completely.
func (di *DiscImage) readAt(offset int64, buf []byte) error {
	if err := di.reader.Seek(offset); err != nil {
		return err
	}
	total := 0
	for total < len(buf) {
		n, err := di.reader.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF && total == len(buf) {
				break
			}
			return err
		}
		if n == 0 {
			return io.ErrUnexpectedEOF
		}
	}
	return nil
}
