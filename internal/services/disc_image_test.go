package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disctools/go-wiidisc/internal/types"
)

func TestNewDiscImage(t *testing.T) {
	img, _ := buildTestImage(t, imageOptions{mode: types.ModeUnencryptedStandard})

	image, err := NewDiscImage(newMemoryDevice(img))
	require.NoError(t, err)

	header := image.Header()
	assert.Equal(t, "RSPE01", header.GameID())
	assert.Equal(t, "STREAM TEST DISC", header.Title())
	assert.True(t, header.IsWii())
	assert.True(t, header.Unencrypted())

	table := image.PartitionTable()
	require.Equal(t, 1, table.PartitionCount())

	entry := table.Partitions()[0]
	assert.Equal(t, int64(imgPartitionOffset), entry.Offset)
	assert.Equal(t, types.PartitionTypeData, entry.Type)

	size, err := image.PartitionSize(0)
	require.NoError(t, err)
	assert.Equal(t, int64(len(img))-imgPartitionOffset, size)
}

func TestNewDiscImageRejectsNonWii(t *testing.T) {
	_, err := NewDiscImage(newMemoryDevice(make([]byte, 0x50000)))
	assert.Error(t, err)
}

func TestDiscImageOpenPartition(t *testing.T) {
	img, logical := buildTestImage(t, imageOptions{mode: types.ModeUnencryptedStandard})
	image, err := NewDiscImage(newMemoryDevice(img))
	require.NoError(t, err)

	// The no-crypto header flag selects the unencrypted split layout, so no
	// key store is needed.
	stream, err := image.OpenPartition(0, nil)
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := stream.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 64, n)
	assert.Equal(t, logical[:64], buf)
}

func TestDiscImageOpenPartitionWithMode(t *testing.T) {
	img, logical := buildTestImage(t, imageOptions{mode: types.ModeUnencryptedFull32K})
	image, err := NewDiscImage(newMemoryDevice(img))
	require.NoError(t, err)

	stream, err := image.OpenPartitionWithMode(0, nil, types.ModeUnencryptedFull32K)
	require.NoError(t, err)
	assert.Equal(t, int64(imgSectorCount*types.SectorSize), stream.DataSize())

	buf := make([]byte, 64)
	_, err = stream.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, logical[:64], buf)
}

func TestDiscImageOpenPartitionOutOfRange(t *testing.T) {
	img, _ := buildTestImage(t, imageOptions{mode: types.ModeUnencryptedStandard})
	image, err := NewDiscImage(newMemoryDevice(img))
	require.NoError(t, err)

	_, err = image.OpenPartition(1, nil)
	assert.Error(t, err)
	_, err = image.OpenPartition(-1, nil)
	assert.Error(t, err)
}
