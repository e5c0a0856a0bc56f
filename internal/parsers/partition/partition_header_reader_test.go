package partition

import (
	"encoding/binary"
	"testing"

	"github.com/disctools/go-wiidisc/internal/types"
)

// buildPartitionHeader assembles a partition header with the given layout
// fields already in byte units; the builder scales them to the on-disc
// representation.
func buildPartitionHeader(issuer string, commonKeyIndex uint8, dataOffset, dataSize int64) []byte {
	data := make([]byte, types.PartitionHeaderSize)

	binary.BigEndian.PutUint32(data[0:], 0x10001) // RSA-2048
	copy(data[types.TicketIssuerOffset:], issuer)
	for i := 0; i < 16; i++ {
		data[types.TicketTitleKeyOffset+i] = byte(0xC0 + i)
	}
	copy(data[types.TicketTitleIDOffset:], []byte{0x00, 0x01, 0x00, 0x00, 'R', 'S', 'P', 'E'})
	data[types.TicketCommonKeyIndexOffset] = commonKeyIndex

	binary.BigEndian.PutUint32(data[types.PartitionTMDSizeOffset:], types.TMDHeaderSize)
	binary.BigEndian.PutUint32(data[types.PartitionTMDOffsetOffset:], uint32(types.PartitionHeaderSize>>types.OffsetShift))
	binary.BigEndian.PutUint32(data[types.PartitionCertSizeOffset:], 0xA00)
	binary.BigEndian.PutUint32(data[types.PartitionCertOffsetOffset:], uint32(0x8000>>types.OffsetShift))
	binary.BigEndian.PutUint32(data[types.PartitionH3OffsetOffset:], uint32(0x8000+0xA00)>>types.OffsetShift)
	binary.BigEndian.PutUint32(data[types.PartitionDataOffsetOffset:], uint32(dataOffset>>types.OffsetShift))
	binary.BigEndian.PutUint32(data[types.PartitionDataSizeOffset:], uint32(dataSize>>types.OffsetShift))

	return data
}

func TestNewPartitionHeaderReader(t *testing.T) {
	data := buildPartitionHeader(types.TicketIssuerRetail, 1, 0x20000, 4*types.SectorSize)

	reader, err := NewPartitionHeaderReader(data)
	if err != nil {
		t.Fatalf("NewPartitionHeaderReader: %v", err)
	}

	header := reader.Header()
	if header.TMDSize != types.TMDHeaderSize {
		t.Errorf("TMDSize = %#x, want %#x", header.TMDSize, types.TMDHeaderSize)
	}
	if header.TMDOffset != types.PartitionHeaderSize {
		t.Errorf("TMDOffset = %#x, want %#x", header.TMDOffset, types.PartitionHeaderSize)
	}
	if header.CertSize != 0xA00 {
		t.Errorf("CertSize = %#x, want 0xA00", header.CertSize)
	}
	if header.CertOffset != 0x8000 {
		t.Errorf("CertOffset = %#x, want 0x8000", header.CertOffset)
	}
	if header.H3Offset != 0x8000+0xA00 {
		t.Errorf("H3Offset = %#x, want %#x", header.H3Offset, 0x8000+0xA00)
	}
	if header.DataOffset != 0x20000 {
		t.Errorf("DataOffset = %#x, want 0x20000", header.DataOffset)
	}
	if header.DataSize != 4*types.SectorSize {
		t.Errorf("DataSize = %#x, want %#x", header.DataSize, 4*types.SectorSize)
	}

	ticket := reader.Ticket()
	if ticket.SignatureType != 0x10001 {
		t.Errorf("SignatureType = %#x, want 0x10001", ticket.SignatureType)
	}
	if ticket.Issuer != types.TicketIssuerRetail {
		t.Errorf("Issuer = %q, want %q", ticket.Issuer, types.TicketIssuerRetail)
	}
	if ticket.CommonKeyIndex != 1 {
		t.Errorf("CommonKeyIndex = %d, want 1", ticket.CommonKeyIndex)
	}
	if ticket.TitleID != [8]byte{0x00, 0x01, 0x00, 0x00, 'R', 'S', 'P', 'E'} {
		t.Errorf("TitleID = %x", ticket.TitleID)
	}
	for i, b := range ticket.EncTitleKey {
		if b != byte(0xC0+i) {
			t.Fatalf("EncTitleKey[%d] = %#x, want %#x", i, b, byte(0xC0+i))
		}
	}
}

func TestNewPartitionHeaderReaderZeroDataSize(t *testing.T) {
	// A zero data size is legal; the stream layer substitutes a fallback.
	data := buildPartitionHeader(types.TicketIssuerRetail, 0, 0x20000, 0)

	reader, err := NewPartitionHeaderReader(data)
	if err != nil {
		t.Fatalf("NewPartitionHeaderReader: %v", err)
	}
	if got := reader.Header().DataSize; got != 0 {
		t.Errorf("DataSize = %#x, want 0", got)
	}
}

func TestNewPartitionHeaderReaderRejectsOverlappingData(t *testing.T) {
	// Data offset inside the header structures is invalid.
	data := buildPartitionHeader(types.TicketIssuerRetail, 0, 0x100, types.SectorSize)

	if _, err := NewPartitionHeaderReader(data); err == nil {
		t.Error("expected error for data offset inside the header")
	}
}

func TestNewPartitionHeaderReaderShortData(t *testing.T) {
	if _, err := NewPartitionHeaderReader(make([]byte, types.TicketSize)); err == nil {
		t.Error("expected error for truncated partition header")
	}
}
