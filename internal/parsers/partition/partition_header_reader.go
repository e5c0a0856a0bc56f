// Package partition parses the per-partition header structures of a Wii
// disc: the ticket, the layout fields that follow it, and the TMD header.
package partition

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/disctools/go-wiidisc/internal/interfaces"
	"github.com/disctools/go-wiidisc/internal/types"
)

// partitionHeaderReader implements the PartitionHeaderReader interface over
// a decoded partition header.
type partitionHeaderReader struct {
	header *types.PartitionHeader
}

// Ensure partitionHeaderReader implements the PartitionHeaderReader interface
var _ interfaces.PartitionHeaderReader = (*partitionHeaderReader)(nil)

// NewPartitionHeaderReader creates a PartitionHeaderReader from the raw
// bytes at the start of a partition. data must cover the ticket and the
// layout fields that follow it (PartitionHeaderSize bytes).
func NewPartitionHeaderReader(data []byte) (interfaces.PartitionHeaderReader, error) {
	header, err := parsePartitionHeader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse partition header: %w", err)
	}

	reader := &partitionHeaderReader{header: header}
	if !reader.IsValid() {
		return nil, fmt.Errorf("invalid partition header: data offset %#x inside header structures",
			header.DataOffset)
	}

	return reader, nil
}

// parsePartitionHeader decodes the ticket and the layout fields.
func parsePartitionHeader(data []byte) (*types.PartitionHeader, error) {
	if len(data) < types.PartitionHeaderSize {
		return nil, fmt.Errorf("insufficient data for partition header: need %d bytes, got %d",
			types.PartitionHeaderSize, len(data))
	}

	header := &types.PartitionHeader{}

	ticket, err := parseTicket(data[:types.TicketSize])
	if err != nil {
		return nil, err
	}
	header.Ticket = *ticket

	header.TMDSize = int64(binary.BigEndian.Uint32(data[types.PartitionTMDSizeOffset:]))
	header.TMDOffset = int64(binary.BigEndian.Uint32(data[types.PartitionTMDOffsetOffset:])) << types.OffsetShift
	header.CertSize = int64(binary.BigEndian.Uint32(data[types.PartitionCertSizeOffset:]))
	header.CertOffset = int64(binary.BigEndian.Uint32(data[types.PartitionCertOffsetOffset:])) << types.OffsetShift
	header.H3Offset = int64(binary.BigEndian.Uint32(data[types.PartitionH3OffsetOffset:])) << types.OffsetShift
	header.DataOffset = int64(binary.BigEndian.Uint32(data[types.PartitionDataOffsetOffset:])) << types.OffsetShift
	header.DataSize = int64(binary.BigEndian.Uint32(data[types.PartitionDataSizeOffset:])) << types.OffsetShift

	return header, nil
}

// parseTicket decodes the fields of a v0 ticket that the reader consumes.
func parseTicket(data []byte) (*types.Ticket, error) {
	if len(data) < types.TicketSize {
		return nil, fmt.Errorf("insufficient data for ticket: need %d bytes, got %d",
			types.TicketSize, len(data))
	}

	ticket := &types.Ticket{}
	ticket.SignatureType = binary.BigEndian.Uint32(data[0:])
	ticket.Issuer = trimIssuer(data[types.TicketIssuerOffset : types.TicketIssuerOffset+types.TicketIssuerLength])
	copy(ticket.EncTitleKey[:], data[types.TicketTitleKeyOffset:])
	copy(ticket.TitleID[:], data[types.TicketTitleIDOffset:])
	ticket.CommonKeyIndex = data[types.TicketCommonKeyIndexOffset]

	return ticket, nil
}

// trimIssuer converts a fixed NUL-padded issuer field to a string.
func trimIssuer(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}

// Header returns the decoded header with byte-scaled offsets.
func (phr *partitionHeaderReader) Header() types.PartitionHeader {
	return *phr.header
}

// Ticket returns the decoded ticket.
func (phr *partitionHeaderReader) Ticket() types.Ticket {
	return phr.header.Ticket
}

// IsValid checks that the data area does not overlap the header structures
// that precede it. A zero data size is legal (some dump tools emit it and
// the stream layer substitutes the partition size); a data offset inside
// the header is not.
func (phr *partitionHeaderReader) IsValid() bool {
	return phr.header.DataOffset >= types.PartitionHeaderSize
}
