package partition

import (
	"encoding/binary"
	"fmt"

	"github.com/disctools/go-wiidisc/internal/interfaces"
	"github.com/disctools/go-wiidisc/internal/types"
)

// tmdHeaderReader implements the TMDHeaderReader interface over a decoded
// TMD header.
type tmdHeaderReader struct {
	header *types.TMDHeader
}

// Ensure tmdHeaderReader implements the TMDHeaderReader interface
var _ interfaces.TMDHeaderReader = (*tmdHeaderReader)(nil)

// NewTMDHeaderReader creates a TMDHeaderReader from the raw bytes at the
// start of a partition's TMD. The TMD is plaintext; its signature is not
// verified here.
func NewTMDHeaderReader(data []byte) (interfaces.TMDHeaderReader, error) {
	header, err := parseTMDHeader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TMD header: %w", err)
	}
	return &tmdHeaderReader{header: header}, nil
}

// parseTMDHeader decodes the fixed TMD header fields.
func parseTMDHeader(data []byte) (*types.TMDHeader, error) {
	if len(data) < types.TMDHeaderSize {
		return nil, fmt.Errorf("insufficient data for TMD header: need %d bytes, got %d",
			types.TMDHeaderSize, len(data))
	}

	header := &types.TMDHeader{}
	header.SignatureType = binary.BigEndian.Uint32(data[0:])
	header.Issuer = trimIssuer(data[types.TMDIssuerOffset : types.TMDIssuerOffset+types.TicketIssuerLength])
	header.Version = data[types.TMDVersionOffset]
	header.IOSTitleID = binary.BigEndian.Uint64(data[types.TMDIOSTitleIDOffset:])
	header.TitleID = binary.BigEndian.Uint64(data[types.TMDTitleIDOffset:])
	header.TitleType = binary.BigEndian.Uint32(data[types.TMDTitleTypeOffset:])
	header.GroupID = binary.BigEndian.Uint16(data[types.TMDGroupIDOffset:])
	header.Region = binary.BigEndian.Uint16(data[types.TMDRegionOffset:])
	header.TitleVersion = binary.BigEndian.Uint16(data[types.TMDTitleVersionOffset:])
	header.ContentCount = binary.BigEndian.Uint16(data[types.TMDContentCountOffset:])
	header.BootIndex = binary.BigEndian.Uint16(data[types.TMDBootIndexOffset:])

	return header, nil
}

// Header returns the decoded TMD header.
func (thr *tmdHeaderReader) Header() types.TMDHeader {
	return *thr.header
}

// TitleID returns the 64-bit title identifier.
func (thr *tmdHeaderReader) TitleID() uint64 {
	return thr.header.TitleID
}

// TitleVersion returns the title version.
func (thr *tmdHeaderReader) TitleVersion() uint16 {
	return thr.header.TitleVersion
}
