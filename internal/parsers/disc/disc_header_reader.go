// Package disc parses the plaintext structures at the front of a Wii disc
// image: the disc header and the volume group / partition tables.
package disc

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/disctools/go-wiidisc/internal/interfaces"
	"github.com/disctools/go-wiidisc/internal/types"
)

// discHeaderReader implements the DiscHeaderReader interface over a decoded
// disc header.
type discHeaderReader struct {
	header *types.DiscHeader
}

// Ensure discHeaderReader implements the DiscHeaderReader interface
var _ interfaces.DiscHeaderReader = (*discHeaderReader)(nil)

// NewDiscHeaderReader creates a DiscHeaderReader from the raw bytes at the
// start of a disc image.
func NewDiscHeaderReader(data []byte) (interfaces.DiscHeaderReader, error) {
	header, err := parseDiscHeader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse disc header: %w", err)
	}
	return &discHeaderReader{header: header}, nil
}

// parseDiscHeader decodes the fixed disc header fields.
func parseDiscHeader(data []byte) (*types.DiscHeader, error) {
	if len(data) < types.DiscHeaderSize {
		return nil, fmt.Errorf("insufficient data for disc header: need %d bytes, got %d",
			types.DiscHeaderSize, len(data))
	}

	header := &types.DiscHeader{}
	copy(header.GameID[:], data[0:6])
	header.DiscNumber = data[6]
	header.DiscVersion = data[7]
	header.AudioStreaming = data[8]
	header.StreamBufSize = data[9]
	header.MagicWii = binary.BigEndian.Uint32(data[types.DiscHeaderMagicOffset:])
	header.MagicGameCube = binary.BigEndian.Uint32(data[0x1C:])
	copy(header.Title[:], data[types.DiscTitleOffset:types.DiscTitleOffset+types.DiscTitleLength])
	header.NoHashVerification = data[0x60]
	header.NoDiscEncryption = data[0x61]

	return header, nil
}

// GameID returns the 6-character game identifier.
func (dhr *discHeaderReader) GameID() string {
	return string(dhr.header.GameID[:])
}

// Title returns the game title decoded from cp1252 and trimmed of NUL
// padding. Decode errors fall back to the raw ASCII subset.
func (dhr *discHeaderReader) Title() string {
	raw := dhr.header.Title[:]
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		decoded = raw
	}
	return strings.TrimRight(string(decoded), "\x00 ")
}

// DiscNumber returns the disc number of a multi-disc release.
func (dhr *discHeaderReader) DiscNumber() uint8 {
	return dhr.header.DiscNumber
}

// DiscVersion returns the pressing revision.
func (dhr *discHeaderReader) DiscVersion() uint8 {
	return dhr.header.DiscVersion
}

// IsWii reports whether the Wii magic is present.
func (dhr *discHeaderReader) IsWii() bool {
	return dhr.header.MagicWii == types.WiiMagic
}

// IsGameCube reports whether the GameCube magic is present.
func (dhr *discHeaderReader) IsGameCube() bool {
	return dhr.header.MagicGameCube == types.GameCubeMagic
}

// Unencrypted reports whether the header flags the disc as storing
// partition data in plaintext.
func (dhr *discHeaderReader) Unencrypted() bool {
	return dhr.header.NoDiscEncryption != 0
}
