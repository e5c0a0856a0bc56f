package types

// Sector geometry of the encrypted partition data area. Every partition's
// data region is an array of fixed-size physical sectors; in the standard
// layout only part of each sector is usable payload.
const (
	// SectorSize is the size of one physical sector.
	SectorSize = 0x8000

	// SectorPayloadSize is the decrypted payload carried by one sector in
	// the standard split layout.
	SectorPayloadSize = 0x7C00

	// SectorPayloadOffset is where the payload starts within a sector; the
	// bytes before it hold the H0/H1/H2 hash tree for the sector.
	SectorPayloadOffset = 0x400

	// SectorIVOffset is where the 16-byte AES-CBC IV for the sector's
	// payload is embedded, inside the hash area.
	SectorIVOffset = 0x3D0
)

// Ticket layout.
const (
	// TicketSize is the size of a v0 ticket.
	TicketSize = 0x2A4

	// TicketIssuerOffset / TicketIssuerLength bound the signature issuer.
	TicketIssuerOffset = 0x140
	TicketIssuerLength = 0x40

	// TicketTitleKeyOffset is where the encrypted title key is stored.
	TicketTitleKeyOffset = 0x1BF

	// TicketTitleIDOffset is where the 8-byte title ID is stored. The title
	// ID doubles as IV material for title key decryption.
	TicketTitleIDOffset = 0x1DC

	// TicketCommonKeyIndexOffset selects which common key encrypts the
	// title key: 0 = retail, 1 = Korean, 2 = vWii.
	TicketCommonKeyIndexOffset = 0x1F1
)

// Ticket signature issuers. The certificate chain distinguishes retail
// discs from debug (RVT) discs.
const (
	TicketIssuerRetail = "Root-CA00000001-XS00000003"
	TicketIssuerDebug  = "Root-CA00000002-XS00000006"
)

// Partition header layout, relative to the start of the partition. The
// ticket comes first, followed by the offsets of the TMD, certificate
// chain, H3 table, and the encrypted data area. All offset/size fields
// except the TMD and certificate chain sizes are stored >> 2.
const (
	PartitionTMDSizeOffset    = 0x2A4
	PartitionTMDOffsetOffset  = 0x2A8
	PartitionCertSizeOffset   = 0x2AC
	PartitionCertOffsetOffset = 0x2B0
	PartitionH3OffsetOffset   = 0x2B4
	PartitionDataOffsetOffset = 0x2B8
	PartitionDataSizeOffset   = 0x2BC

	// PartitionHeaderSize is the size of the fixed header structures that
	// precede the data area. dataOffset below this is invalid.
	PartitionHeaderSize = 0x2C0

	// H3TableSize is the fixed size of the H3 hash table.
	H3TableSize = 0x18000
)

// TMD header layout, relative to the start of the TMD.
const (
	TMDHeaderSize = 0x1E4

	TMDIssuerOffset       = 0x140
	TMDVersionOffset      = 0x180
	TMDIOSTitleIDOffset   = 0x184
	TMDTitleIDOffset      = 0x18C
	TMDTitleTypeOffset    = 0x194
	TMDGroupIDOffset      = 0x198
	TMDRegionOffset       = 0x19C
	TMDTitleVersionOffset = 0x1DC
	TMDContentCountOffset = 0x1DE
	TMDBootIndexOffset    = 0x1E0
)

// Ticket is the decoded portion of a partition's ticket. Only the fields
// the reader consumes are kept; the signature itself is not verified.
type Ticket struct {
	// SignatureType is the signature algorithm identifier (0x10001 for
	// RSA-2048 on retail discs).
	SignatureType uint32

	// Issuer is the signature issuer certificate chain, NUL-trimmed.
	Issuer string

	// EncTitleKey is the title key, encrypted with the selected common key.
	EncTitleKey [16]byte

	// TitleID is the 8-byte title identifier.
	TitleID [8]byte

	// CommonKeyIndex selects the common key variant.
	CommonKeyIndex uint8
}

// TMDHeader is the decoded fixed portion of a partition's title metadata.
// The TMD is stored in plaintext; nothing here requires decryption.
type TMDHeader struct {
	SignatureType uint32
	Issuer        string
	Version       uint8

	// IOSTitleID is the title ID of the IOS this title runs under.
	IOSTitleID uint64

	TitleID      uint64
	TitleType    uint32
	GroupID      uint16
	Region       uint16
	TitleVersion uint16
	ContentCount uint16
	BootIndex    uint16
}

// PartitionHeader is the decoded partition header: the ticket plus the
// layout of the structures that follow it. Offsets are relative to the
// partition start and already scaled to bytes.
type PartitionHeader struct {
	Ticket Ticket

	TMDSize    int64
	TMDOffset  int64
	CertSize   int64
	CertOffset int64
	H3Offset   int64

	// DataOffset / DataSize bound the encrypted data area. DataSize may be
	// zero in some dumps; see PartitionStream's size fallback.
	DataOffset int64
	DataSize   int64
}
