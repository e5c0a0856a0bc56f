package services

import (
	"fmt"
	"io"

	"github.com/disctools/go-wiidisc/internal/crypto"
	"github.com/disctools/go-wiidisc/internal/interfaces"
	"github.com/disctools/go-wiidisc/internal/parsers/partition"
	"github.com/disctools/go-wiidisc/internal/types"
)

// PartitionStreamConfig configures a partition stream over a raw disc
// reader. Mode is fixed for the stream's lifetime.
type PartitionStreamConfig struct {
	// PartitionOffset is the physical byte offset of the partition within
	// the disc image.
	PartitionOffset int64

	// PartitionSize is the caller-supplied total partition size. Used as a
	// fallback when the header declares a zero data size (seen in NASOS
	// and RVT-H dumps).
	PartitionSize int64

	// Mode selects the sector layout and encryption behavior.
	Mode types.CryptoMode

	// KeyStore resolves common keys. May be nil; encrypted streams then
	// expose their plaintext metadata but fail reads with a key-not-found
	// state.
	KeyStore interfaces.KeyStore

	// KeyTable overrides the built-in key name/fingerprint table. Nil
	// selects the defaults; tests inject synthetic keys here.
	KeyTable map[types.EncryptionKeyID]crypto.KeyProperties
}

// PartitionStream reads a partition's data area as a contiguous decrypted
// logical address space. It owns its sector cache and logical cursor and
// is not safe for concurrent use; the raw reader is borrowed from the
// caller and re-seeked before every physical read.
type PartitionStream struct {
	reader interfaces.DiscReader
	mode   types.CryptoMode

	partitionOffset int64
	dataOffset      int64
	dataSize        int64
	sizeFallback    bool

	header types.PartitionHeader
	tmd    types.TMDHeader

	encKey     types.EncryptionKeyID
	encKeyReal types.EncryptionKeyID

	// session is nil for unencrypted modes; state then holds the trivial
	// DecryptionOK fixed at construction.
	session *crypto.DecryptionSession
	state   types.DecryptionState

	pos int64

	// Direct-mapped, capacity-1 sector cache. cacheIndex is -1 when the
	// cache holds nothing; cacheBuf carries the decoded payload of the
	// cached sector. rawBuf is scratch for the physical read.
	cacheIndex int64
	cacheBuf   [types.SectorSize]byte
	rawBuf     [types.SectorSize]byte
}

// Ensure PartitionStream implements the PartitionStream interface
var _ interfaces.PartitionStream = (*PartitionStream)(nil)

// NewPartitionStream reads and validates the partition header, derives the
// key identities, and returns a stream positioned at logical offset 0. No
// decryption happens yet; the title key is derived lazily on first read.
func NewPartitionStream(reader interfaces.DiscReader, config PartitionStreamConfig) (*PartitionStream, error) {
	if reader == nil || !reader.IsOpen() {
		return nil, fmt.Errorf("disc reader is not open")
	}

	ps := &PartitionStream{
		reader:          reader,
		mode:            config.Mode,
		partitionOffset: config.PartitionOffset,
		cacheIndex:      -1,
	}

	headerData := make([]byte, types.PartitionHeaderSize)
	if err := ps.readPhysical(config.PartitionOffset, headerData); err != nil {
		return nil, fmt.Errorf("failed to read partition header: %w", err)
	}

	headerReader, err := partition.NewPartitionHeaderReader(headerData)
	if err != nil {
		return nil, err
	}
	ps.header = headerReader.Header()

	ps.dataOffset = ps.header.DataOffset
	ps.dataSize = ps.header.DataSize
	if ps.dataSize == 0 {
		// Some dump tools write a zero data size; fall back to the
		// caller-supplied partition size. Recorded so callers can tell.
		if config.PartitionSize <= ps.dataOffset {
			return nil, fmt.Errorf("partition header declares zero data size and no usable partition size was supplied")
		}
		ps.dataSize = config.PartitionSize - ps.dataOffset
		ps.sizeFallback = true
	}

	if ps.header.TMDOffset >= types.TicketSize && ps.header.TMDSize >= types.TMDHeaderSize {
		tmdData := make([]byte, types.TMDHeaderSize)
		if err := ps.readPhysical(config.PartitionOffset+ps.header.TMDOffset, tmdData); err != nil {
			return nil, fmt.Errorf("failed to read TMD header: %w", err)
		}
		tmdReader, err := partition.NewTMDHeaderReader(tmdData)
		if err != nil {
			return nil, err
		}
		ps.tmd = tmdReader.Header()
	}

	ps.encKey, ps.encKeyReal = crypto.SelectKey(
		ps.header.Ticket.Issuer, ps.header.Ticket.CommonKeyIndex, config.Mode)

	if config.Mode.Encrypted() {
		ps.session = crypto.NewDecryptionSession(config.KeyStore, config.KeyTable)
	} else {
		ps.state = types.DecryptionOK
	}

	return ps, nil
}

// Seek positions the logical cursor. Negative positions are an error;
// positions at or past the end clamp to the end of the stream, where reads
// legally return zero bytes.
func (ps *PartitionStream) Seek(pos int64) error {
	if !ps.reader.IsOpen() {
		return fmt.Errorf("disc reader is not open")
	}
	if pos < 0 {
		return fmt.Errorf("invalid seek position %d", pos)
	}
	if pos > ps.dataSize {
		pos = ps.dataSize
	}
	ps.pos = pos
	return nil
}

// Tell returns the current logical cursor.
func (ps *PartitionStream) Tell() (int64, error) {
	if !ps.reader.IsOpen() {
		return 0, fmt.Errorf("disc reader is not open")
	}
	return ps.pos, nil
}

// Read copies decrypted bytes at the cursor into p. The request is clamped
// to the end of the data area up front; end of stream reads return 0 with
// io.EOF. A mid-run sector failure stops the copy and reports the bytes
// already copied together with the error.
func (ps *PartitionStream) Read(p []byte) (int, error) {
	if !ps.reader.IsOpen() {
		return 0, fmt.Errorf("disc reader is not open")
	}
	if len(p) == 0 {
		return 0, nil
	}
	if ps.pos >= ps.dataSize {
		return 0, io.EOF
	}

	n := len(p)
	if remaining := ps.dataSize - ps.pos; int64(n) > remaining {
		n = int(remaining)
	}

	if ps.mode.Encrypted() {
		// Single enforcement point for decryption readiness.
		if err := ps.ensureReady(); err != nil {
			return 0, err
		}
	}

	payloadSize := ps.mode.PayloadSize()
	copied := 0

	// Leading partial sector.
	if inOff := ps.pos % payloadSize; inOff != 0 {
		buf, err := ps.fetchSector(ps.pos / payloadSize)
		if err != nil {
			return 0, err
		}
		c := copy(p[:n], buf[inOff:payloadSize])
		copied += c
		ps.pos += int64(c)
	}

	// Whole sectors.
	for n-copied >= int(payloadSize) {
		buf, err := ps.fetchSector(ps.pos / payloadSize)
		if err != nil {
			return copied, err
		}
		copy(p[copied:copied+int(payloadSize)], buf[:payloadSize])
		copied += int(payloadSize)
		ps.pos += payloadSize
	}

	// Trailing partial sector.
	if copied < n {
		buf, err := ps.fetchSector(ps.pos / payloadSize)
		if err != nil {
			return copied, err
		}
		c := copy(p[copied:n], buf[:payloadSize])
		copied += c
		ps.pos += int64(c)
	}

	return copied, nil
}

// ensureReady drives the one-time decryption initialization: key
// derivation through the session, then verification of sector 0 through
// the normal sector path, which leaves the cache warm for the first read.
// Terminal session failures surface as errors here and on every later
// read; a transient raw-stream failure during verification leaves the
// session undecided so the next read retries the verification only.
func (ps *PartitionStream) ensureReady() error {
	state := ps.session.State()
	if state.Ok() {
		return nil
	}
	if state != types.DecryptionUnknown {
		return decryptionError(state)
	}

	if state = ps.session.EnsureKey(ps.encKey, ps.header.Ticket); state != types.DecryptionUnknown {
		return decryptionError(state)
	}

	buf, err := ps.fetchSector(0)
	if err != nil {
		return err
	}

	if state = ps.session.VerifySector0(buf); !state.Ok() {
		ps.cacheIndex = -1
		return decryptionError(state)
	}
	return nil
}

// fetchSector returns the decoded payload of one physical sector, serving
// it from the cache when possible. A decode failure invalidates the cache
// entry so a retry re-fetches instead of serving corrupt data.
func (ps *PartitionStream) fetchSector(index int64) ([]byte, error) {
	payloadSize := ps.mode.PayloadSize()
	if ps.cacheIndex == index {
		return ps.cacheBuf[:payloadSize], nil
	}

	offset := ps.partitionOffset + ps.dataOffset + index*types.SectorSize
	if err := ps.readPhysical(offset, ps.rawBuf[:]); err != nil {
		ps.cacheIndex = -1
		return nil, fmt.Errorf("failed to read sector %d: %w", index, err)
	}

	var err error
	switch ps.mode {
	case types.ModeEncryptedStandard:
		err = ps.session.SectorCipher().DecryptDataSector(ps.rawBuf[:], ps.cacheBuf[:])
	case types.ModeUnencryptedStandard:
		err = crypto.CopySectorPayload(ps.rawBuf[:], ps.cacheBuf[:])
	case types.ModeUnencryptedFull32K:
		copy(ps.cacheBuf[:], ps.rawBuf[:])
	}
	if err != nil {
		ps.cacheIndex = -1
		return nil, fmt.Errorf("failed to decode sector %d: %w", index, err)
	}

	ps.cacheIndex = index
	return ps.cacheBuf[:payloadSize], nil
}

// readPhysical seeks the raw reader and fills buf completely. The reader's
// seek position is treated as transient, so interleaved use of the same
// reader between calls is tolerated.
func (ps *PartitionStream) readPhysical(offset int64, buf []byte) error {
	if err := ps.reader.Seek(offset); err != nil {
		return err
	}
	total := 0
	for total < len(buf) {
		n, err := ps.reader.Read(buf[total:])
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

// decryptionError converts a terminal session state into the I/O-class
// error surfaced to readers.
func decryptionError(state types.DecryptionState) error {
	return fmt.Errorf("partition decryption unavailable: %s", state)
}

// Ticket returns the partition's decoded ticket.
func (ps *PartitionStream) Ticket() types.Ticket {
	return ps.header.Ticket
}

// TMDHeader returns the partition's decoded title metadata header.
func (ps *PartitionStream) TMDHeader() types.TMDHeader {
	return ps.tmd
}

// Header returns the decoded partition header.
func (ps *PartitionStream) Header() types.PartitionHeader {
	return ps.header
}

// EncKey returns the key required to read the data area.
func (ps *PartitionStream) EncKey() types.EncryptionKeyID {
	return ps.encKey
}

// EncKeyReal returns the key the data would be encrypted with if the
// encryption layer were present.
func (ps *PartitionStream) EncKeyReal() types.EncryptionKeyID {
	return ps.encKeyReal
}

// DecryptionState returns the memoized decryption state without triggering
// initialization.
func (ps *PartitionStream) DecryptionState() types.DecryptionState {
	if ps.session != nil {
		return ps.session.State()
	}
	return ps.state
}

// DataSize returns the logical size of the decrypted data area.
func (ps *PartitionStream) DataSize() int64 {
	return ps.dataSize
}

// DataOffset returns the physical offset of the data area relative to the
// partition start.
func (ps *PartitionStream) DataOffset() int64 {
	return ps.dataOffset
}

// UsedSizeFallback reports whether the header declared a zero data size
// and the caller-supplied partition size was substituted.
func (ps *PartitionStream) UsedSizeFallback() bool {
	return ps.sizeFallback
}
