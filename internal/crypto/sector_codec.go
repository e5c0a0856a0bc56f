package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/disctools/go-wiidisc/internal/types"
)

// cbcMode lets the codec reuse one CBC decrypter across sectors by swapping
// the IV instead of rebuilding the block mode per sector.
type cbcMode interface {
	cipher.BlockMode
	SetIV(iv []byte)
}

// SectorCipher decrypts physical sectors with a partition's title key.
// Each sector is independently decryptable: its payload IV is embedded in
// the sector's own hash area, not chained from previous sectors.
type SectorCipher struct {
	block cipher.Block
	dec   cbcMode
}

// NewSectorCipher creates a SectorCipher for a 16-byte title key.
func NewSectorCipher(titleKey []byte) (*SectorCipher, error) {
	if len(titleKey) != 16 {
		return nil, fmt.Errorf("title key must be 16 bytes, got %d", len(titleKey))
	}

	block, err := aes.NewCipher(titleKey)
	if err != nil {
		return nil, err
	}

	sc := &SectorCipher{block: block}

	var iv [16]byte
	if dec, ok := cipher.NewCBCDecrypter(block, iv[:]).(cbcMode); ok {
		sc.dec = dec
	}
	return sc, nil
}

// DecryptDataSector decrypts one physical sector's payload into out. The
// IV is taken from the sector's hash area; the hash data itself is
// discarded by this layer.
func (sc *SectorCipher) DecryptDataSector(sector, out []byte) error {
	if len(sector) != types.SectorSize {
		return fmt.Errorf("sector must be %#x bytes, got %#x", types.SectorSize, len(sector))
	}
	if len(out) < types.SectorPayloadSize {
		return fmt.Errorf("output must hold %#x bytes, got %#x", types.SectorPayloadSize, len(out))
	}

	iv := sector[types.SectorIVOffset : types.SectorIVOffset+aes.BlockSize]
	payload := sector[types.SectorPayloadOffset:types.SectorSize]

	if sc.dec != nil {
		sc.dec.SetIV(iv)
		sc.dec.CryptBlocks(out[:types.SectorPayloadSize], payload)
		return nil
	}

	// Block mode without SetIV; build one per sector.
	cipher.NewCBCDecrypter(sc.block, iv).CryptBlocks(out[:types.SectorPayloadSize], payload)
	return nil
}

// CopySectorPayload extracts the payload of an unencrypted standard-split
// sector. Same byte ranges as decryption, no cipher work.
func CopySectorPayload(sector, out []byte) error {
	if len(sector) != types.SectorSize {
		return fmt.Errorf("sector must be %#x bytes, got %#x", types.SectorSize, len(sector))
	}
	if len(out) < types.SectorPayloadSize {
		return fmt.Errorf("output must hold %#x bytes, got %#x", types.SectorPayloadSize, len(out))
	}

	copy(out[:types.SectorPayloadSize], sector[types.SectorPayloadOffset:types.SectorSize])
	return nil
}
