// Package crypto implements the key selection, title key derivation, and
// sector decryption used to read encrypted Wii disc partitions.
package crypto

import "github.com/disctools/go-wiidisc/internal/types"

// SelectKey deterministically picks the encryption keys implied by a
// partition's ticket. encKey is the key actually required to read the data
// area (KeyNone when the partition stores plaintext); encKeyReal is the key
// the data would be encrypted with if the encryption layer were present,
// which no-crypto dumps still want to report.
//
// The debug certificate chain only pairs with common key index 0; indexes
// above 1 (the vWii key) are never selected for a disc partition and map to
// KeyUnknown, which callers treat as "cannot decrypt".
func SelectKey(issuer string, commonKeyIndex uint8, mode types.CryptoMode) (encKey, encKeyReal types.EncryptionKeyID) {
	switch {
	case issuer == types.TicketIssuerDebug && commonKeyIndex == 0:
		encKeyReal = types.KeyDebug
	case commonKeyIndex == 0:
		encKeyReal = types.KeyCommon
	case commonKeyIndex == 1:
		encKeyReal = types.KeyKorean
	default:
		encKeyReal = types.KeyUnknown
	}

	encKey = encKeyReal
	if !mode.Encrypted() {
		encKey = types.KeyNone
	}
	return encKey, encKeyReal
}
