// Package binary reads and writes the fixed-width little-endian layouts used
// by on-chain account and instruction data. Every helper operates at
// dst[*offset:] or src[*offset:] and advances offset; callers validate the
// total length up front.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
)

// OptionKey32Size is the size of a COption<Pubkey> as laid out by the SPL
// token program: a 4 byte tag followed by the key.
const OptionKey32Size = 4 + ed25519.PublicKeySize

func PutKey32(dst []byte, v ed25519.PublicKey, offset *int) {
	copy(dst[*offset:*offset+ed25519.PublicKeySize], v)
	*offset += ed25519.PublicKeySize
}
func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src[*offset:])
	*offset += ed25519.PublicKeySize
}

// PutOptionalKey32 writes a tagged optional key; a nil or empty v writes
// None. tagSize is 4 for SPL token COptions and 1 for borsh Options.
func PutOptionalKey32(dst []byte, v ed25519.PublicKey, offset *int, tagSize int) {
	if len(v) > 0 {
		dst[*offset] = 1
		copy(dst[*offset+tagSize:], v)
	}
	*offset += tagSize + ed25519.PublicKeySize
}
func GetOptionalKey32(src []byte, dst *ed25519.PublicKey, offset *int, tagSize int) {
	if src[*offset] == 1 {
		*dst = make([]byte, ed25519.PublicKeySize)
		copy(*dst, src[*offset+tagSize:])
	}
	*offset += tagSize + ed25519.PublicKeySize
}

func PutBool(dst []byte, v bool, offset *int) {
	if v {
		dst[*offset] = 1
	} else {
		dst[*offset] = 0
	}
	*offset += 1
}

// GetBool reads a bool and reports whether the byte was a valid 0 or 1.
func GetBool(src []byte, dst *bool, offset *int) bool {
	b := src[*offset]
	*dst = b == 1
	*offset += 1
	return b <= 1
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[*offset] = v
	*offset += 1
}
func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[*offset]
	*offset += 1
}

func PutUint16(dst []byte, v uint16, offset *int) {
	binary.LittleEndian.PutUint16(dst[*offset:], v)
	*offset += 2
}
func GetUint16(src []byte, dst *uint16, offset *int) {
	*dst = binary.LittleEndian.Uint16(src[*offset:])
	*offset += 2
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst[*offset:], v)
	*offset += 4
}
func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src[*offset:])
	*offset += 4
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], v)
	*offset += 8
}
func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src[*offset:])
	*offset += 8
}

func PutInt64(dst []byte, v int64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], uint64(v))
	*offset += 8
}
func GetInt64(src []byte, dst *int64, offset *int) {
	*dst = int64(binary.LittleEndian.Uint64(src[*offset:]))
	*offset += 8
}

// PutOptionalUint64 writes a tagged optional u64; nil writes None.
func PutOptionalUint64(dst []byte, v *uint64, offset *int, tagSize int) {
	if v != nil {
		dst[*offset] = 1
		binary.LittleEndian.PutUint64(dst[*offset+tagSize:], *v)
	}
	*offset += tagSize + 8
}
func GetOptionalUint64(src []byte, dst **uint64, offset *int, tagSize int) {
	if src[*offset] == 1 {
		val := binary.LittleEndian.Uint64(src[*offset+tagSize:])
		*dst = &val
	}
	*offset += tagSize + 8
}

// Skip advances offset past n bytes of padding or unused fields.
func Skip(n int, offset *int) {
	*offset += n
}
