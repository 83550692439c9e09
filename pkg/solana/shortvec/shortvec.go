// Package shortvec implements the compact-u16 length prefix used throughout
// the Solana transaction format.
package shortvec

import (
	"fmt"
	"io"
	"math"
)

const maxEncodedBytes = 3

// EncodeLen writes length as a compact-u16. Lengths above math.MaxUint16 are
// rejected.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, fmt.Errorf("length %d out of range [0, %d]", length, math.MaxUint16)
	}

	var encoded [maxEncodedBytes]byte
	n := 0
	for {
		encoded[n] = byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			n++
			break
		}
		encoded[n] |= 0x80
		n++
	}

	return w.Write(encoded[:n])
}

// DecodeLen reads a compact-u16 length.
func DecodeLen(r io.Reader) (int, error) {
	var (
		value int
		b     [1]byte
	)

	for i := 0; i < maxEncodedBytes; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		value |= int(b[0]&0x7f) << (i * 7)
		if b[0]&0x80 == 0 {
			return value, nil
		}
	}

	return 0, fmt.Errorf("compact-u16 longer than %d bytes", maxEncodedBytes)
}
