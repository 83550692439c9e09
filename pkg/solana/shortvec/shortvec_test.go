package shortvec

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	for i := 0; i <= math.MaxUint16; i += 7 {
		buf.Reset()

		_, err := EncodeLen(buf, i)
		require.NoError(t, err)

		decoded, err := DecodeLen(buf)
		require.NoError(t, err)
		require.Equal(t, i, decoded)
	}
}

func TestKnownEncodings(t *testing.T) {
	for _, tc := range []struct {
		value   int
		encoded []byte
	}{
		{0x0, []byte{0x0}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0xff, []byte{0xff, 0x01}},
		{0x100, []byte{0x80, 0x02}},
		{0x7fff, []byte{0xff, 0xff, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	} {
		buf := &bytes.Buffer{}
		n, err := EncodeLen(buf, tc.value)
		require.NoError(t, err)
		assert.Equal(t, len(tc.encoded), n)
		assert.Equal(t, tc.encoded, buf.Bytes())
	}
}

func TestInvalid(t *testing.T) {
	_, err := EncodeLen(&bytes.Buffer{}, math.MaxUint16+1)
	assert.Error(t, err)

	_, err = EncodeLen(&bytes.Buffer{}, -1)
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x01}))
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0x80}))
	assert.Error(t, err)
}
