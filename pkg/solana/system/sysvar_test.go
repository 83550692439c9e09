package system

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "11111111111111111111111111111111", base58.Encode(ProgramKey))
	assert.Equal(t, "SysvarRent111111111111111111111111111111111", base58.Encode(RentSysVar))
	assert.Equal(t, "SysvarC1ock11111111111111111111111111111111", base58.Encode(ClockSysVar))
}

func TestClock(t *testing.T) {
	data := make([]byte, ClockSize)
	data[0] = 0x10
	data[32], data[33] = 0x80, 0x51

	var clock Clock
	require.NoError(t, clock.Unmarshal(data))
	assert.EqualValues(t, 16, clock.Slot)
	assert.EqualValues(t, 20864, clock.UnixTimestamp)
	assert.EqualValues(t, 20864, clock.Time().Unix())
	assert.Equal(t, data, clock.Marshal())

	assert.Equal(t, ErrInvalidClock, clock.Unmarshal(data[:39]))
}
