package system

import (
	"crypto/ed25519"
	"time"

	"github.com/pkg/errors"

	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
)

// ProgramKey is the system program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var ProgramKey = make(ed25519.PublicKey, ed25519.PublicKeySize)

// RentSysVar points to the system variable "Rent"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar = ed25519.PublicKey{6, 167, 213, 23, 25, 44, 92, 81, 33, 140, 201, 76, 61, 74, 241, 127, 88, 218, 238, 8, 155, 161, 253, 68, 227, 219, 217, 138, 0, 0, 0, 0}

// ClockSysVar points to the system variable "Clock"
//
// Current key: SysvarC1ock11111111111111111111111111111111
var ClockSysVar = ed25519.PublicKey{6, 167, 213, 23, 24, 199, 116, 201, 40, 86, 99, 152, 105, 29, 94, 182, 139, 94, 184, 163, 155, 75, 109, 92, 115, 85, 91, 33, 0, 0, 0, 0}

// ClockSize is the serialized size of the Clock sysvar.
const ClockSize = 40

// ErrInvalidClock indicates the Clock sysvar data was not ClockSize bytes.
var ErrInvalidClock = errors.New("invalid clock sysvar data")

// Clock is the cluster's view of time, as seen by programs.
//
// Reference: https://github.com/solana-labs/solana/blob/master/sdk/program/src/clock.rs
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

// Time returns the clock's unix timestamp as a time.Time.
func (c Clock) Time() time.Time {
	return time.Unix(c.UnixTimestamp, 0)
}

func (c Clock) Marshal() []byte {
	b := make([]byte, ClockSize)

	var offset int
	binary.PutUint64(b, c.Slot, &offset)
	binary.PutInt64(b, c.EpochStartTimestamp, &offset)
	binary.PutUint64(b, c.Epoch, &offset)
	binary.PutUint64(b, c.LeaderScheduleEpoch, &offset)
	binary.PutInt64(b, c.UnixTimestamp, &offset)

	return b
}

func (c *Clock) Unmarshal(data []byte) error {
	if len(data) != ClockSize {
		return ErrInvalidClock
	}

	var offset int
	binary.GetUint64(data, &c.Slot, &offset)
	binary.GetInt64(data, &c.EpochStartTimestamp, &offset)
	binary.GetUint64(data, &c.Epoch, &offset)
	binary.GetUint64(data, &c.LeaderScheduleEpoch, &offset)
	binary.GetInt64(data, &c.UnixTimestamp, &offset)

	return nil
}
