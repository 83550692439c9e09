package bertstaking

import (
	"fmt"

	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
)

// StandardPoolCount is the number of lock tiers in a standard deployment.
const StandardPoolCount = 4

// StandardLockPeriodDays are the lock periods of the standard tiers, in pool
// index order.
var StandardLockPeriodDays = [StandardPoolCount]uint16{1, 3, 7, 30}

// PoolConfig holds a tier's terms.
type PoolConfig struct {
	LockPeriodDays uint16
	YieldRate      uint64
	MaxNftsCap     uint32
	MaxTokensCap   uint64
	MaxValueCap    uint64
	IsPaused       bool
}

func (obj PoolConfig) String() string {
	return fmt.Sprintf(
		"PoolConfig{lock_period_days=%d,yield_rate=%d,max_nfts_cap=%d,max_tokens_cap=%d,max_value_cap=%d,is_paused=%t}",
		obj.LockPeriodDays,
		obj.YieldRate,
		obj.MaxNftsCap,
		obj.MaxTokensCap,
		obj.MaxValueCap,
		obj.IsPaused,
	)
}

type PoolStats struct {
	TotalNftsStaked      uint32
	TotalTokensStaked    uint64
	LifetimeNftsStaked   uint32
	LifetimeTokensStaked uint64
	LifetimeClaimedYield uint64
}

const (
	PoolConfigArgsSize = (2 + // lock_period_days
		8 + // yield_rate
		4 + // max_nfts_cap
		8 + // max_tokens_cap
		8) // max_value_cap
)

// PoolConfigArgs are the tier terms an admin may change while a pool is
// paused.
type PoolConfigArgs struct {
	LockPeriodDays uint16
	YieldRate      uint64
	MaxNftsCap     uint32
	MaxTokensCap   uint64
	MaxValueCap    uint64
}

func putPoolConfigArgs(dst []byte, v *PoolConfigArgs, offset *int) {
	binary.PutUint16(dst, v.LockPeriodDays, offset)
	binary.PutUint64(dst, v.YieldRate, offset)
	binary.PutUint32(dst, v.MaxNftsCap, offset)
	binary.PutUint64(dst, v.MaxTokensCap, offset)
	binary.PutUint64(dst, v.MaxValueCap, offset)
}

func getPoolConfigArgs(src []byte, dst *PoolConfigArgs, offset *int) {
	binary.GetUint16(src, &dst.LockPeriodDays, offset)
	binary.GetUint64(src, &dst.YieldRate, offset)
	binary.GetUint32(src, &dst.MaxNftsCap, offset)
	binary.GetUint64(src, &dst.MaxTokensCap, offset)
	binary.GetUint64(src, &dst.MaxValueCap, offset)
}
