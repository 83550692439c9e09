package bertstaking

import (
	"crypto/ed25519"
	"fmt"

	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
)

const (
	PoolAccountSize = (8 + // discriminator
		32 + // config
		4 + // index
		2 + // lock_period_days
		8 + // yield_rate
		4 + // max_nfts_cap
		8 + // max_tokens_cap
		8 + // max_value_cap
		1 + // is_paused
		4 + // total_nfts_staked
		8 + // total_tokens_staked
		4 + // lifetime_nfts_staked
		8 + // lifetime_tokens_staked
		8 + // lifetime_claimed_yield
		1 + // bump
		56) // padding
)

var PoolAccountDiscriminator = []byte{241, 154, 109, 4, 17, 177, 109, 188}

// PoolAccount is one lock tier: its terms and running totals.
type PoolAccount struct {
	Config               ed25519.PublicKey
	Index                uint32
	LockPeriodDays       uint16
	YieldRate            uint64 // basis points
	MaxNftsCap           uint32
	MaxTokensCap         uint64
	MaxValueCap          uint64
	IsPaused             bool
	TotalNftsStaked      uint32
	TotalTokensStaked    uint64
	LifetimeNftsStaked   uint32
	LifetimeTokensStaked uint64
	LifetimeClaimedYield uint64
	Bump                 uint8
}

func (obj *PoolAccount) Marshal() []byte {
	data := make([]byte, PoolAccountSize)

	var offset int

	putDiscriminator(data, PoolAccountDiscriminator, &offset)
	binary.PutKey32(data, obj.Config, &offset)
	binary.PutUint32(data, obj.Index, &offset)
	binary.PutUint16(data, obj.LockPeriodDays, &offset)
	binary.PutUint64(data, obj.YieldRate, &offset)
	binary.PutUint32(data, obj.MaxNftsCap, &offset)
	binary.PutUint64(data, obj.MaxTokensCap, &offset)
	binary.PutUint64(data, obj.MaxValueCap, &offset)
	binary.PutBool(data, obj.IsPaused, &offset)
	binary.PutUint32(data, obj.TotalNftsStaked, &offset)
	binary.PutUint64(data, obj.TotalTokensStaked, &offset)
	binary.PutUint32(data, obj.LifetimeNftsStaked, &offset)
	binary.PutUint64(data, obj.LifetimeTokensStaked, &offset)
	binary.PutUint64(data, obj.LifetimeClaimedYield, &offset)
	binary.PutUint8(data, obj.Bump, &offset)

	return data
}

func (obj *PoolAccount) Unmarshal(data []byte) error {
	if len(data) < PoolAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	if !checkDiscriminator(data, PoolAccountDiscriminator, &offset) {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data, &obj.Config, &offset)
	binary.GetUint32(data, &obj.Index, &offset)
	binary.GetUint16(data, &obj.LockPeriodDays, &offset)
	binary.GetUint64(data, &obj.YieldRate, &offset)
	binary.GetUint32(data, &obj.MaxNftsCap, &offset)
	binary.GetUint64(data, &obj.MaxTokensCap, &offset)
	binary.GetUint64(data, &obj.MaxValueCap, &offset)
	if !binary.GetBool(data, &obj.IsPaused, &offset) {
		return ErrInvalidAccountData
	}
	binary.GetUint32(data, &obj.TotalNftsStaked, &offset)
	binary.GetUint64(data, &obj.TotalTokensStaked, &offset)
	binary.GetUint32(data, &obj.LifetimeNftsStaked, &offset)
	binary.GetUint64(data, &obj.LifetimeTokensStaked, &offset)
	binary.GetUint64(data, &obj.LifetimeClaimedYield, &offset)
	binary.GetUint8(data, &obj.Bump, &offset)
	binary.Skip(56, &offset) // padding

	return nil
}

// PoolConfig returns the pool's terms.
func (obj *PoolAccount) PoolConfig() PoolConfig {
	return PoolConfig{
		LockPeriodDays: obj.LockPeriodDays,
		YieldRate:      obj.YieldRate,
		MaxNftsCap:     obj.MaxNftsCap,
		MaxTokensCap:   obj.MaxTokensCap,
		MaxValueCap:    obj.MaxValueCap,
		IsPaused:       obj.IsPaused,
	}
}

// PoolStats returns the pool's running and lifetime totals.
func (obj *PoolAccount) PoolStats() PoolStats {
	return PoolStats{
		TotalNftsStaked:      obj.TotalNftsStaked,
		TotalTokensStaked:    obj.TotalTokensStaked,
		LifetimeNftsStaked:   obj.LifetimeNftsStaked,
		LifetimeTokensStaked: obj.LifetimeTokensStaked,
		LifetimeClaimedYield: obj.LifetimeClaimedYield,
	}
}

// TotalValue is the pool's staked value with NFTs counted at
// nftValueInTokens each, which is how the value cap is enforced.
func (obj *PoolAccount) TotalValue(nftValueInTokens uint64) (uint64, error) {
	nftValue, err := checkedMul(uint64(obj.TotalNftsStaked), nftValueInTokens)
	if err != nil {
		return 0, err
	}
	return checkedAdd(obj.TotalTokensStaked, nftValue)
}

func (obj *PoolAccount) String() string {
	return fmt.Sprintf(
		"Pool{config=%s,index=%d,lock_period_days=%d,yield_rate=%d,max_nfts_cap=%d,max_tokens_cap=%d,max_value_cap=%d,is_paused=%t,total_nfts_staked=%d,total_tokens_staked=%d,lifetime_nfts_staked=%d,lifetime_tokens_staked=%d,lifetime_claimed_yield=%d,bump=%d}",
		encodeKey(obj.Config),
		obj.Index,
		obj.LockPeriodDays,
		obj.YieldRate,
		obj.MaxNftsCap,
		obj.MaxTokensCap,
		obj.MaxValueCap,
		obj.IsPaused,
		obj.TotalNftsStaked,
		obj.TotalTokensStaked,
		obj.LifetimeNftsStaked,
		obj.LifetimeTokensStaked,
		obj.LifetimeClaimedYield,
		obj.Bump,
	)
}
