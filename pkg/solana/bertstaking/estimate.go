package bertstaking

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

const (
	// BasisPoints is a yield rate of 100%.
	BasisPoints = 10_000

	SecondsPerDay = 86_400
	DaysPerYear   = 365
)

var ErrArithmeticOverflow = errors.New("arithmetic overflow")

// CalculateYieldChecked returns floor(amount * yieldRate / 10000) using a 128
// bit intermediate. It only fails for rates above 100% whose result does not
// fit in a u64.
func CalculateYieldChecked(amount, yieldRate uint64) (uint64, error) {
	res := uint128.From64(amount).Mul64(yieldRate).Div64(BasisPoints)
	if res.Hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return res.Lo, nil
}

// CalculateYield is CalculateYieldChecked, saturating at math.MaxUint64. The
// result is exact for every rate up to 100%.
func CalculateYield(amount, yieldRate uint64) uint64 {
	res, err := CalculateYieldChecked(amount, yieldRate)
	if err != nil {
		return math.MaxUint64
	}
	return res
}

// CalculateClaimAmount is the principal plus yield paid by a claim.
func CalculateClaimAmount(amount, yieldRate uint64) (uint64, error) {
	yield, err := CalculateYieldChecked(amount, yieldRate)
	if err != nil {
		return 0, err
	}
	return checkedAdd(amount, yield)
}

func DaysToSeconds(days uint16) int64 {
	return int64(days) * SecondsPerDay
}

// CalculateUnlockTime returns depositTime plus the lock period, in unix
// seconds.
func CalculateUnlockTime(depositTime int64, lockPeriodDays uint16) int64 {
	return depositTime + DaysToSeconds(lockPeriodDays)
}

// EquivalentAPY annualizes a tier's yield with simple interest, as a
// percentage. It is for display only. A zero lock period yields zero.
func EquivalentAPY(yieldRate uint64, lockPeriodDays uint16) decimal.Decimal {
	if lockPeriodDays == 0 {
		return decimal.Zero
	}
	return BpsToPercent(yieldRate).
		Mul(decimal.NewFromInt(DaysPerYear)).
		Div(decimal.NewFromInt(int64(lockPeriodDays)))
}

// BpsToPercent converts basis points into a percentage.
func BpsToPercent(bps uint64) decimal.Decimal {
	return decimal.NewFromUint64(bps).Div(decimal.NewFromInt(100))
}

// ToUiAmount converts quarks into whole tokens.
func ToUiAmount(amount uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(amount).Shift(-int32(decimals))
}

// FromUiAmount converts whole tokens into quarks. Amounts with more precision
// than the mint supports, negative amounts and amounts beyond a u64 are
// rejected.
func FromUiAmount(amount decimal.Decimal, decimals uint8) (uint64, error) {
	scaled := amount.Shift(int32(decimals))
	if scaled.Sign() < 0 {
		return 0, errors.Wrap(ErrInvalidArgument, "amount is negative")
	}
	if !scaled.IsInteger() {
		return 0, errors.Wrapf(ErrInvalidArgument, "amount has more than %d decimal places", decimals)
	}

	quarks := scaled.BigInt()
	if !quarks.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return quarks.Uint64(), nil
}

// RemainingTokenCapacity is how many more tokens the pool's token cap allows.
func RemainingTokenCapacity(pool *PoolAccount) uint64 {
	if pool.TotalTokensStaked >= pool.MaxTokensCap {
		return 0
	}
	return pool.MaxTokensCap - pool.TotalTokensStaked
}

// RemainingNftCapacity is how many more NFTs the pool's NFT cap allows.
func RemainingNftCapacity(pool *PoolAccount) uint32 {
	if pool.TotalNftsStaked >= pool.MaxNftsCap {
		return 0
	}
	return pool.MaxNftsCap - pool.TotalNftsStaked
}

// RemainingValueCapacity is how much more value, in tokens, the pool's value
// cap allows. NFTs count as nftValueInTokens each.
func RemainingValueCapacity(pool *PoolAccount, nftValueInTokens uint64) uint64 {
	value, err := pool.TotalValue(nftValueInTokens)
	if err != nil || value >= pool.MaxValueCap {
		return 0
	}
	return pool.MaxValueCap - value
}

// CheckTokenStake mirrors the program's checks for staking amount tokens into
// pool. Passing does not guarantee the stake lands: the program's view is
// authoritative and other stakers may fill the pool first.
func CheckTokenStake(pool *PoolAccount, config *ConfigAccount, amount uint64) error {
	if amount == 0 {
		return NewLocalRejection(RejectionMalformedInput)
	}

	if err := checkPoolActive(pool); err != nil {
		return err
	}

	if remaining := RemainingTokenCapacity(pool); amount > remaining {
		return capacityExceeded(pool, CapacityPoolTokens, amount, remaining)
	}

	if remaining := RemainingValueCapacity(pool, config.NftValueInTokens); amount > remaining {
		return capacityExceeded(pool, CapacityPoolValue, amount, remaining)
	}

	if remaining := config.RemainingCap(); amount > remaining {
		return capacityExceeded(pool, CapacityGlobalTokens, amount, remaining)
	}

	return nil
}

// CheckNftStake mirrors the program's checks for staking one NFT into pool.
// user may be nil when the owner has no user account yet.
func CheckNftStake(pool *PoolAccount, config *ConfigAccount, user *UserAccount) error {
	if err := checkPoolActive(pool); err != nil {
		return err
	}

	if remaining := RemainingNftCapacity(pool); remaining < 1 {
		return capacityExceeded(pool, CapacityPoolNfts, 1, uint64(remaining))
	}

	if remaining := RemainingValueCapacity(pool, config.NftValueInTokens); config.NftValueInTokens > remaining {
		return capacityExceeded(pool, CapacityPoolValue, config.NftValueInTokens, remaining)
	}

	var staked uint32
	if user != nil {
		staked = user.TotalStakedNfts
	}
	if staked >= uint32(config.NftsLimitPerUser) {
		return capacityExceeded(pool, CapacityUserNfts, 1, 0)
	}

	return nil
}

// CheckClaim reports whether position can be claimed at now, in unix seconds.
func CheckClaim(position *PositionAccount, now int64) error {
	if position.IsClaimed() {
		res := NewLocalRejection(RejectionAlreadyClaimed)
		res.PositionID = position.Id
		return res
	}

	if !position.IsUnlocked(now) {
		res := NewLocalRejection(RejectionStillLocked)
		res.PositionID = position.Id
		res.SecondsRemaining = position.UnlockTime - now
		return res
	}

	return nil
}

// ClaimPreview is what a claim would pay out.
type ClaimPreview struct {
	Principal uint64
	Yield     uint64
	Total     uint64
	YieldRate uint64
}

// PreviewClaim computes a claim's payout at the pool's current yield rate.
// The program reads the rate when the claim executes, so a rate changed by
// an admin after the stake applies.
func PreviewClaim(position *PositionAccount, pool *PoolAccount) (*ClaimPreview, error) {
	return PreviewClaimAtRate(position, pool.YieldRate)
}

// PreviewClaimAtRate computes a claim's payout at an explicit yield rate.
func PreviewClaimAtRate(position *PositionAccount, yieldRate uint64) (*ClaimPreview, error) {
	yield, err := CalculateYieldChecked(position.Amount, yieldRate)
	if err != nil {
		return nil, err
	}

	total, err := checkedAdd(position.Amount, yield)
	if err != nil {
		return nil, err
	}

	return &ClaimPreview{
		Principal: position.Amount,
		Yield:     yield,
		Total:     total,
		YieldRate: yieldRate,
	}, nil
}

func checkPoolActive(pool *PoolAccount) error {
	if pool.IsPaused {
		res := NewLocalRejection(RejectionPoolStateConflict)
		res.PoolIndex = pool.Index
		return res
	}
	return nil
}

func capacityExceeded(pool *PoolAccount, which Capacity, requested, remaining uint64) error {
	res := NewLocalRejection(RejectionCapacityExceeded)
	res.PoolIndex = pool.Index
	res.Which = which
	res.Requested = requested
	res.Remaining = remaining
	return res
}

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	res := uint128.From64(a).Mul64(b)
	if res.Hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return res.Lo, nil
}
