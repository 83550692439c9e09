package bertstaking

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
)

const (
	PositionAccountSize = (8 + // discriminator
		32 + // owner
		32 + // pool
		8 + // deposit_time
		8 + // amount
		1 + // position_type
		8 + // unlock_time
		1 + // status
		32 + // asset
		1 + // bump
		8 + // id
		8 + // last_claimed_at
		64) // padding
)

var PositionAccountDiscriminator = []byte{202, 171, 178, 46, 38, 48, 31, 36}

// Offset of the owner key, used to filter positions by owner.
const PositionOwnerOffset = 8

type PositionType uint8

const (
	PositionTypeNft PositionType = iota
	PositionTypeToken
)

func (t PositionType) String() string {
	switch t {
	case PositionTypeNft:
		return "nft"
	case PositionTypeToken:
		return "token"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

type PositionStatus uint8

const (
	PositionStatusUnclaimed PositionStatus = iota
	PositionStatusClaimed
)

func (s PositionStatus) String() string {
	switch s {
	case PositionStatusUnclaimed:
		return "unclaimed"
	case PositionStatusClaimed:
		return "claimed"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

type PositionAccount struct {
	Owner         ed25519.PublicKey
	Pool          ed25519.PublicKey
	DepositTime   int64
	Amount        uint64
	PositionType  PositionType
	UnlockTime    int64
	Status        PositionStatus
	Bump          uint8
	Id            uint64
	LastClaimedAt int64

	// Only set for NFT positions. Use Asset.
	asset ed25519.PublicKey
}

// NewTokenPosition returns a token position. Mostly useful for fixtures.
func NewTokenPosition(owner, pool ed25519.PublicKey, id, amount uint64, depositTime, unlockTime int64) *PositionAccount {
	return &PositionAccount{
		Owner:        owner,
		Pool:         pool,
		DepositTime:  depositTime,
		Amount:       amount,
		PositionType: PositionTypeToken,
		UnlockTime:   unlockTime,
		Status:       PositionStatusUnclaimed,
		Id:           id,
	}
}

// NewNftPosition returns an NFT position whose principal is the configured
// NFT value. Mostly useful for fixtures.
func NewNftPosition(owner, pool, asset ed25519.PublicKey, id, nftValue uint64, depositTime, unlockTime int64) *PositionAccount {
	return &PositionAccount{
		Owner:        owner,
		Pool:         pool,
		DepositTime:  depositTime,
		Amount:       nftValue,
		PositionType: PositionTypeNft,
		UnlockTime:   unlockTime,
		Status:       PositionStatusUnclaimed,
		Id:           id,
		asset:        asset,
	}
}

// Kind returns whether the position holds tokens or an NFT.
func (obj *PositionAccount) Kind() PositionType {
	return obj.PositionType
}

// Asset returns the staked NFT. It reports false for token positions, whose
// on-chain asset field is meaningless.
func (obj *PositionAccount) Asset() (ed25519.PublicKey, bool) {
	if obj.PositionType != PositionTypeNft {
		return nil, false
	}
	return obj.asset, true
}

func (obj *PositionAccount) IsClaimed() bool {
	return obj.Status == PositionStatusClaimed
}

// IsUnlocked reports whether the position may be claimed at now, given in
// unix seconds.
func (obj *PositionAccount) IsUnlocked(now int64) bool {
	return now >= obj.UnlockTime
}

func (obj *PositionAccount) Marshal() []byte {
	data := make([]byte, PositionAccountSize)

	var offset int

	putDiscriminator(data, PositionAccountDiscriminator, &offset)
	binary.PutKey32(data, obj.Owner, &offset)
	binary.PutKey32(data, obj.Pool, &offset)
	binary.PutInt64(data, obj.DepositTime, &offset)
	binary.PutUint64(data, obj.Amount, &offset)
	binary.PutUint8(data, uint8(obj.PositionType), &offset)
	binary.PutInt64(data, obj.UnlockTime, &offset)
	binary.PutUint8(data, uint8(obj.Status), &offset)
	binary.PutKey32(data, obj.asset, &offset)
	binary.PutUint8(data, obj.Bump, &offset)
	binary.PutUint64(data, obj.Id, &offset)
	binary.PutInt64(data, obj.LastClaimedAt, &offset)

	return data
}

func (obj *PositionAccount) Unmarshal(data []byte) error {
	if len(data) < PositionAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	if !checkDiscriminator(data, PositionAccountDiscriminator, &offset) {
		return ErrInvalidAccountData
	}

	var positionType, status uint8
	var asset ed25519.PublicKey

	binary.GetKey32(data, &obj.Owner, &offset)
	binary.GetKey32(data, &obj.Pool, &offset)
	binary.GetInt64(data, &obj.DepositTime, &offset)
	binary.GetUint64(data, &obj.Amount, &offset)
	binary.GetUint8(data, &positionType, &offset)
	binary.GetInt64(data, &obj.UnlockTime, &offset)
	binary.GetUint8(data, &status, &offset)
	binary.GetKey32(data, &asset, &offset)
	binary.GetUint8(data, &obj.Bump, &offset)
	binary.GetUint64(data, &obj.Id, &offset)
	binary.GetInt64(data, &obj.LastClaimedAt, &offset)
	binary.Skip(64, &offset) // padding

	obj.PositionType = PositionType(positionType)
	switch obj.PositionType {
	case PositionTypeNft:
		obj.asset = asset
	case PositionTypeToken:
		obj.asset = nil
	default:
		return ErrInvalidAccountData
	}

	obj.Status = PositionStatus(status)
	if obj.Status > PositionStatusClaimed {
		return ErrInvalidAccountData
	}

	return nil
}

func (obj *PositionAccount) String() string {
	asset := "<none>"
	if key, ok := obj.Asset(); ok {
		asset = encodeKey(key)
	}

	return fmt.Sprintf(
		"Position{owner=%s,pool=%s,id=%d,type=%s,status=%s,amount=%d,deposit_time=%s,unlock_time=%s,asset=%s,last_claimed_at=%d,bump=%d}",
		encodeKey(obj.Owner),
		encodeKey(obj.Pool),
		obj.Id,
		obj.PositionType,
		obj.Status,
		obj.Amount,
		time.Unix(obj.DepositTime, 0).UTC().String(),
		time.Unix(obj.UnlockTime, 0).UTC().String(),
		asset,
		obj.LastClaimedAt,
		obj.Bump,
	)
}
