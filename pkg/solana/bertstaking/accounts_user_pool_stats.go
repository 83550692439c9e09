package bertstaking

import (
	"crypto/ed25519"
	"fmt"

	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
)

const (
	UserPoolStatsAccountSize = (8 + // discriminator
		32 + // user
		32 + // pool
		8 + // tokens_staked
		4 + // nfts_staked
		8 + // total_value
		8 + // claimed_yield
		1 + // bump
		64) // padding
)

var UserPoolStatsAccountDiscriminator = []byte{23, 136, 131, 110, 30, 91, 112, 74}

type UserPoolStatsAccount struct {
	User         ed25519.PublicKey
	Pool         ed25519.PublicKey
	TokensStaked uint64
	NftsStaked   uint32
	TotalValue   uint64
	ClaimedYield uint64
	Bump         uint8
}

func (obj *UserPoolStatsAccount) Marshal() []byte {
	data := make([]byte, UserPoolStatsAccountSize)

	var offset int

	putDiscriminator(data, UserPoolStatsAccountDiscriminator, &offset)
	binary.PutKey32(data, obj.User, &offset)
	binary.PutKey32(data, obj.Pool, &offset)
	binary.PutUint64(data, obj.TokensStaked, &offset)
	binary.PutUint32(data, obj.NftsStaked, &offset)
	binary.PutUint64(data, obj.TotalValue, &offset)
	binary.PutUint64(data, obj.ClaimedYield, &offset)
	binary.PutUint8(data, obj.Bump, &offset)

	return data
}

func (obj *UserPoolStatsAccount) Unmarshal(data []byte) error {
	if len(data) < UserPoolStatsAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	if !checkDiscriminator(data, UserPoolStatsAccountDiscriminator, &offset) {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data, &obj.User, &offset)
	binary.GetKey32(data, &obj.Pool, &offset)
	binary.GetUint64(data, &obj.TokensStaked, &offset)
	binary.GetUint32(data, &obj.NftsStaked, &offset)
	binary.GetUint64(data, &obj.TotalValue, &offset)
	binary.GetUint64(data, &obj.ClaimedYield, &offset)
	binary.GetUint8(data, &obj.Bump, &offset)
	binary.Skip(64, &offset) // padding

	return nil
}

func (obj *UserPoolStatsAccount) String() string {
	return fmt.Sprintf(
		"UserPoolStats{user=%s,pool=%s,tokens_staked=%d,nfts_staked=%d,total_value=%d,claimed_yield=%d,bump=%d}",
		encodeKey(obj.User),
		encodeKey(obj.Pool),
		obj.TokensStaked,
		obj.NftsStaked,
		obj.TotalValue,
		obj.ClaimedYield,
		obj.Bump,
	)
}
