package bertstaking

import (
	"crypto/ed25519"
	"fmt"

	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
)

const (
	UserAccountSize = (8 + // discriminator
		32 + // config
		8 + // total_staked_token_amount
		4 + // total_staked_nfts
		8 + // total_staked_value
		8 + // total_claimed_yield
		1 + // bump
		64) // padding
)

var UserAccountDiscriminator = []byte{184, 176, 178, 22, 50, 106, 126, 134}

// UserAccount aggregates a user's stake across every pool of a config.
type UserAccount struct {
	Config                 ed25519.PublicKey
	TotalStakedTokenAmount uint64
	TotalStakedNfts        uint32
	TotalStakedValue       uint64
	TotalClaimedYield      uint64
	Bump                   uint8
}

func (obj *UserAccount) Marshal() []byte {
	data := make([]byte, UserAccountSize)

	var offset int

	putDiscriminator(data, UserAccountDiscriminator, &offset)
	binary.PutKey32(data, obj.Config, &offset)
	binary.PutUint64(data, obj.TotalStakedTokenAmount, &offset)
	binary.PutUint32(data, obj.TotalStakedNfts, &offset)
	binary.PutUint64(data, obj.TotalStakedValue, &offset)
	binary.PutUint64(data, obj.TotalClaimedYield, &offset)
	binary.PutUint8(data, obj.Bump, &offset)

	return data
}

func (obj *UserAccount) Unmarshal(data []byte) error {
	if len(data) < UserAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	if !checkDiscriminator(data, UserAccountDiscriminator, &offset) {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data, &obj.Config, &offset)
	binary.GetUint64(data, &obj.TotalStakedTokenAmount, &offset)
	binary.GetUint32(data, &obj.TotalStakedNfts, &offset)
	binary.GetUint64(data, &obj.TotalStakedValue, &offset)
	binary.GetUint64(data, &obj.TotalClaimedYield, &offset)
	binary.GetUint8(data, &obj.Bump, &offset)
	binary.Skip(64, &offset) // padding

	return nil
}

func (obj *UserAccount) String() string {
	return fmt.Sprintf(
		"UserAccount{config=%s,total_staked_token_amount=%d,total_staked_nfts=%d,total_staked_value=%d,total_claimed_yield=%d,bump=%d}",
		encodeKey(obj.Config),
		obj.TotalStakedTokenAmount,
		obj.TotalStakedNfts,
		obj.TotalStakedValue,
		obj.TotalClaimedYield,
		obj.Bump,
	)
}
