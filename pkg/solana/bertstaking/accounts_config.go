package bertstaking

import (
	"crypto/ed25519"
	"fmt"

	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
)

const (
	ConfigAccountSize = (8 + // discriminator
		8 + // id
		32 + // authority
		32 + // mint
		32 + // collection
		32 + // vault
		32 + // authority_vault
		32 + // nfts_vault
		32 + // admin_withdraw_destination
		4 + // pool_count
		8 + // max_cap
		8 + // nft_value_in_tokens
		1 + // nfts_limit_per_user
		8 + // total_staked_amount
		8 + // total_nfts_staked
		1 + // bump
		1 + // authority_vault_bump
		96) // padding
)

var ConfigAccountDiscriminator = []byte{155, 12, 170, 224, 30, 250, 204, 130}

type ConfigAccount struct {
	Id                       uint64
	Authority                ed25519.PublicKey
	Mint                     ed25519.PublicKey
	Collection               ed25519.PublicKey
	Vault                    ed25519.PublicKey
	AuthorityVault           ed25519.PublicKey
	NftsVault                ed25519.PublicKey
	AdminWithdrawDestination ed25519.PublicKey
	PoolCount                uint32
	MaxCap                   uint64
	NftValueInTokens         uint64
	NftsLimitPerUser         uint8
	TotalStakedAmount        uint64
	TotalNftsStaked          uint64
	Bump                     uint8
	AuthorityVaultBump       uint8
}

func (obj *ConfigAccount) Marshal() []byte {
	data := make([]byte, ConfigAccountSize)

	var offset int

	putDiscriminator(data, ConfigAccountDiscriminator, &offset)
	binary.PutUint64(data, obj.Id, &offset)
	binary.PutKey32(data, obj.Authority, &offset)
	binary.PutKey32(data, obj.Mint, &offset)
	binary.PutKey32(data, obj.Collection, &offset)
	binary.PutKey32(data, obj.Vault, &offset)
	binary.PutKey32(data, obj.AuthorityVault, &offset)
	binary.PutKey32(data, obj.NftsVault, &offset)
	binary.PutKey32(data, obj.AdminWithdrawDestination, &offset)
	binary.PutUint32(data, obj.PoolCount, &offset)
	binary.PutUint64(data, obj.MaxCap, &offset)
	binary.PutUint64(data, obj.NftValueInTokens, &offset)
	binary.PutUint8(data, obj.NftsLimitPerUser, &offset)
	binary.PutUint64(data, obj.TotalStakedAmount, &offset)
	binary.PutUint64(data, obj.TotalNftsStaked, &offset)
	binary.PutUint8(data, obj.Bump, &offset)
	binary.PutUint8(data, obj.AuthorityVaultBump, &offset)

	return data
}

func (obj *ConfigAccount) Unmarshal(data []byte) error {
	if len(data) < ConfigAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	if !checkDiscriminator(data, ConfigAccountDiscriminator, &offset) {
		return ErrInvalidAccountData
	}

	binary.GetUint64(data, &obj.Id, &offset)
	binary.GetKey32(data, &obj.Authority, &offset)
	binary.GetKey32(data, &obj.Mint, &offset)
	binary.GetKey32(data, &obj.Collection, &offset)
	binary.GetKey32(data, &obj.Vault, &offset)
	binary.GetKey32(data, &obj.AuthorityVault, &offset)
	binary.GetKey32(data, &obj.NftsVault, &offset)
	binary.GetKey32(data, &obj.AdminWithdrawDestination, &offset)
	binary.GetUint32(data, &obj.PoolCount, &offset)
	binary.GetUint64(data, &obj.MaxCap, &offset)
	binary.GetUint64(data, &obj.NftValueInTokens, &offset)
	binary.GetUint8(data, &obj.NftsLimitPerUser, &offset)
	binary.GetUint64(data, &obj.TotalStakedAmount, &offset)
	binary.GetUint64(data, &obj.TotalNftsStaked, &offset)
	binary.GetUint8(data, &obj.Bump, &offset)
	binary.GetUint8(data, &obj.AuthorityVaultBump, &offset)
	binary.Skip(96, &offset) // padding

	return nil
}

// RemainingCap is how many more tokens the deployment accepts across all
// pools.
func (obj *ConfigAccount) RemainingCap() uint64 {
	if obj.TotalStakedAmount >= obj.MaxCap {
		return 0
	}
	return obj.MaxCap - obj.TotalStakedAmount
}

func (obj *ConfigAccount) String() string {
	return fmt.Sprintf(
		"Config{id=%d,authority=%s,mint=%s,collection=%s,vault=%s,authority_vault=%s,nfts_vault=%s,admin_withdraw_destination=%s,pool_count=%d,max_cap=%d,nft_value_in_tokens=%d,nfts_limit_per_user=%d,total_staked_amount=%d,total_nfts_staked=%d,bump=%d,authority_vault_bump=%d}",
		obj.Id,
		encodeKey(obj.Authority),
		encodeKey(obj.Mint),
		encodeKey(obj.Collection),
		encodeKey(obj.Vault),
		encodeKey(obj.AuthorityVault),
		encodeKey(obj.NftsVault),
		encodeKey(obj.AdminWithdrawDestination),
		obj.PoolCount,
		obj.MaxCap,
		obj.NftValueInTokens,
		obj.NftsLimitPerUser,
		obj.TotalStakedAmount,
		obj.TotalNftsStaked,
		obj.Bump,
		obj.AuthorityVaultBump,
	)
}
