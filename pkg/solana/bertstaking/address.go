package bertstaking

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

var (
	ConfigPrefix         = []byte("config")
	AuthorityVaultPrefix = []byte("authority_vault")
	PoolPrefix           = []byte("pool")
	PositionPrefix       = []byte("position")
	UserPrefix           = []byte("user")
	UserPoolStatsPrefix  = []byte("user_pool_stats")
	NftsVaultPrefix      = []byte("nfts_vault")
)

type GetConfigAddressArgs struct {
	Authority ed25519.PublicKey
	Id        uint64
}

func (p Program) GetConfigAddress(args *GetConfigAddressArgs) (ed25519.PublicKey, uint8, error) {
	if err := checkKeys(args.Authority); err != nil {
		return nil, 0, err
	}
	return solana.FindProgramAddressAndBump(
		p.ID(),
		ConfigPrefix,
		args.Authority,
		u64le(args.Id),
	)
}

type GetAuthorityVaultAddressArgs struct {
	Config ed25519.PublicKey
	Mint   ed25519.PublicKey
}

// GetAuthorityVaultAddress derives the yield reserve token account. The seed
// order is config then mint.
func (p Program) GetAuthorityVaultAddress(args *GetAuthorityVaultAddressArgs) (ed25519.PublicKey, uint8, error) {
	if err := checkKeys(args.Config, args.Mint); err != nil {
		return nil, 0, err
	}
	return solana.FindProgramAddressAndBump(
		p.ID(),
		AuthorityVaultPrefix,
		args.Config,
		args.Mint,
	)
}

type GetPoolAddressArgs struct {
	Config ed25519.PublicKey
	Index  uint32
}

func (p Program) GetPoolAddress(args *GetPoolAddressArgs) (ed25519.PublicKey, uint8, error) {
	if err := checkKeys(args.Config); err != nil {
		return nil, 0, err
	}
	return solana.FindProgramAddressAndBump(
		p.ID(),
		PoolPrefix,
		args.Config,
		u32le(args.Index),
	)
}

type GetPositionAddressArgs struct {
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey
	Id    uint64
}

// GetPositionAddress derives a token position.
func (p Program) GetPositionAddress(args *GetPositionAddressArgs) (ed25519.PublicKey, uint8, error) {
	if err := checkKeys(args.Owner, args.Mint); err != nil {
		return nil, 0, err
	}
	return solana.FindProgramAddressAndBump(
		p.ID(),
		PositionPrefix,
		args.Owner,
		args.Mint,
		u64le(args.Id),
	)
}

type GetNftPositionAddressArgs struct {
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey
	Asset ed25519.PublicKey
	Id    uint64
}

// GetNftPositionAddress derives an NFT position. The id keeps restakes of the
// same asset on distinct accounts.
func (p Program) GetNftPositionAddress(args *GetNftPositionAddressArgs) (ed25519.PublicKey, uint8, error) {
	if err := checkKeys(args.Owner, args.Mint, args.Asset); err != nil {
		return nil, 0, err
	}
	return solana.FindProgramAddressAndBump(
		p.ID(),
		PositionPrefix,
		args.Owner,
		args.Mint,
		args.Asset,
		u64le(args.Id),
	)
}

// GetLegacyNftPositionAddress derives NFT positions opened by program
// versions that did not seed positions with an id. Id is ignored.
func (p Program) GetLegacyNftPositionAddress(args *GetNftPositionAddressArgs) (ed25519.PublicKey, uint8, error) {
	if err := checkKeys(args.Owner, args.Mint, args.Asset); err != nil {
		return nil, 0, err
	}
	return solana.FindProgramAddressAndBump(
		p.ID(),
		PositionPrefix,
		args.Owner,
		args.Mint,
		args.Asset,
	)
}

type GetUserAddressArgs struct {
	Owner  ed25519.PublicKey
	Config ed25519.PublicKey
}

func (p Program) GetUserAddress(args *GetUserAddressArgs) (ed25519.PublicKey, uint8, error) {
	if err := checkKeys(args.Owner, args.Config); err != nil {
		return nil, 0, err
	}
	return solana.FindProgramAddressAndBump(
		p.ID(),
		UserPrefix,
		args.Owner,
		args.Config,
	)
}

type GetUserPoolStatsAddressArgs struct {
	Owner ed25519.PublicKey
	Pool  ed25519.PublicKey
}

func (p Program) GetUserPoolStatsAddress(args *GetUserPoolStatsAddressArgs) (ed25519.PublicKey, uint8, error) {
	if err := checkKeys(args.Owner, args.Pool); err != nil {
		return nil, 0, err
	}
	return solana.FindProgramAddressAndBump(
		p.ID(),
		UserPoolStatsPrefix,
		args.Owner,
		args.Pool,
	)
}

type GetNftsVaultAddressArgs struct {
	Config ed25519.PublicKey

	// Override is returned as is when set.
	Override ed25519.PublicKey
}

func (p Program) GetNftsVaultAddress(args *GetNftsVaultAddressArgs) (ed25519.PublicKey, uint8, error) {
	if len(args.Override) > 0 {
		if err := checkKeys(args.Override); err != nil {
			return nil, 0, err
		}
		return args.Override, 0, nil
	}

	if err := checkKeys(args.Config); err != nil {
		return nil, 0, err
	}
	return solana.FindProgramAddressAndBump(
		p.ID(),
		NftsVaultPrefix,
		args.Config,
	)
}

// GetVaultAddress returns the principal vault, the config's associated token
// account for mint.
func GetVaultAddress(config, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	if err := checkKeys(config, mint); err != nil {
		return nil, err
	}
	return token.GetAssociatedAccount(config, mint)
}

func GetConfigAddress(args *GetConfigAddressArgs) (ed25519.PublicKey, uint8, error) {
	return DefaultProgram.GetConfigAddress(args)
}

func GetAuthorityVaultAddress(args *GetAuthorityVaultAddressArgs) (ed25519.PublicKey, uint8, error) {
	return DefaultProgram.GetAuthorityVaultAddress(args)
}

func GetPoolAddress(args *GetPoolAddressArgs) (ed25519.PublicKey, uint8, error) {
	return DefaultProgram.GetPoolAddress(args)
}

func GetPositionAddress(args *GetPositionAddressArgs) (ed25519.PublicKey, uint8, error) {
	return DefaultProgram.GetPositionAddress(args)
}

func GetNftPositionAddress(args *GetNftPositionAddressArgs) (ed25519.PublicKey, uint8, error) {
	return DefaultProgram.GetNftPositionAddress(args)
}

func GetLegacyNftPositionAddress(args *GetNftPositionAddressArgs) (ed25519.PublicKey, uint8, error) {
	return DefaultProgram.GetLegacyNftPositionAddress(args)
}

func GetUserAddress(args *GetUserAddressArgs) (ed25519.PublicKey, uint8, error) {
	return DefaultProgram.GetUserAddress(args)
}

func GetUserPoolStatsAddress(args *GetUserPoolStatsAddressArgs) (ed25519.PublicKey, uint8, error) {
	return DefaultProgram.GetUserPoolStatsAddress(args)
}

func GetNftsVaultAddress(args *GetNftsVaultAddressArgs) (ed25519.PublicKey, uint8, error) {
	return DefaultProgram.GetNftsVaultAddress(args)
}

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
