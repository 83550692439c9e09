package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
	"github.com/bert-labs/bert-staking-client/pkg/solana/system"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

const (
	InitializeInstructionArgsSize = (8 + // id
		8 + // max_cap
		8 + // nft_value_in_tokens
		1) // nfts_limit_per_user
)

type InitializeInstructionArgs struct {
	Id               uint64
	MaxCap           uint64
	NftValueInTokens uint64
	NftsLimitPerUser uint8
}

type InitializeInstructionAccounts struct {
	Authority                ed25519.PublicKey
	Config                   ed25519.PublicKey
	Mint                     ed25519.PublicKey
	Collection               ed25519.PublicKey
	Vault                    ed25519.PublicKey
	NftsVault                ed25519.PublicKey
	AdminWithdrawDestination ed25519.PublicKey

	// Defaults to the SPL token program.
	TokenProgram ed25519.PublicKey
}

func (p Program) NewInitializeInstruction(
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+InitializeInstructionArgsSize)

	putInstructionType(data, InstructionTypeInitialize, &offset)
	binary.PutUint64(data, args.Id, &offset)
	binary.PutUint64(data, args.MaxCap, &offset)
	binary.PutUint64(data, args.NftValueInTokens, &offset)
	binary.PutUint8(data, args.NftsLimitPerUser, &offset)

	return solana.Instruction{
		Program: p.ID(),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Authority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Config,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Collection,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Vault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftsVault,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.AdminWithdrawDestination,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  system.ProgramKey,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  tokenProgramOrDefault(accounts.TokenProgram),
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  token.AssociatedTokenAccountProgramKey,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func NewInitializeInstruction(
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	return DefaultProgram.NewInitializeInstruction(accounts, args)
}

func DecodeInitializeInstructionArgs(data []byte) (*InitializeInstructionArgs, error) {
	var offset int
	if err := checkInstructionType(data, InstructionTypeInitialize, InitializeInstructionArgsSize, &offset); err != nil {
		return nil, err
	}

	var args InitializeInstructionArgs
	binary.GetUint64(data, &args.Id, &offset)
	binary.GetUint64(data, &args.MaxCap, &offset)
	binary.GetUint64(data, &args.NftValueInTokens, &offset)
	binary.GetUint8(data, &args.NftsLimitPerUser, &offset)
	return &args, nil
}
