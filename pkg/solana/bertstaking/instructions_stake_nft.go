package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
	"github.com/bert-labs/bert-staking-client/pkg/solana/system"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

const (
	StakeNftInstructionArgsSize = 8 // id
)

type StakeNftInstructionArgs struct {
	Id uint64
}

type StakeNftInstructionAccounts struct {
	Owner         ed25519.PublicKey
	Config        ed25519.PublicKey
	Pool          ed25519.PublicKey
	UserAccount   ed25519.PublicKey
	UserPoolStats ed25519.PublicKey
	Position      ed25519.PublicKey
	Asset         ed25519.PublicKey
	NftsVault     ed25519.PublicKey
	Collection    ed25519.PublicKey
	Mint          ed25519.PublicKey
}

// NewStakeNftInstruction transfers Asset into the NftsVault's custody through
// Metaplex Core and opens an NFT position.
func (p Program) NewStakeNftInstruction(
	accounts *StakeNftInstructionAccounts,
	args *StakeNftInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+StakeNftInstructionArgsSize)

	putInstructionType(data, InstructionTypeStakeNft, &offset)
	binary.PutUint64(data, args.Id, &offset)

	return solana.Instruction{
		Program: p.ID(),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Owner,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Config,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Pool,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UserAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UserPoolStats,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Position,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Asset,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftsVault,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Collection,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  MPL_CORE_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  token.ProgramKey,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  token.AssociatedTokenAccountProgramKey,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  system.ProgramKey,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  system.RentSysVar,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func NewStakeNftInstruction(
	accounts *StakeNftInstructionAccounts,
	args *StakeNftInstructionArgs,
) solana.Instruction {
	return DefaultProgram.NewStakeNftInstruction(accounts, args)
}

func DecodeStakeNftInstructionArgs(data []byte) (*StakeNftInstructionArgs, error) {
	var offset int
	if err := checkInstructionType(data, InstructionTypeStakeNft, StakeNftInstructionArgsSize, &offset); err != nil {
		return nil, err
	}

	var args StakeNftInstructionArgs
	binary.GetUint64(data, &args.Id, &offset)
	return &args, nil
}
