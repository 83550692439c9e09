package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
	"github.com/bert-labs/bert-staking-client/pkg/solana/system"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

const (
	StakeTokenInstructionArgsSize = (8 + // id
		8) // amount
)

type StakeTokenInstructionArgs struct {
	Id     uint64
	Amount uint64
}

type StakeTokenInstructionAccounts struct {
	Owner         ed25519.PublicKey
	Config        ed25519.PublicKey
	Pool          ed25519.PublicKey
	UserAccount   ed25519.PublicKey
	UserPoolStats ed25519.PublicKey
	Position      ed25519.PublicKey
	Mint          ed25519.PublicKey
	TokenAccount  ed25519.PublicKey
	Vault         ed25519.PublicKey
}

func (p Program) NewStakeTokenInstruction(
	accounts *StakeTokenInstructionAccounts,
	args *StakeTokenInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+StakeTokenInstructionArgsSize)

	putInstructionType(data, InstructionTypeStakeToken, &offset)
	binary.PutUint64(data, args.Id, &offset)
	binary.PutUint64(data, args.Amount, &offset)

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
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TokenAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Vault,
				IsWritable: true,
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

func NewStakeTokenInstruction(
	accounts *StakeTokenInstructionAccounts,
	args *StakeTokenInstructionArgs,
) solana.Instruction {
	return DefaultProgram.NewStakeTokenInstruction(accounts, args)
}

func DecodeStakeTokenInstructionArgs(data []byte) (*StakeTokenInstructionArgs, error) {
	var offset int
	if err := checkInstructionType(data, InstructionTypeStakeToken, StakeTokenInstructionArgsSize, &offset); err != nil {
		return nil, err
	}

	var args StakeTokenInstructionArgs
	binary.GetUint64(data, &args.Id, &offset)
	binary.GetUint64(data, &args.Amount, &offset)
	return &args, nil
}
