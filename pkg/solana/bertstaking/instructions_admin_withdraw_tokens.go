package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

const (
	AdminWithdrawTokensInstructionArgsSize = 8 // amount
)

type AdminWithdrawTokensInstructionArgs struct {
	Amount uint64
}

type AdminWithdrawTokensInstructionAccounts struct {
	Authority      ed25519.PublicKey
	Config         ed25519.PublicKey
	AuthorityVault ed25519.PublicKey

	// The associated token account of the config's admin withdraw
	// destination. It is the only account withdrawals may be sent to.
	AdminWithdrawDestination ed25519.PublicKey
}

func (p Program) NewAdminWithdrawTokensInstruction(
	accounts *AdminWithdrawTokensInstructionAccounts,
	args *AdminWithdrawTokensInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+AdminWithdrawTokensInstructionArgsSize)

	putInstructionType(data, InstructionTypeAdminWithdrawTokens, &offset)
	binary.PutUint64(data, args.Amount, &offset)

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
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.AuthorityVault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.AdminWithdrawDestination,
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
		},
	}
}

func NewAdminWithdrawTokensInstruction(
	accounts *AdminWithdrawTokensInstructionAccounts,
	args *AdminWithdrawTokensInstructionArgs,
) solana.Instruction {
	return DefaultProgram.NewAdminWithdrawTokensInstruction(accounts, args)
}

func DecodeAdminWithdrawTokensInstructionArgs(data []byte) (*AdminWithdrawTokensInstructionArgs, error) {
	var offset int
	if err := checkInstructionType(data, InstructionTypeAdminWithdrawTokens, AdminWithdrawTokensInstructionArgsSize, &offset); err != nil {
		return nil, err
	}

	var args AdminWithdrawTokensInstructionArgs
	binary.GetUint64(data, &args.Amount, &offset)
	return &args, nil
}
