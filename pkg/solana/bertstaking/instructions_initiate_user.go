package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/system"
)

type InitiateUserInstructionAccounts struct {
	Owner       ed25519.PublicKey
	Config      ed25519.PublicKey
	Pool        ed25519.PublicKey
	UserAccount ed25519.PublicKey
	Mint        ed25519.PublicKey
}

// NewInitiateUserInstruction creates the owner's user account for a config.
// It fails on chain if the account already exists.
func (p Program) NewInitiateUserInstruction(
	accounts *InitiateUserInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, discriminatorSize)
	putInstructionType(data, InstructionTypeInitiateUser, &offset)

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
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Pool,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UserAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  system.ProgramKey,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func NewInitiateUserInstruction(accounts *InitiateUserInstructionAccounts) solana.Instruction {
	return DefaultProgram.NewInitiateUserInstruction(accounts)
}
