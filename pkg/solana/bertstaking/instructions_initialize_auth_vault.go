package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/system"
)

type InitializeAuthVaultInstructionAccounts struct {
	Authority      ed25519.PublicKey
	Config         ed25519.PublicKey
	Mint           ed25519.PublicKey
	AuthorityVault ed25519.PublicKey

	// Defaults to the SPL token program.
	TokenProgram ed25519.PublicKey
}

func (p Program) NewInitializeAuthVaultInstruction(
	accounts *InitializeAuthVaultInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, discriminatorSize)
	putInstructionType(data, InstructionTypeInitializeAuthVault, &offset)

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
				PublicKey:  accounts.AuthorityVault,
				IsWritable: true,
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
		},
	}
}

func NewInitializeAuthVaultInstruction(accounts *InitializeAuthVaultInstructionAccounts) solana.Instruction {
	return DefaultProgram.NewInitializeAuthVaultInstruction(accounts)
}
