package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/system"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

type ClaimPositionTokenInstructionAccounts struct {
	Owner          ed25519.PublicKey
	Config         ed25519.PublicKey
	Pool           ed25519.PublicKey
	UserAccount    ed25519.PublicKey
	UserPoolStats  ed25519.PublicKey
	Position       ed25519.PublicKey
	Collection     ed25519.PublicKey
	Mint           ed25519.PublicKey
	TokenAccount   ed25519.PublicKey
	Vault          ed25519.PublicKey
	AuthorityVault ed25519.PublicKey
}

// NewClaimPositionTokenInstruction returns principal from the vault and yield
// from the authority vault to the owner's token account.
func (p Program) NewClaimPositionTokenInstruction(
	accounts *ClaimPositionTokenInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, discriminatorSize)
	putInstructionType(data, InstructionTypeClaimPositionToken, &offset)

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
				PublicKey:  accounts.Collection,
				IsWritable: false,
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
				PublicKey:  accounts.AuthorityVault,
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
		},
	}
}

func NewClaimPositionTokenInstruction(accounts *ClaimPositionTokenInstructionAccounts) solana.Instruction {
	return DefaultProgram.NewClaimPositionTokenInstruction(accounts)
}
