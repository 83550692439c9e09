package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
)

// AdminPoolInstructionAccounts are the accounts of every instruction that
// changes a single pool's state.
type AdminPoolInstructionAccounts struct {
	Authority ed25519.PublicKey
	Config    ed25519.PublicKey
	Pool      ed25519.PublicKey
}

func (p Program) NewAdminPausePoolInstruction(
	accounts *AdminPoolInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, discriminatorSize)
	putInstructionType(data, InstructionTypeAdminPausePool, &offset)

	return solana.Instruction{
		Program: p.ID(),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: accounts.metas(),
	}
}

func NewAdminPausePoolInstruction(accounts *AdminPoolInstructionAccounts) solana.Instruction {
	return DefaultProgram.NewAdminPausePoolInstruction(accounts)
}

func (accounts *AdminPoolInstructionAccounts) metas() []solana.AccountMeta {
	return []solana.AccountMeta{
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
			PublicKey:  accounts.Pool,
			IsWritable: true,
			IsSigner:   false,
		},
	}
}
