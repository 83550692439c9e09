package bertstaking

import (
	"github.com/bert-labs/bert-staking-client/pkg/solana"
)

func (p Program) NewAdminActivatePoolInstruction(
	accounts *AdminPoolInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, discriminatorSize)
	putInstructionType(data, InstructionTypeAdminActivatePool, &offset)

	return solana.Instruction{
		Program: p.ID(),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: accounts.metas(),
	}
}

func NewAdminActivatePoolInstruction(accounts *AdminPoolInstructionAccounts) solana.Instruction {
	return DefaultProgram.NewAdminActivatePoolInstruction(accounts)
}
