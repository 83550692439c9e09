package bertstaking

import (
	"github.com/bert-labs/bert-staking-client/pkg/solana"
)

// NewAdminSetPoolConfigInstruction replaces a pool's terms. The program only
// accepts it while the pool is paused.
func (p Program) NewAdminSetPoolConfigInstruction(
	accounts *AdminPoolInstructionAccounts,
	args *PoolConfigArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+PoolConfigArgsSize)

	putInstructionType(data, InstructionTypeAdminSetPoolConfig, &offset)
	putPoolConfigArgs(data, args, &offset)

	return solana.Instruction{
		Program: p.ID(),

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: accounts.metas(),
	}
}

func NewAdminSetPoolConfigInstruction(
	accounts *AdminPoolInstructionAccounts,
	args *PoolConfigArgs,
) solana.Instruction {
	return DefaultProgram.NewAdminSetPoolConfigInstruction(accounts, args)
}

func DecodeAdminSetPoolConfigInstructionArgs(data []byte) (*PoolConfigArgs, error) {
	var offset int
	if err := checkInstructionType(data, InstructionTypeAdminSetPoolConfig, PoolConfigArgsSize, &offset); err != nil {
		return nil, err
	}

	var args PoolConfigArgs
	getPoolConfigArgs(data, &args, &offset)
	return &args, nil
}
