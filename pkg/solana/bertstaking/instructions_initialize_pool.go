package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/binary"
	"github.com/bert-labs/bert-staking-client/pkg/solana/system"
)

const (
	InitializePoolInstructionArgsSize = (4 + // index
		2 + // lock_period_days
		8 + // yield_rate
		4 + // max_nfts_cap
		8 + // max_tokens_cap
		8) // max_value_cap
)

type InitializePoolInstructionArgs struct {
	Index          uint32
	LockPeriodDays uint16
	YieldRate      uint64
	MaxNftsCap     uint32
	MaxTokensCap   uint64
	MaxValueCap    uint64
}

type InitializePoolInstructionAccounts struct {
	Authority ed25519.PublicKey
	Config    ed25519.PublicKey
	Pool      ed25519.PublicKey
}

func (p Program) NewInitializePoolInstruction(
	accounts *InitializePoolInstructionAccounts,
	args *InitializePoolInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+InitializePoolInstructionArgsSize)

	putInstructionType(data, InstructionTypeInitializePool, &offset)
	binary.PutUint32(data, args.Index, &offset)
	binary.PutUint16(data, args.LockPeriodDays, &offset)
	binary.PutUint64(data, args.YieldRate, &offset)
	binary.PutUint32(data, args.MaxNftsCap, &offset)
	binary.PutUint64(data, args.MaxTokensCap, &offset)
	binary.PutUint64(data, args.MaxValueCap, &offset)

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
				PublicKey:  accounts.Pool,
				IsWritable: true,
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

func NewInitializePoolInstruction(
	accounts *InitializePoolInstructionAccounts,
	args *InitializePoolInstructionArgs,
) solana.Instruction {
	return DefaultProgram.NewInitializePoolInstruction(accounts, args)
}

func DecodeInitializePoolInstructionArgs(data []byte) (*InitializePoolInstructionArgs, error) {
	var offset int
	if err := checkInstructionType(data, InstructionTypeInitializePool, InitializePoolInstructionArgsSize, &offset); err != nil {
		return nil, err
	}

	var args InitializePoolInstructionArgs
	binary.GetUint32(data, &args.Index, &offset)
	binary.GetUint16(data, &args.LockPeriodDays, &offset)
	binary.GetUint64(data, &args.YieldRate, &offset)
	binary.GetUint32(data, &args.MaxNftsCap, &offset)
	binary.GetUint64(data, &args.MaxTokensCap, &offset)
	binary.GetUint64(data, &args.MaxValueCap, &offset)
	return &args, nil
}
