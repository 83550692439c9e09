package computebudget

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

const (
	commandRequestUnits uint8 = iota
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

var errInvalidInstruction = errors.New("invalid compute budget instruction")

// SetComputeUnitLimit caps the compute units the transaction may consume.
func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	data := make([]byte, 1+4)
	data[0] = commandSetComputeUnitLimit
	binary.LittleEndian.PutUint32(data[1:], computeUnitLimit)

	return solana.NewInstruction(ProgramKey, data)
}

// SetComputeUnitPrice sets the priority fee in micro-lamports per compute
// unit.
func SetComputeUnitPrice(microLamports uint64) solana.Instruction {
	data := make([]byte, 1+8)
	data[0] = commandSetComputeUnitPrice
	binary.LittleEndian.PutUint64(data[1:], microLamports)

	return solana.NewInstruction(ProgramKey, data)
}

// WithBudget prepends limit and price instructions to instructions. Zero
// values are omitted.
func WithBudget(limit uint32, price uint64, instructions ...solana.Instruction) []solana.Instruction {
	res := make([]solana.Instruction, 0, len(instructions)+2)
	if limit > 0 {
		res = append(res, SetComputeUnitLimit(limit))
	}
	if price > 0 {
		res = append(res, SetComputeUnitPrice(price))
	}
	return append(res, instructions...)
}

// IsBudgetInstruction reports whether ixn targets the compute budget program.
func IsBudgetInstruction(ixn solana.Instruction) bool {
	return bytes.Equal(ixn.Program, ProgramKey)
}

func ParseSetComputeUnitLimitIxnData(data []byte) (uint32, error) {
	if len(data) != 5 || data[0] != commandSetComputeUnitLimit {
		return 0, errInvalidInstruction
	}

	return binary.LittleEndian.Uint32(data[1:]), nil
}

func ParseSetComputeUnitPriceIxnData(data []byte) (uint64, error) {
	if len(data) != 9 || data[0] != commandSetComputeUnitPrice {
		return 0, errInvalidInstruction
	}

	return binary.LittleEndian.Uint64(data[1:]), nil
}
