package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
)

// ProgramKey is the address of the token program that should be used.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

type Command byte

const (
	CommandInitializeMint Command = iota
	CommandInitializeAccount
	CommandInitializeMultisig
	CommandTransfer
	CommandApprove
	CommandRevoke
	CommandSetAuthority
	CommandMintTo
	CommandBurn
	CommandCloseAccount
	CommandFreezeAccount
	CommandThawAccount
	CommandTransferChecked
)

var ErrInvalidInstruction = errors.New("invalid token instruction")

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L76-L91
func Transfer(source, dest, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The source account.
	//   1. `[writable]` The destination account.
	//   2. `[signer]` The source account's owner/delegate.
	data := make([]byte, 1+8)
	data[0] = byte(CommandTransfer)
	binary.LittleEndian.PutUint64(data[1:], amount)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(source, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

// TransferChecked is Transfer with the mint and its decimals asserted by the
// token program.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L230-L252
func TransferChecked(source, mint, dest, owner ed25519.PublicKey, amount uint64, decimals byte) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The source account.
	//   1. `[]` The token mint.
	//   2. `[writable]` The destination account.
	//   3. `[signer]` The source account's owner/delegate.
	data := make([]byte, 1+8+1)
	data[0] = byte(CommandTransferChecked)
	binary.LittleEndian.PutUint64(data[1:], amount)
	data[9] = decimals

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

type DecompiledTransferChecked struct {
	Source   ed25519.PublicKey
	Mint     ed25519.PublicKey
	Dest     ed25519.PublicKey
	Owner    ed25519.PublicKey
	Amount   uint64
	Decimals byte
}

// DecompileTransferChecked is the inverse of TransferChecked.
func DecompileTransferChecked(ixn solana.Instruction) (*DecompiledTransferChecked, error) {
	if !bytes.Equal(ixn.Program, ProgramKey) {
		return nil, ErrInvalidInstruction
	}
	if len(ixn.Data) != 10 || Command(ixn.Data[0]) != CommandTransferChecked {
		return nil, ErrInvalidInstruction
	}
	if len(ixn.Accounts) != 4 {
		return nil, errors.Errorf("invalid number of accounts: %d (expected %d)", len(ixn.Accounts), 4)
	}

	return &DecompiledTransferChecked{
		Source:   ixn.Accounts[0].PublicKey,
		Mint:     ixn.Accounts[1].PublicKey,
		Dest:     ixn.Accounts[2].PublicKey,
		Owner:    ixn.Accounts[3].PublicKey,
		Amount:   binary.LittleEndian.Uint64(ixn.Data[1:]),
		Decimals: ixn.Data[9],
	}, nil
}
