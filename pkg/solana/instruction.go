package solana

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// AccountMeta is one account reference in an instruction's account list.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	isPayer   bool
	isProgram bool
}

// NewAccountMeta returns a writable AccountMeta.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta returns a readonly AccountMeta.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey: pub,
		IsSigner:  isSigner,
	}
}

func (m AccountMeta) String() string {
	return fmt.Sprintf("%s(signer=%t,writable=%t)", base58.Encode(m.PublicKey), m.IsSigner, m.IsWritable)
}

// accountOrder sorts account metas the way the runtime expects them in a
// message: payer, then signers, then writable, then programs last.
//
// Reference: https://docs.solana.com/developing/programming-model/transactions#account-addresses-format
type accountOrder []AccountMeta

func (s accountOrder) Len() int      { return len(s) }
func (s accountOrder) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s accountOrder) Less(i, j int) bool {
	a, b := s[i], s[j]
	switch {
	case a.isPayer != b.isPayer:
		return a.isPayer
	case a.isProgram != b.isProgram:
		return !a.isProgram
	case a.IsSigner != b.IsSigner:
		return a.IsSigner
	case a.IsWritable != b.IsWritable:
		return a.IsWritable
	}
	return bytes.Compare(a.PublicKey, b.PublicKey) < 0
}

// Instruction is a single program invocation.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction is an instruction whose program and accounts have been
// replaced by indexes into the message account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
