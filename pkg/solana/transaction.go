package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// MaxTransactionSize is the largest serialized transaction a validator accepts.
//
// Reference: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
const MaxTransactionSize = 1232

var ErrTransactionTooLarge = errors.New("transaction exceeds max size")

type Signature [ed25519.SignatureSize]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

type Blockhash [sha256.Size]byte

func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is a legacy transaction message.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into a legacy message paid for by
// payer. Instructions keep their relative order, so the transaction executes
// them atomically in sequence.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	metas := []AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true, isPayer: true}}
	for _, ixn := range instructions {
		metas = append(metas, AccountMeta{PublicKey: ixn.Program, isProgram: true})
		metas = append(metas, ixn.Accounts...)
	}
	metas = dedupeAccountMetas(metas)
	sort.Sort(accountOrder(metas))

	var m Message
	for _, meta := range metas {
		key := meta.PublicKey
		if len(key) == 0 {
			key = make([]byte, ed25519.PublicKeySize)
		}
		m.Accounts = append(m.Accounts, key)

		switch {
		case meta.IsSigner && !meta.IsWritable:
			m.Header.NumSignatures++
			m.Header.NumReadonlySigned++
		case meta.IsSigner:
			m.Header.NumSignatures++
		case !meta.IsWritable:
			m.Header.NumReadOnly++
		}
	}

	for _, ixn := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, ixn.Program)),
			Data:         ixn.Data,
		}
		for _, account := range ixn.Accounts {
			compiled.Accounts = append(compiled.Accounts, byte(indexOf(m.Accounts, account.PublicKey)))
		}
		m.Instructions = append(m.Instructions, compiled)
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// Signature returns the first signature, which is the transaction id.
func (t *Transaction) Signature() Signature {
	if len(t.Signatures) == 0 {
		return Signature{}
	}
	return t.Signatures[0]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign signs the message with each key. Every key must belong to one of the
// message's signer slots.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	message := t.Message.Marshal()

	for _, signer := range signers {
		pub := signer.Public().(ed25519.PublicKey)

		index := indexOf(t.Message.Accounts, pub)
		if index < 0 || index >= len(t.Signatures) {
			return errors.Errorf("%s is not a signer of this transaction", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(signer, message))
	}

	return nil
}

// CheckSize returns ErrTransactionTooLarge when the serialized transaction
// would be rejected by validators.
func (t *Transaction) CheckSize() error {
	if size := len(t.Marshal()); size > MaxTransactionSize {
		return errors.Wrapf(ErrTransactionTooLarge, "%d bytes", size)
	}
	return nil
}

func (t *Transaction) String() string {
	var sb strings.Builder
	sb.WriteString("Signatures:\n")
	for i, s := range t.Signatures {
		fmt.Fprintf(&sb, "  %d: %s\n", i, s)
	}
	fmt.Fprintf(&sb, "Header: %+v\n", t.Message.Header)
	sb.WriteString("Accounts:\n")
	for i, a := range t.Message.Accounts {
		fmt.Fprintf(&sb, "  %d: %s\n", i, base58.Encode(a))
	}
	fmt.Fprintf(&sb, "Blockhash: %s\n", t.Message.RecentBlockhash)
	sb.WriteString("Instructions:\n")
	for i, ixn := range t.Message.Instructions {
		fmt.Fprintf(&sb, "  %d: program=%d accounts=%v data=%x\n", i, ixn.ProgramIndex, ixn.Accounts, ixn.Data)
	}
	return sb.String()
}

// dedupeAccountMetas collapses repeated keys, keeping the first position and
// the union of the signer and writable permissions.
func dedupeAccountMetas(metas []AccountMeta) []AccountMeta {
	unique := make([]AccountMeta, 0, len(metas))
	positions := make(map[string]int, len(metas))

	for _, meta := range metas {
		i, ok := positions[string(meta.PublicKey)]
		if !ok {
			positions[string(meta.PublicKey)] = len(unique)
			unique = append(unique, meta)
			continue
		}

		unique[i].IsSigner = unique[i].IsSigner || meta.IsSigner
		unique[i].IsWritable = unique[i].IsWritable || meta.IsWritable
		unique[i].isPayer = unique[i].isPayer || meta.isPayer
	}

	return unique
}

func indexOf(keys []ed25519.PublicKey, key ed25519.PublicKey) int {
	for i, k := range keys {
		if bytes.Equal(k, key) {
			return i
		}
	}
	return -1
}
