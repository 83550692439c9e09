package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/bert-labs/bert-staking-client/pkg/solana/shortvec"
)

// Marshal returns the wire encoding of the transaction.
func (t Transaction) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	_, _ = shortvec.EncodeLen(b, len(t.Signatures))
	for _, s := range t.Signatures {
		b.Write(s[:])
	}
	b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(data []byte) error {
	buf := bytes.NewReader(data)

	count, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read signature count")
	}

	t.Signatures = make([]Signature, count)
	for i := range t.Signatures {
		if _, err := io.ReadFull(buf, t.Signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature %d", i)
		}
	}

	rest, _ := io.ReadAll(buf)
	return t.Message.Unmarshal(rest)
}

// Marshal returns the bytes that are signed.
func (m Message) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	b.WriteByte(m.Header.NumSignatures)
	b.WriteByte(m.Header.NumReadonlySigned)
	b.WriteByte(m.Header.NumReadOnly)

	_, _ = shortvec.EncodeLen(b, len(m.Accounts))
	for _, account := range m.Accounts {
		b.Write(account)
	}

	b.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(b, len(m.Instructions))
	for _, ixn := range m.Instructions {
		b.WriteByte(ixn.ProgramIndex)

		_, _ = shortvec.EncodeLen(b, len(ixn.Accounts))
		b.Write(ixn.Accounts)

		_, _ = shortvec.EncodeLen(b, len(ixn.Data))
		b.Write(ixn.Data)
	}

	return b.Bytes()
}

func (m *Message) Unmarshal(data []byte) (err error) {
	if len(data) == 0 {
		return io.ErrUnexpectedEOF
	}
	// The high bit marks a versioned message.
	if data[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	buf := bytes.NewReader(data)

	header := []*byte{&m.Header.NumSignatures, &m.Header.NumReadonlySigned, &m.Header.NumReadOnly}
	for _, field := range header {
		if *field, err = buf.ReadByte(); err != nil {
			return errors.Wrap(err, "failed to read header")
		}
	}

	accountCount, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read account count")
	}
	m.Accounts = make([]ed25519.PublicKey, accountCount)
	for i := range m.Accounts {
		m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		if _, err = io.ReadFull(buf, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account %d", i)
		}
	}

	if _, err = io.ReadFull(buf, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent blockhash")
	}

	instructionCount, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction count")
	}
	m.Instructions = make([]CompiledInstruction, instructionCount)
	for i := range m.Instructions {
		ixn := &m.Instructions[i]

		if ixn.ProgramIndex, err = buf.ReadByte(); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d program index", i)
		}
		if int(ixn.ProgramIndex) >= accountCount {
			return errors.Errorf("instruction %d program index %d out of range", i, ixn.ProgramIndex)
		}

		if ixn.Accounts, err = readShortVecBytes(buf); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d accounts", i)
		}
		for _, index := range ixn.Accounts {
			if int(index) >= accountCount {
				return errors.Errorf("instruction %d account index %d out of range", i, index)
			}
		}

		if ixn.Data, err = readShortVecBytes(buf); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d data", i)
		}
	}

	return nil
}

func readShortVecBytes(r *bytes.Reader) ([]byte, error) {
	length, err := shortvec.DecodeLen(r)
	if err != nil {
		return nil, err
	}

	value := make([]byte, length)
	if _, err := io.ReadFull(r, value); err != nil {
		return nil, err
	}
	return value, nil
}
