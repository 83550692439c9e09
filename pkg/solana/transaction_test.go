package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Taken from: https://github.com/solana-labs/solana/blob/14339dec0a960e8161d1165b6a8e5cfb73e78f23/sdk/src/transaction.rs#L523
// with the keypair corrected so the public key matches the seed.
const rustGeneratedTransaction = "ATMfBMZ8phHEheLph8K9TJhRKhnE4qNZvWiXdUdJRmlTCRsQjWmW2CkQJeRHBCcsqFm2gynjL40M9mTe0Dxp4QIBAAEDfEya6wnC7f3Cv53qnOEywwIJ928rIdqAlfXYI1adXroBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

func TestTransaction_CrossImpl(t *testing.T) {
	keypair := ed25519.NewKeyFromSeed([]byte{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75})
	program := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4, 2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	txn := NewTransaction(
		public(keypair),
		NewInstruction(
			program,
			[]byte{1, 2, 3},
			NewAccountMeta(public(keypair), true),
			NewAccountMeta(to, false),
		),
	)
	require.NoError(t, txn.Sign(keypair))
	assert.Equal(t, rustGeneratedTransaction, base64.StdEncoding.EncodeToString(txn.Marshal()))
}

func TestTransaction_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)
	program := public(generateKeys(t, 1)[0])

	txn := NewTransaction(
		public(keys[0]),
		NewInstruction(program, []byte{1, 2, 3}, NewAccountMeta(public(keys[1]), true), NewReadonlyAccountMeta(public(keys[2]), false)),
		NewInstruction(program, []byte{4}, NewAccountMeta(public(keys[3]), false)),
	)
	txn.SetBlockhash(Blockhash{1, 2, 3})
	require.NoError(t, txn.Sign(keys[0], keys[1]))
	require.NoError(t, txn.CheckSize())

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(txn.Marshal()))
	assert.Equal(t, txn.Signatures, decoded.Signatures)
	assert.Equal(t, txn.Message.Header, decoded.Message.Header)
	assert.Equal(t, txn.Message.Accounts, decoded.Message.Accounts)
	assert.Equal(t, txn.Message.RecentBlockhash, decoded.Message.RecentBlockhash)
	assert.Equal(t, txn.Message.Instructions, decoded.Message.Instructions)
	assert.Equal(t, txn.Signatures[0], txn.Signature())
}

func TestTransaction_AccountOrdering(t *testing.T) {
	keys := generateKeys(t, 5)
	payer, signer, writable, readonly := public(keys[0]), public(keys[1]), public(keys[2]), public(keys[3])
	program := public(keys[4])

	txn := NewTransaction(
		payer,
		NewInstruction(
			program,
			nil,
			NewReadonlyAccountMeta(readonly, false),
			NewAccountMeta(writable, false),
			NewReadonlyAccountMeta(signer, true),
		),
	)

	require.Len(t, txn.Message.Accounts, 5)
	assert.EqualValues(t, payer, txn.Message.Accounts[0])
	assert.EqualValues(t, signer, txn.Message.Accounts[1])
	assert.EqualValues(t, writable, txn.Message.Accounts[2])
	assert.EqualValues(t, readonly, txn.Message.Accounts[3])
	assert.EqualValues(t, program, txn.Message.Accounts[4])

	assert.Equal(t, Header{NumSignatures: 2, NumReadonlySigned: 1, NumReadOnly: 2}, txn.Message.Header)
	assert.Len(t, txn.Signatures, 2)

	require.Len(t, txn.Message.Instructions, 1)
	assert.EqualValues(t, 4, txn.Message.Instructions[0].ProgramIndex)
	assert.Equal(t, []byte{3, 2, 1}, txn.Message.Instructions[0].Accounts)
}

func TestTransaction_DuplicateKeysPromotePermissions(t *testing.T) {
	keys := generateKeys(t, 3)
	payer, shared, program := public(keys[0]), public(keys[1]), public(keys[2])

	txn := NewTransaction(
		payer,
		NewInstruction(program, nil, NewReadonlyAccountMeta(shared, false)),
		NewInstruction(program, nil, NewAccountMeta(shared, true), NewReadonlyAccountMeta(payer, false)),
	)

	require.Len(t, txn.Message.Accounts, 3)
	assert.EqualValues(t, payer, txn.Message.Accounts[0])
	assert.EqualValues(t, shared, txn.Message.Accounts[1])
	assert.Equal(t, Header{NumSignatures: 2, NumReadOnly: 1}, txn.Message.Header)

	assert.Equal(t, []byte{1}, txn.Message.Instructions[0].Accounts)
	assert.Equal(t, []byte{1, 0}, txn.Message.Instructions[1].Accounts)
}

func TestTransaction_SignUnknownKey(t *testing.T) {
	keys := generateKeys(t, 3)

	txn := NewTransaction(public(keys[0]), NewInstruction(public(keys[1]), nil))
	assert.Error(t, txn.Sign(keys[2]))
}

func TestTransaction_TooLarge(t *testing.T) {
	keys := generateKeys(t, 2)

	txn := NewTransaction(public(keys[0]), NewInstruction(public(keys[1]), make([]byte, MaxTransactionSize)))
	assert.ErrorIs(t, txn.CheckSize(), ErrTransactionTooLarge)
}

func TestMessage_UnmarshalInvalid(t *testing.T) {
	var m Message
	assert.Error(t, m.Unmarshal(nil))
	assert.Error(t, m.Unmarshal([]byte{0x80, 1, 0, 0}))
	assert.Error(t, m.Unmarshal([]byte{1, 0, 0, 1}))
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

func generateKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, amount)
	for i := range keys {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = priv
	}
	return keys
}
