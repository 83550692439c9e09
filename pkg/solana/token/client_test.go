package token

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
)

type fakeSolanaClient struct {
	solana.Client

	accounts map[string]solana.AccountInfo
}

func (f *fakeSolanaClient) GetAccountInfo(_ context.Context, account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	info, ok := f.accounts[string(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func TestClient_GetAccount(t *testing.T) {
	keys := generateKeys(t, 5)
	mint, owner := keys[0], keys[1]

	valid := Account{Mint: mint, Owner: owner, Amount: 42, State: AccountStateInitialized}
	uninitialized := Account{Mint: mint, Owner: owner}

	sc := &fakeSolanaClient{accounts: map[string]solana.AccountInfo{
		string(keys[2]): {Owner: ProgramKey, Data: valid.Marshal()},
		string(keys[3]): {Owner: ProgramKey, Data: uninitialized.Marshal()},
		string(keys[4]): {Owner: owner, Data: valid.Marshal()},
	}}
	c := NewClient(sc)

	account, err := c.GetAccount(context.Background(), keys[2], mint, solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 42, account.Amount)
	assert.EqualValues(t, owner, account.Owner)

	_, err = c.GetAccount(context.Background(), keys[2], owner, solana.CommitmentConfirmed)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = c.GetAccount(context.Background(), keys[3], mint, solana.CommitmentConfirmed)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = c.GetAccount(context.Background(), keys[4], mint, solana.CommitmentConfirmed)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = c.GetAccount(context.Background(), keys[0], mint, solana.CommitmentConfirmed)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestClient_GetMint(t *testing.T) {
	keys := generateKeys(t, 3)

	mint := Mint{MintAuthority: keys[2], Supply: 100, Decimals: 9, IsInitialized: true}
	sc := &fakeSolanaClient{accounts: map[string]solana.AccountInfo{
		string(keys[0]): {Owner: ProgramKey, Data: mint.Marshal()},
		string(keys[1]): {Owner: ProgramKey, Data: (&Mint{}).Marshal()},
	}}
	c := NewClient(sc)

	actual, err := c.GetMint(context.Background(), keys[0], solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 9, actual.Decimals)
	assert.EqualValues(t, 100, actual.Supply)

	_, err = c.GetMint(context.Background(), keys[1], solana.CommitmentConfirmed)
	assert.Equal(t, ErrInvalidMintData, err)

	_, err = c.GetMint(context.Background(), keys[2], solana.CommitmentConfirmed)
	assert.Equal(t, ErrAccountNotFound, err)
}
