package token

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
)

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTokenAccount indicates that a Solana account exists at the
	// given address, but it is either not initialized, or not configured correctly.
	ErrInvalidTokenAccount = errors.New("invalid token account")
)

// Client provides utilities for accessing token accounts and mints.
type Client struct {
	sc solana.Client
}

// NewClient creates a new Client.
func NewClient(sc solana.Client) *Client {
	return &Client{sc: sc}
}

// GetAccount returns the token account info for the specified account.
//
// If the account is not owned by the token program, is not initialized, or
// belongs to a different mint, then ErrInvalidTokenAccount is returned.
func (c *Client) GetAccount(ctx context.Context, accountID, mint ed25519.PublicKey, commitment solana.Commitment) (*Account, error) {
	accountInfo, err := c.sc.GetAccountInfo(ctx, accountID, commitment)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(accountInfo.Owner, ProgramKey) {
		return nil, ErrInvalidTokenAccount
	}

	var account Account
	if err := account.Unmarshal(accountInfo.Data); err != nil {
		return nil, ErrInvalidTokenAccount
	}

	if account.State == AccountStateUninitialized || !bytes.Equal(mint, account.Mint) {
		return nil, ErrInvalidTokenAccount
	}

	return &account, nil
}

// GetMint returns the mint at address.
func (c *Client) GetMint(ctx context.Context, address ed25519.PublicKey, commitment solana.Commitment) (*Mint, error) {
	accountInfo, err := c.sc.GetAccountInfo(ctx, address, commitment)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(accountInfo.Owner, ProgramKey) {
		return nil, ErrInvalidMintData
	}

	var mint Mint
	if err := mint.Unmarshal(accountInfo.Data); err != nil {
		return nil, err
	}
	if !mint.IsInitialized {
		return nil, ErrInvalidMintData
	}

	return &mint, nil
}
