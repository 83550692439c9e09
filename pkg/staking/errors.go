package staking

import (
	"github.com/pkg/errors"
)

var (
	// ErrAccountNotFound indicates no account exists at the derived or given
	// address.
	ErrAccountNotFound = errors.New("staking: account not found")

	// ErrTooManyPositions indicates an owner scan matched more positions than
	// the configured limit.
	ErrTooManyPositions = errors.New("staking: too many positions")

	// ErrMissingSignature indicates a transaction was submitted without a
	// key for one of its signers.
	ErrMissingSignature = errors.New("staking: missing signature")
)
