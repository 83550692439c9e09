package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	programDerivedAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidPublicKey      = errors.New("invalid public key")
	ErrNoViableBumpSeed      = errors.New("no viable bump seed")
)

var (
	programHashCtor = sha256.New
)

// ParsePublicKey decodes a base58 encoded 32 byte public key.
func ParsePublicKey(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base58 public key: %q", value)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidPublicKey, "%q decodes to %d bytes", value, len(decoded))
	}
	return decoded, nil
}

// MustParsePublicKey is ParsePublicKey for package level constants.
func MustParsePublicKey(value string) ed25519.PublicKey {
	key, err := ParsePublicKey(value)
	if err != nil {
		panic(err)
	}
	return key
}

// IsOnCurve reports whether the key is a valid compressed ed25519 point,
// meaning a private key can exist for it.
func IsOnCurve(key ed25519.PublicKey) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}

	var compressed [32]byte
	copy(compressed[:], key)

	// edwards25519.ExtendedGroupElement is internal to golang.org/x/crypto,
	// so the decompression check comes from the jdgcs fork.
	var point edwards25519.ExtendedGroupElement
	return point.FromBytes(&compressed)
}

// CreateProgramAddress hashes the seeds, the program id and the PDA marker.
// Addresses that land on the ed25519 curve are rejected with ErrInvalidPublicKey
// since they could have a private key.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return nil, ErrTooManySeeds
	}

	h := programHashCtor()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(program)
	h.Write([]byte(programDerivedAddressMarker))

	address := ed25519.PublicKey(h.Sum(nil)[:ed25519.PublicKeySize])
	if IsOnCurve(address) {
		return nil, ErrInvalidPublicKey
	}
	return address, nil
}

// FindProgramAddressAndBump walks the bump seed down from 255 and returns the
// first off-curve address along with the bump that produced it.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}

		address, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return address, uint8(bump), nil
		case ErrInvalidPublicKey:
			continue
		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrNoViableBumpSeed
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	address, _, err := FindProgramAddressAndBump(program, seeds...)
	return address, err
}
