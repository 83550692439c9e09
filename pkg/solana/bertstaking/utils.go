package bertstaking

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

const discriminatorSize = 8

func putDiscriminator(dst []byte, v []byte, offset *int) {
	copy(dst[*offset:], v)
	*offset += discriminatorSize
}

func checkDiscriminator(src []byte, expected []byte, offset *int) bool {
	ok := bytes.Equal(src[*offset:*offset+discriminatorSize], expected)
	*offset += discriminatorSize
	return ok
}

func checkKeys(keys ...ed25519.PublicKey) error {
	for _, key := range keys {
		if len(key) != ed25519.PublicKeySize {
			return errors.Wrapf(ErrInvalidArgument, "key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
		}
	}
	return nil
}

func encodeKey(key ed25519.PublicKey) string {
	if len(key) == 0 {
		return "<nil>"
	}
	return base58.Encode(key)
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}

// tokenProgramOrDefault allows instructions that accept any token interface
// program to default to the SPL token program.
func tokenProgramOrDefault(program ed25519.PublicKey) ed25519.PublicKey {
	if len(program) == 0 {
		return token.ProgramKey
	}
	return program
}
