// Package bertstaking derives addresses, decodes accounts and builds
// instructions for the bert staking program. Nothing in this package touches
// the network.
package bertstaking

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("5SBAWmpeag75vcgPvnSxbibQQoKguZaa5KDdR8TBjC1N")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

// Metaplex Core, which custodies staked NFT assets.
var MPL_CORE_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d"))

// Program is a deployment of the staking program. Address derivation and
// instruction building are methods on Program so that alternate deployments
// (devnet, local validators) can be targeted without globals.
type Program struct {
	id ed25519.PublicKey
}

// DefaultProgram is the mainnet deployment. Package level helpers use it.
var DefaultProgram = Program{id: PROGRAM_ID}

// NewProgram returns a Program for the deployment at id.
func NewProgram(id ed25519.PublicKey) (Program, error) {
	if len(id) != ed25519.PublicKeySize {
		return Program{}, errors.Wrap(ErrInvalidArgument, "program id must be 32 bytes")
	}
	return Program{id: id}, nil
}

// ID returns the program address.
func (p Program) ID() ed25519.PublicKey {
	if len(p.id) == 0 {
		return PROGRAM_ID
	}
	return p.id
}
