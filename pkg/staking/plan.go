package staking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
)

// Plan is a set of instructions to submit in one transaction, together with
// what the building flow observed.
type Plan struct {
	Instructions []solana.Instruction

	// Position is the position opened or claimed, if any.
	Position   ed25519.PublicKey
	PositionID uint64

	// CreatesUserAccount is set when the plan opens the owner's user account
	// ahead of a stake.
	CreatesUserAccount bool

	// Preview is set for claims.
	Preview *bertstaking.ClaimPreview

	rejectionContext *bertstaking.RejectionContext
}

// RejectionContext returns what the flow knew while building, for
// classifying a rejection of the plan.
func (p *Plan) RejectionContext() *bertstaking.RejectionContext {
	if p.rejectionContext == nil {
		return &bertstaking.RejectionContext{}
	}
	return p.rejectionContext
}
