package bertstaking

import (
	"crypto/ed25519"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

type DepositYieldInstructionAccounts struct {
	Authority      ed25519.PublicKey
	Source         ed25519.PublicKey // authority's token account
	Mint           ed25519.PublicKey
	AuthorityVault ed25519.PublicKey
}

// NewDepositYieldInstruction tops up the authority vault that claims pay
// yield from. The program has no instruction for this, it is a plain token
// transfer into the vault.
func NewDepositYieldInstruction(
	accounts *DepositYieldInstructionAccounts,
	amount uint64,
	decimals uint8,
) solana.Instruction {
	return token.TransferChecked(
		accounts.Source,
		accounts.Mint,
		accounts.AuthorityVault,
		accounts.Authority,
		amount,
		decimals,
	)
}
