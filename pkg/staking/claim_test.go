package staking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
)

func TestBuildClaimToken(t *testing.T) {
	env := setup(t)
	position := env.putTokenPosition(t, env.ownerKey(), 1, 2, 10_000, testNow-10)

	plan, err := env.client.BuildClaimToken(env.ctx, &ClaimTokenArgs{
		Owner:      env.ownerKey(),
		Config:     env.config,
		PositionID: 2,
	})
	require.NoError(t, err)

	assertInstructionTypes(t, env.program, plan.Instructions, bertstaking.InstructionTypeClaimPositionToken)
	assert.EqualValues(t, position, plan.Position)
	assert.EqualValues(t, 2, plan.PositionID)

	require.NotNil(t, plan.Preview)
	assert.EqualValues(t, 10_000, plan.Preview.Principal)
	assert.EqualValues(t, 200, plan.Preview.Yield)
	assert.EqualValues(t, 10_200, plan.Preview.Total)
	assert.EqualValues(t, 200, plan.Preview.YieldRate)

	claim := plan.Instructions[0]
	assert.EqualValues(t, env.ownerKey(), claim.Accounts[0].PublicKey)
	assert.EqualValues(t, env.pools[1], claim.Accounts[2].PublicKey)
	assert.EqualValues(t, position, claim.Accounts[5].PublicKey)
	assert.EqualValues(t, env.configAccount.AuthorityVault, claim.Accounts[10].PublicKey)

	rc := plan.RejectionContext()
	assert.Equal(t, testNow, rc.Now)
	assert.EqualValues(t, 1, rc.PoolIndex)
	require.NotNil(t, rc.Position)
	assert.EqualValues(t, 2, rc.Position.Id)
}

func TestBuildClaimToken_UsesCurrentRate(t *testing.T) {
	env := setup(t)
	env.putTokenPosition(t, env.ownerKey(), 1, 0, 10_000, testNow)

	env.poolAccounts[1].YieldRate = 1_000
	env.putPool(1)

	plan, err := env.client.BuildClaimToken(env.ctx, &ClaimTokenArgs{
		Owner:  env.ownerKey(),
		Config: env.config,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1_000, plan.Preview.Yield)
}

func TestBuildClaimToken_Rejections(t *testing.T) {
	env := setup(t)

	_, err := env.client.BuildClaimToken(env.ctx, &ClaimTokenArgs{
		Owner:  env.ownerKey(),
		Config: env.config,
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	env.putTokenPosition(t, env.ownerKey(), 0, 7, 1_000, testNow+5_800)
	_, err = env.client.BuildClaimToken(env.ctx, &ClaimTokenArgs{
		Owner:      env.ownerKey(),
		Config:     env.config,
		PositionID: 7,
	})
	rejection := assertRejection(t, err, bertstaking.RejectionStillLocked)
	assert.EqualValues(t, 7, rejection.PositionID)
	assert.EqualValues(t, 5_800, rejection.SecondsRemaining)

	address := env.putTokenPosition(t, env.ownerKey(), 0, 8, 1_000, testNow)
	claimed := bertstaking.NewTokenPosition(env.ownerKey(), env.pools[0], 8, 1_000, testNow-86_400, testNow)
	claimed.Status = bertstaking.PositionStatusClaimed
	env.sc.set(address, env.program.ID(), claimed.Marshal())

	_, err = env.client.BuildClaimToken(env.ctx, &ClaimTokenArgs{
		Owner:      env.ownerKey(),
		Config:     env.config,
		PositionID: 8,
	})
	assertRejection(t, err, bertstaking.RejectionAlreadyClaimed)
}

func TestBuildClaimToken_Unauthorized(t *testing.T) {
	env := setup(t)

	address := env.putTokenPosition(t, env.ownerKey(), 0, 1, 1_000, testNow)
	stolen := bertstaking.NewTokenPosition(newKey(t), env.pools[0], 1, 1_000, testNow-86_400, testNow)
	env.sc.set(address, env.program.ID(), stolen.Marshal())

	_, err := env.client.BuildClaimToken(env.ctx, &ClaimTokenArgs{
		Owner:      env.ownerKey(),
		Config:     env.config,
		PositionID: 1,
	})
	rejection := assertRejection(t, err, bertstaking.RejectionUnauthorized)
	assert.EqualValues(t, 1, rejection.PositionID)
}

func TestBuildClaimToken_InsufficientReserve(t *testing.T) {
	env := setup(t)
	env.putTokenPosition(t, env.ownerKey(), 3, 0, 10_000, testNow)
	env.setReserve(100)

	_, err := env.client.BuildClaimToken(env.ctx, &ClaimTokenArgs{
		Owner:  env.ownerKey(),
		Config: env.config,
	})
	rejection := assertRejection(t, err, bertstaking.RejectionInsufficientYieldFunds)
	assert.EqualValues(t, 400, rejection.Requested)
	assert.EqualValues(t, 100, rejection.Remaining)

	env.sc.remove(env.configAccount.AuthorityVault)
	_, err = env.client.BuildClaimToken(env.ctx, &ClaimTokenArgs{
		Owner:  env.ownerKey(),
		Config: env.config,
	})
	rejection = assertRejection(t, err, bertstaking.RejectionInsufficientYieldFunds)
	assert.EqualValues(t, 0, rejection.Remaining)
}

func TestBuildClaimNft(t *testing.T) {
	env := setup(t)

	asset := newKey(t)
	position := env.putNftPosition(t, env.ownerKey(), asset, 2, 3, testNow, false)

	plan, err := env.client.BuildClaimNft(env.ctx, &ClaimNftArgs{
		Owner:      env.ownerKey(),
		Config:     env.config,
		Asset:      asset,
		PositionID: 3,
	})
	require.NoError(t, err)

	assertInstructionTypes(t, env.program, plan.Instructions, bertstaking.InstructionTypeClaimPositionNft)
	assert.EqualValues(t, position, plan.Position)

	// 100_000 valued NFT at 300 bps
	assert.EqualValues(t, 3_000, plan.Preview.Yield)

	claim := plan.Instructions[0]
	assert.EqualValues(t, env.ownerKey(), claim.Accounts[1].PublicKey)
	assert.EqualValues(t, position, claim.Accounts[6].PublicKey)
	assert.EqualValues(t, env.authorityKey(), claim.Accounts[8].PublicKey)
	assert.EqualValues(t, asset, claim.Accounts[9].PublicKey)
}

func TestBuildClaimNft_Overrides(t *testing.T) {
	env := setup(t)

	asset := newKey(t)
	env.putNftPosition(t, env.ownerKey(), asset, 0, 0, testNow, false)

	payer, updateAuthority := newKey(t), newKey(t)
	plan, err := env.client.BuildClaimNft(env.ctx, &ClaimNftArgs{
		Owner:           env.ownerKey(),
		Config:          env.config,
		Asset:           asset,
		Payer:           payer,
		UpdateAuthority: updateAuthority,
	})
	require.NoError(t, err)

	claim := plan.Instructions[0]
	assert.EqualValues(t, payer, claim.Accounts[1].PublicKey)
	assert.EqualValues(t, updateAuthority, claim.Accounts[8].PublicKey)
}

func TestBuildClaimNft_Legacy(t *testing.T) {
	env := setup(t)

	asset := newKey(t)
	legacy := env.putNftPosition(t, env.ownerKey(), asset, 0, 4, testNow, true)

	plan, err := env.client.BuildClaimNft(env.ctx, &ClaimNftArgs{
		Owner:      env.ownerKey(),
		Config:     env.config,
		Asset:      asset,
		PositionID: 4,
	})
	require.NoError(t, err)
	assert.EqualValues(t, legacy, plan.Position)
	assert.EqualValues(t, legacy, plan.Instructions[0].Accounts[6].PublicKey)

	// The legacy address holds position 4, not 5
	_, err = env.client.BuildClaimNft(env.ctx, &ClaimNftArgs{
		Owner:      env.ownerKey(),
		Config:     env.config,
		Asset:      asset,
		PositionID: 5,
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.False(t, bertstaking.IsRejection(err, bertstaking.RejectionStillLocked))

	_, err = env.client.BuildClaimNft(env.ctx, &ClaimNftArgs{
		Owner:      env.ownerKey(),
		Config:     env.config,
		Asset:      newKey(t),
		PositionID: 4,
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestBuildClaimNft_WrongKind(t *testing.T) {
	env := setup(t)

	asset := newKey(t)
	address := env.putNftPosition(t, env.ownerKey(), asset, 0, 0, testNow, false)
	tokenPosition := bertstaking.NewTokenPosition(env.ownerKey(), env.pools[0], 0, 1_000, testNow-86_400, testNow)
	env.sc.set(address, env.program.ID(), tokenPosition.Marshal())

	_, err := env.client.BuildClaimNft(env.ctx, &ClaimNftArgs{
		Owner:  env.ownerKey(),
		Config: env.config,
		Asset:  asset,
	})
	assertRejection(t, err, bertstaking.RejectionMalformedInput)
}
