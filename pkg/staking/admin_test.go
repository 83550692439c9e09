package staking

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

func standardPools() []bertstaking.PoolConfigArgs {
	var res []bertstaking.PoolConfigArgs
	for i, days := range bertstaking.StandardLockPeriodDays {
		res = append(res, bertstaking.PoolConfigArgs{
			LockPeriodDays: days,
			YieldRate:      uint64(100 * (i + 1)),
			MaxNftsCap:     100,
			MaxTokensCap:   1_000_000_000,
			MaxValueCap:    2_000_000_000,
		})
	}
	return res
}

func TestBuildInitializeDeployment(t *testing.T) {
	env := setup(t)

	plan, err := env.client.BuildInitializeDeployment(env.ctx, &InitializeDeploymentArgs{
		Authority:                env.authorityKey(),
		Id:                       2,
		Mint:                     env.mint,
		Collection:               env.collection,
		AdminWithdrawDestination: newKey(t),
		MaxCap:                   5_000_000_000,
		NftValueInTokens:         100_000,
		NftsLimitPerUser:         5,
		Pools:                    standardPools(),
	})
	require.NoError(t, err)

	assertInstructionTypes(t, env.program, plan.Instructions,
		bertstaking.InstructionTypeInitialize,
		bertstaking.InstructionTypeInitializeAuthVault,
		bertstaking.InstructionTypeInitializePool,
		bertstaking.InstructionTypeInitializePool,
		bertstaking.InstructionTypeInitializePool,
		bertstaking.InstructionTypeInitializePool,
	)

	args, err := bertstaking.DecodeInitializeInstructionArgs(plan.Instructions[0].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 2, args.Id)
	assert.EqualValues(t, 5_000_000_000, args.MaxCap)

	config, _, err := env.program.GetConfigAddress(&bertstaking.GetConfigAddressArgs{
		Authority: env.authorityKey(),
		Id:        2,
	})
	require.NoError(t, err)

	for i, ixn := range plan.Instructions[2:] {
		poolArgs, err := bertstaking.DecodeInitializePoolInstructionArgs(ixn.Data)
		require.NoError(t, err)
		assert.EqualValues(t, i, poolArgs.Index)
		assert.Equal(t, bertstaking.StandardLockPeriodDays[i], poolArgs.LockPeriodDays)

		expected, _, err := env.program.GetPoolAddress(&bertstaking.GetPoolAddressArgs{
			Config: config,
			Index:  uint32(i),
		})
		require.NoError(t, err)
		assert.EqualValues(t, expected, ixn.Accounts[2].PublicKey)
	}
}

func TestBuildInitializeDeployment_Invalid(t *testing.T) {
	env := setup(t)

	// Id 1 is already deployed
	_, err := env.client.BuildInitializeDeployment(env.ctx, &InitializeDeploymentArgs{
		Authority:  env.authorityKey(),
		Id:         1,
		Mint:       env.mint,
		Collection: env.collection,
		Pools:      standardPools(),
	})
	assertRejection(t, err, bertstaking.RejectionAlreadyInUse)

	_, err = env.client.BuildInitializeDeployment(env.ctx, &InitializeDeploymentArgs{
		Authority:  env.authorityKey(),
		Id:         2,
		Mint:       env.mint,
		Collection: env.collection,
	})
	assert.True(t, errors.Is(err, bertstaking.ErrInvalidArgument))

	pools := standardPools()
	pools[1].LockPeriodDays = 0
	_, err = env.client.BuildInitializeDeployment(env.ctx, &InitializeDeploymentArgs{
		Authority:  env.authorityKey(),
		Id:         2,
		Mint:       env.mint,
		Collection: env.collection,
		Pools:      pools,
	})
	assert.True(t, errors.Is(err, bertstaking.ErrInvalidArgument))
}

func TestBuildPauseAndActivatePool(t *testing.T) {
	env := setup(t)

	plan, err := env.client.BuildPausePool(env.ctx, env.authorityKey(), env.config, 1)
	require.NoError(t, err)
	assertInstructionTypes(t, env.program, plan.Instructions, bertstaking.InstructionTypeAdminPausePool)
	assert.EqualValues(t, env.pools[1], plan.Instructions[0].Accounts[2].PublicKey)

	_, err = env.client.BuildActivatePool(env.ctx, env.authorityKey(), env.config, 1)
	rejection := assertRejection(t, err, bertstaking.RejectionPoolStateConflict)
	assert.EqualValues(t, 1, rejection.PoolIndex)

	env.poolAccounts[1].IsPaused = true
	env.putPool(1)

	_, err = env.client.BuildPausePool(env.ctx, env.authorityKey(), env.config, 1)
	assertRejection(t, err, bertstaking.RejectionPoolStateConflict)

	plan, err = env.client.BuildActivatePool(env.ctx, env.authorityKey(), env.config, 1)
	require.NoError(t, err)
	assertInstructionTypes(t, env.program, plan.Instructions, bertstaking.InstructionTypeAdminActivatePool)
}

func TestBuildPausePool_Unauthorized(t *testing.T) {
	env := setup(t)

	_, err := env.client.BuildPausePool(env.ctx, newKey(t), env.config, 0)
	assertRejection(t, err, bertstaking.RejectionUnauthorized)
}

func TestBuildSetPoolConfig(t *testing.T) {
	env := setup(t)

	terms := &bertstaking.PoolConfigArgs{
		LockPeriodDays: 14,
		YieldRate:      750,
		MaxNftsCap:     50,
		MaxTokensCap:   5_000_000,
		MaxValueCap:    10_000_000,
	}

	_, err := env.client.BuildSetPoolConfig(env.ctx, env.authorityKey(), env.config, 2, terms)
	assertRejection(t, err, bertstaking.RejectionPoolStateConflict)

	env.poolAccounts[2].IsPaused = true
	env.putPool(2)

	plan, err := env.client.BuildSetPoolConfig(env.ctx, env.authorityKey(), env.config, 2, terms)
	require.NoError(t, err)
	assertInstructionTypes(t, env.program, plan.Instructions, bertstaking.InstructionTypeAdminSetPoolConfig)

	actual, err := bertstaking.DecodeAdminSetPoolConfigInstructionArgs(plan.Instructions[0].Data)
	require.NoError(t, err)
	assert.Equal(t, terms, actual)

	_, err = env.client.BuildSetPoolConfig(env.ctx, env.authorityKey(), env.config, 2, &bertstaking.PoolConfigArgs{})
	assert.True(t, errors.Is(err, bertstaking.ErrInvalidArgument))
}

func TestBuildWithdrawTokens(t *testing.T) {
	env := setup(t)

	plan, err := env.client.BuildWithdrawTokens(env.ctx, env.authorityKey(), env.config, 1_000)
	require.NoError(t, err)
	assertInstructionTypes(t, env.program, plan.Instructions, bertstaking.InstructionTypeAdminWithdrawTokens)

	withdraw := plan.Instructions[0]
	assert.EqualValues(t, env.configAccount.AuthorityVault, withdraw.Accounts[2].PublicKey)
	destination, err := token.GetAssociatedAccount(env.configAccount.AdminWithdrawDestination, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, destination, withdraw.Accounts[3].PublicKey)
	assert.NotEqualValues(t, env.configAccount.AdminWithdrawDestination, withdraw.Accounts[3].PublicKey)
	assert.True(t, withdraw.Accounts[3].IsWritable)

	args, err := bertstaking.DecodeAdminWithdrawTokensInstructionArgs(withdraw.Data)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000, args.Amount)

	_, err = env.client.BuildWithdrawTokens(env.ctx, env.authorityKey(), env.config, testReserve+1)
	rejection := assertRejection(t, err, bertstaking.RejectionInsufficientYieldFunds)
	assert.EqualValues(t, testReserve+1, rejection.Requested)
	assert.EqualValues(t, testReserve, rejection.Remaining)

	_, err = env.client.BuildWithdrawTokens(env.ctx, env.authorityKey(), env.config, 0)
	assertRejection(t, err, bertstaking.RejectionMalformedInput)

	_, err = env.client.BuildWithdrawTokens(env.ctx, newKey(t), env.config, 1_000)
	assertRejection(t, err, bertstaking.RejectionUnauthorized)
}

func TestBuildDepositYield(t *testing.T) {
	env := setup(t)

	plan, err := env.client.BuildDepositYield(env.ctx, env.authorityKey(), env.config, nil, 5_000)
	require.NoError(t, err)
	require.Len(t, plan.Instructions, 1)

	transfer, err := token.DecompileTransferChecked(plan.Instructions[0])
	require.NoError(t, err)

	source, err := token.GetAssociatedAccount(env.authorityKey(), env.mint)
	require.NoError(t, err)

	assert.EqualValues(t, source, transfer.Source)
	assert.EqualValues(t, env.mint, transfer.Mint)
	assert.EqualValues(t, env.configAccount.AuthorityVault, transfer.Dest)
	assert.EqualValues(t, env.authorityKey(), transfer.Owner)
	assert.EqualValues(t, 5_000, transfer.Amount)
	assert.EqualValues(t, testMintDecimal, transfer.Decimals)

	override := newKey(t)
	plan, err = env.client.BuildDepositYield(env.ctx, env.authorityKey(), env.config, override, 5_000)
	require.NoError(t, err)
	transfer, err = token.DecompileTransferChecked(plan.Instructions[0])
	require.NoError(t, err)
	assert.EqualValues(t, override, transfer.Source)

	_, err = env.client.BuildDepositYield(env.ctx, env.authorityKey(), env.config, nil, 0)
	assertRejection(t, err, bertstaking.RejectionMalformedInput)
}
