package staking

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

func TestGetConfig(t *testing.T) {
	env := setup(t)

	actual, err := env.client.GetConfig(env.ctx, env.authorityKey(), 1)
	require.NoError(t, err)
	assert.Equal(t, env.configAccount.Marshal(), actual.Marshal())

	actual, err = env.client.GetConfigByAddress(env.ctx, env.config)
	require.NoError(t, err)
	assert.EqualValues(t, env.mint, actual.Mint)

	_, err = env.client.GetConfig(env.ctx, env.authorityKey(), 2)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestGetConfig_InvalidAccounts(t *testing.T) {
	env := setup(t)

	// Owned by another program
	env.sc.set(env.config, token.ProgramKey, env.configAccount.Marshal())
	_, err := env.client.GetConfigByAddress(env.ctx, env.config)
	assert.True(t, errors.Is(err, bertstaking.ErrInvalidAccountData))

	// A pool where a config is expected
	env.sc.set(env.config, env.program.ID(), env.poolAccounts[0].Marshal())
	_, err = env.client.GetConfigByAddress(env.ctx, env.config)
	assert.True(t, errors.Is(err, bertstaking.ErrInvalidAccountData))
	assert.False(t, errors.Is(err, ErrAccountNotFound))
}

func TestGetPool(t *testing.T) {
	env := setup(t)

	for i := range env.pools {
		actual, err := env.client.GetPool(env.ctx, env.config, uint32(i))
		require.NoError(t, err)
		assert.Equal(t, env.poolAccounts[i].Marshal(), actual.Marshal())

		actual, err = env.client.GetPoolByAddress(env.ctx, env.pools[i])
		require.NoError(t, err)
		assert.EqualValues(t, i, actual.Index)
	}

	_, err := env.client.GetPool(env.ctx, env.config, 4)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestGetConfigWithPools(t *testing.T) {
	env := setup(t)

	actual, err := env.client.GetConfigWithPools(env.ctx, env.config)
	require.NoError(t, err)
	assert.Equal(t, 1, env.sc.multipleAccountsCalls)

	assert.EqualValues(t, env.config, actual.Address)
	require.Len(t, actual.Pools, bertstaking.StandardPoolCount)
	for i, pool := range actual.Pools {
		assert.EqualValues(t, i, pool.Index)
		assert.Equal(t, bertstaking.StandardLockPeriodDays[i], pool.LockPeriodDays)
	}

	pool, ok := actual.PoolForLockPeriod(7)
	require.True(t, ok)
	assert.EqualValues(t, 2, pool.Index)
}

func TestGetConfigWithPools_ExtraPools(t *testing.T) {
	env := setup(t)

	env.configAccount.PoolCount = 5
	env.putConfig()

	extra, _, err := env.program.GetPoolAddress(&bertstaking.GetPoolAddressArgs{
		Config: env.config,
		Index:  4,
	})
	require.NoError(t, err)
	env.sc.set(extra, env.program.ID(), (&bertstaking.PoolAccount{
		Config:         env.config,
		Index:          4,
		LockPeriodDays: 90,
		YieldRate:      2500,
	}).Marshal())

	actual, err := env.client.GetConfigWithPools(env.ctx, env.config)
	require.NoError(t, err)
	assert.Equal(t, 2, env.sc.multipleAccountsCalls)
	require.Len(t, actual.Pools, 5)
	assert.EqualValues(t, 90, actual.Pools[4].LockPeriodDays)
}

func TestGetConfigWithPools_MissingPool(t *testing.T) {
	env := setup(t)

	env.sc.remove(env.pools[2])

	_, err := env.client.GetConfigWithPools(env.ctx, env.config)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAccountNotFound))
	assert.Contains(t, err.Error(), "pool 2")

	env.sc.remove(env.config)
	_, err = env.client.GetConfigWithPools(env.ctx, env.config)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestGetPosition(t *testing.T) {
	env := setup(t)

	address := env.putTokenPosition(t, env.ownerKey(), 1, 3, 5_000, testNow+100)

	actual, err := env.client.GetPosition(env.ctx, env.ownerKey(), env.mint, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, actual.Id)
	assert.EqualValues(t, 5_000, actual.Amount)
	assert.Equal(t, bertstaking.PositionTypeToken, actual.Kind())
	assert.EqualValues(t, env.pools[1], actual.Pool)

	actual, err = env.client.GetPositionByAddress(env.ctx, address)
	require.NoError(t, err)
	assert.EqualValues(t, 3, actual.Id)

	_, err = env.client.GetPosition(env.ctx, env.ownerKey(), env.mint, 4)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestGetNftPosition(t *testing.T) {
	env := setup(t)

	asset := newKey(t)
	env.putNftPosition(t, env.ownerKey(), asset, 0, 1, testNow, false)

	actual, err := env.client.GetNftPosition(env.ctx, env.ownerKey(), env.mint, asset, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, actual.Id)

	stored, ok := actual.Asset()
	require.True(t, ok)
	assert.EqualValues(t, asset, stored)

	_, err = env.client.GetNftPosition(env.ctx, env.ownerKey(), env.mint, asset, 2)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestGetNftPosition_Legacy(t *testing.T) {
	env := setup(t)

	asset := newKey(t)
	env.putNftPosition(t, env.ownerKey(), asset, 0, 9, testNow, true)

	actual, err := env.client.GetNftPosition(env.ctx, env.ownerKey(), env.mint, asset, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 9, actual.Id)
	assert.Equal(t, 1, env.sc.multipleAccountsCalls)

	// The legacy address ignores the id, so the stored id must match
	_, err = env.client.GetNftPosition(env.ctx, env.ownerKey(), env.mint, asset, 10)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestGetPositionsByOwner(t *testing.T) {
	env := setup(t)

	other := newKey(t)
	for _, id := range []uint64{2, 0, 1} {
		env.putTokenPosition(t, env.ownerKey(), 0, id, 1_000*(id+1), testNow)
	}
	env.putNftPosition(t, env.ownerKey(), newKey(t), 3, 5, testNow, false)
	env.putTokenPosition(t, other, 0, 0, 1_000, testNow)

	actual, err := env.client.GetPositionsByOwner(env.ctx, env.ownerKey())
	require.NoError(t, err)
	require.Len(t, actual, 4)
	for i, expected := range []uint64{0, 1, 2, 5} {
		assert.Equal(t, expected, actual[i].Position.Id)
		assert.EqualValues(t, env.ownerKey(), actual[i].Position.Owner)
	}
	assert.Equal(t, bertstaking.PositionTypeNft, actual[3].Position.Kind())

	next, err := env.client.NextPositionID(env.ctx, env.ownerKey())
	require.NoError(t, err)
	assert.EqualValues(t, 6, next)

	next, err = env.client.NextPositionID(env.ctx, newKey(t))
	require.NoError(t, err)
	assert.EqualValues(t, 0, next)

	_, err = env.client.GetPositionsByOwner(env.ctx, env.ownerKey()[:16])
	assert.True(t, errors.Is(err, bertstaking.ErrInvalidArgument))
}

func TestGetPositionsByOwner_Limit(t *testing.T) {
	env := setupWithOverrides(t, &testOverrides{maxPositionsPerScan: 2})

	for id := uint64(0); id < 3; id++ {
		env.putTokenPosition(t, env.ownerKey(), 0, id, 1_000, testNow)
	}

	_, err := env.client.GetPositionsByOwner(env.ctx, env.ownerKey())
	assert.True(t, errors.Is(err, ErrTooManyPositions))
}

func TestGetUserAccount(t *testing.T) {
	env := setup(t)

	exists, err := env.client.UserAccountExists(env.ctx, env.ownerKey(), env.config)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = env.client.GetUserAccount(env.ctx, env.ownerKey(), env.config)
	assert.Equal(t, ErrAccountNotFound, err)

	address := env.putUser(t, env.ownerKey(), &bertstaking.UserAccount{
		Config:                 env.config,
		TotalStakedTokenAmount: 42,
		TotalStakedNfts:        1,
	})

	exists, err = env.client.UserAccountExists(env.ctx, env.ownerKey(), env.config)
	require.NoError(t, err)
	assert.True(t, exists)

	actual, err := env.client.GetUserAccount(env.ctx, env.ownerKey(), env.config)
	require.NoError(t, err)
	assert.EqualValues(t, 42, actual.TotalStakedTokenAmount)

	actual, err = env.client.GetUserAccountByAddress(env.ctx, address)
	require.NoError(t, err)
	assert.EqualValues(t, 1, actual.TotalStakedNfts)
}

func TestGetUserPoolStats(t *testing.T) {
	env := setup(t)

	_, err := env.client.GetUserPoolStats(env.ctx, env.ownerKey(), env.pools[0])
	assert.Equal(t, ErrAccountNotFound, err)

	address, _, err := env.program.GetUserPoolStatsAddress(&bertstaking.GetUserPoolStatsAddressArgs{
		Owner: env.ownerKey(),
		Pool:  env.pools[0],
	})
	require.NoError(t, err)
	env.sc.set(address, env.program.ID(), (&bertstaking.UserPoolStatsAccount{
		User:         env.ownerKey(),
		Pool:         env.pools[0],
		TokensStaked: 77,
	}).Marshal())

	actual, err := env.client.GetUserPoolStats(env.ctx, env.ownerKey(), env.pools[0])
	require.NoError(t, err)
	assert.EqualValues(t, 77, actual.TokensStaked)

	actual, err = env.client.GetUserPoolStatsByAddress(env.ctx, address)
	require.NoError(t, err)
	assert.EqualValues(t, env.pools[0], actual.Pool)
}

func TestGetAuthorityVaultBalance(t *testing.T) {
	env := setup(t)

	balance, err := env.client.GetAuthorityVaultBalance(env.ctx, env.config)
	require.NoError(t, err)
	assert.EqualValues(t, testReserve, balance)

	env.sc.remove(env.configAccount.AuthorityVault)
	_, err = env.client.GetAuthorityVaultBalance(env.ctx, env.config)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestGetMintDecimals(t *testing.T) {
	env := setup(t)

	decimals, err := env.client.GetMintDecimals(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, testMintDecimal, decimals)

	// Served from cache
	env.sc.remove(env.mint)
	decimals, err = env.client.GetMintDecimals(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, testMintDecimal, decimals)

	_, err = env.client.GetMintDecimals(env.ctx, newKey(t))
	assert.Equal(t, ErrAccountNotFound, err)
}
