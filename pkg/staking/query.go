package staking

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sort"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/bert-labs/bert-staking-client/pkg/metrics"
	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

// GetConfig returns the config created by authority with id.
func (c *Client) GetConfig(ctx context.Context, authority ed25519.PublicKey, id uint64) (*bertstaking.ConfigAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetConfig")
	defer tracer.End()

	address, _, err := c.program.GetConfigAddress(&bertstaking.GetConfigAddressArgs{
		Authority: authority,
		Id:        id,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	res, err := getAccount[bertstaking.ConfigAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (c *Client) GetConfigByAddress(ctx context.Context, address ed25519.PublicKey) (*bertstaking.ConfigAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetConfigByAddress")
	defer tracer.End()

	res, err := getAccount[bertstaking.ConfigAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

// GetPool returns the pool at index under config.
func (c *Client) GetPool(ctx context.Context, config ed25519.PublicKey, index uint32) (*bertstaking.PoolAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPool")
	defer tracer.End()

	address, _, err := c.program.GetPoolAddress(&bertstaking.GetPoolAddressArgs{
		Config: config,
		Index:  index,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	res, err := getAccount[bertstaking.PoolAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (c *Client) GetPoolByAddress(ctx context.Context, address ed25519.PublicKey) (*bertstaking.PoolAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPoolByAddress")
	defer tracer.End()

	res, err := getAccount[bertstaking.PoolAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

// GetConfigWithPools returns the config at address together with every one of
// its pools. Standard deployments are read in a single round trip. A pool
// that should exist but does not is an error.
func (c *Client) GetConfigWithPools(ctx context.Context, address ed25519.PublicKey) (*bertstaking.ConfigWithPools, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetConfigWithPools")
	defer tracer.End()

	res, err := c.getConfigWithPools(ctx, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (c *Client) getConfigWithPools(ctx context.Context, address ed25519.PublicKey) (*bertstaking.ConfigWithPools, error) {
	poolAddresses, err := c.poolAddresses(address, 0, bertstaking.StandardPoolCount)
	if err != nil {
		return nil, err
	}

	infos, err := c.fetchAccounts(ctx, append([]ed25519.PublicKey{address}, poolAddresses...)...)
	if err != nil {
		return nil, err
	}

	config, err := decodeAccount[bertstaking.ConfigAccount](c.program.ID(), address, infos[0])
	if err != nil {
		return nil, err
	}

	poolInfos := infos[1:]
	if config.PoolCount > bertstaking.StandardPoolCount {
		extra, err := c.poolAddresses(address, bertstaking.StandardPoolCount, config.PoolCount)
		if err != nil {
			return nil, err
		}

		extraInfos, err := c.fetchAccounts(ctx, extra...)
		if err != nil {
			return nil, err
		}

		poolAddresses = append(poolAddresses, extra...)
		poolInfos = append(poolInfos, extraInfos...)
	}

	pools := make([]*bertstaking.PoolAccount, config.PoolCount)
	for i := range pools {
		pool, err := decodeAccount[bertstaking.PoolAccount](c.program.ID(), poolAddresses[i], poolInfos[i])
		if err != nil {
			return nil, errors.Wrapf(err, "pool %d", i)
		}
		pools[i] = pool
	}

	return bertstaking.NewConfigWithPools(address, config, pools)
}

func (c *Client) poolAddresses(config ed25519.PublicKey, from, to uint32) ([]ed25519.PublicKey, error) {
	res := make([]ed25519.PublicKey, 0, to-from)
	for i := from; i < to; i++ {
		address, _, err := c.program.GetPoolAddress(&bertstaking.GetPoolAddressArgs{
			Config: config,
			Index:  i,
		})
		if err != nil {
			return nil, err
		}
		res = append(res, address)
	}
	return res, nil
}

// GetPosition returns owner's token position id, staked with mint.
func (c *Client) GetPosition(ctx context.Context, owner, mint ed25519.PublicKey, id uint64) (*bertstaking.PositionAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPosition")
	defer tracer.End()

	address, _, err := c.program.GetPositionAddress(&bertstaking.GetPositionAddressArgs{
		Owner: owner,
		Mint:  mint,
		Id:    id,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	res, err := getAccount[bertstaking.PositionAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

// GetNftPosition returns owner's NFT position id for asset. Positions opened
// before ids were part of the address are found at their legacy address.
func (c *Client) GetNftPosition(ctx context.Context, owner, mint, asset ed25519.PublicKey, id uint64) (*bertstaking.PositionAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetNftPosition")
	defer tracer.End()

	args := &bertstaking.GetNftPositionAddressArgs{
		Owner: owner,
		Mint:  mint,
		Asset: asset,
		Id:    id,
	}

	address, _, err := c.program.GetNftPositionAddress(args)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	legacy, _, err := c.program.GetLegacyNftPositionAddress(args)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	infos, err := c.fetchAccounts(ctx, address, legacy)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	if infos[0] != nil {
		res, err := decodeAccount[bertstaking.PositionAccount](c.program.ID(), address, infos[0])
		if err != nil {
			tracer.OnError(err)
		}
		return res, err
	}

	res, err := decodeAccount[bertstaking.PositionAccount](c.program.ID(), legacy, infos[1])
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	if res.Id != id {
		return nil, ErrAccountNotFound
	}
	return res, nil
}

func (c *Client) GetPositionByAddress(ctx context.Context, address ed25519.PublicKey) (*bertstaking.PositionAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPositionByAddress")
	defer tracer.End()

	res, err := getAccount[bertstaking.PositionAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

// KeyedPosition is a position together with its address.
type KeyedPosition struct {
	Address  ed25519.PublicKey
	Position *bertstaking.PositionAccount
}

// GetPositionsByOwner scans the program for every position owned by owner,
// across all configs, ordered by position id.
func (c *Client) GetPositionsByOwner(ctx context.Context, owner ed25519.PublicKey) ([]KeyedPosition, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPositionsByOwner")
	defer tracer.End()

	res, err := c.getPositionsByOwner(ctx, owner)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (c *Client) getPositionsByOwner(ctx context.Context, owner ed25519.PublicKey) ([]KeyedPosition, error) {
	if len(owner) != ed25519.PublicKeySize {
		return nil, errors.Wrap(bertstaking.ErrInvalidArgument, "owner must be 32 bytes")
	}

	accounts, err := c.sc.GetProgramAccounts(
		ctx,
		c.program.ID(),
		c.commitment(ctx),
		solana.FilterDataSize(bertstaking.PositionAccountSize),
		solana.FilterMemcmp(bertstaking.PositionOwnerOffset, owner),
	)
	if err != nil {
		return nil, err
	}

	if limit := c.conf.maxPositionsPerScan.Get(ctx); uint64(len(accounts)) > limit {
		return nil, errors.Wrapf(ErrTooManyPositions, "%d positions, limit is %d", len(accounts), limit)
	}

	res := make([]KeyedPosition, 0, len(accounts))
	for _, account := range accounts {
		position, err := decodeAccount[bertstaking.PositionAccount](c.program.ID(), account.PublicKey, &account.Account)
		if err != nil {
			return nil, err
		}

		if !bytes.Equal(position.Owner, owner) {
			return nil, errors.Errorf("position %s is not owned by %s", base58.Encode(account.PublicKey), base58.Encode(owner))
		}

		res = append(res, KeyedPosition{
			Address:  account.PublicKey,
			Position: position,
		})
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Position.Id != res[j].Position.Id {
			return res[i].Position.Id < res[j].Position.Id
		}
		return bytes.Compare(res[i].Address, res[j].Address) < 0
	})
	return res, nil
}

// NextPositionID returns an id not used by any of owner's positions.
func (c *Client) NextPositionID(ctx context.Context, owner ed25519.PublicKey) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "NextPositionID")
	defer tracer.End()

	positions, err := c.getPositionsByOwner(ctx, owner)
	if err != nil {
		tracer.OnError(err)
		return 0, err
	}

	if len(positions) == 0 {
		return 0, nil
	}
	return positions[len(positions)-1].Position.Id + 1, nil
}

// GetUserAccount returns owner's user account under config.
func (c *Client) GetUserAccount(ctx context.Context, owner, config ed25519.PublicKey) (*bertstaking.UserAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetUserAccount")
	defer tracer.End()

	address, _, err := c.program.GetUserAddress(&bertstaking.GetUserAddressArgs{
		Owner:  owner,
		Config: config,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	res, err := getAccount[bertstaking.UserAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (c *Client) GetUserAccountByAddress(ctx context.Context, address ed25519.PublicKey) (*bertstaking.UserAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetUserAccountByAddress")
	defer tracer.End()

	res, err := getAccount[bertstaking.UserAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

// UserAccountExists reports whether owner has a user account under config.
func (c *Client) UserAccountExists(ctx context.Context, owner, config ed25519.PublicKey) (bool, error) {
	_, err := c.GetUserAccount(ctx, owner, config)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// GetUserPoolStats returns owner's totals within pool.
func (c *Client) GetUserPoolStats(ctx context.Context, owner, pool ed25519.PublicKey) (*bertstaking.UserPoolStatsAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetUserPoolStats")
	defer tracer.End()

	address, _, err := c.program.GetUserPoolStatsAddress(&bertstaking.GetUserPoolStatsAddressArgs{
		Owner: owner,
		Pool:  pool,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	res, err := getAccount[bertstaking.UserPoolStatsAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (c *Client) GetUserPoolStatsByAddress(ctx context.Context, address ed25519.PublicKey) (*bertstaking.UserPoolStatsAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetUserPoolStatsByAddress")
	defer tracer.End()

	res, err := getAccount[bertstaking.UserPoolStatsAccount](ctx, c, address)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

// GetAuthorityVaultBalance returns the yield reserve available to claims
// under config, in quarks.
func (c *Client) GetAuthorityVaultBalance(ctx context.Context, config ed25519.PublicKey) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetAuthorityVaultBalance")
	defer tracer.End()

	res, err := c.getAuthorityVaultBalance(ctx, config)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (c *Client) getAuthorityVaultBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	config, err := getAccount[bertstaking.ConfigAccount](ctx, c, address)
	if err != nil {
		return 0, err
	}

	vault, _, err := c.program.GetAuthorityVaultAddress(&bertstaking.GetAuthorityVaultAddressArgs{
		Config: address,
		Mint:   config.Mint,
	})
	if err != nil {
		return 0, err
	}

	account, err := c.tokens.GetAccount(ctx, vault, config.Mint, c.commitment(ctx))
	if errors.Is(err, token.ErrAccountNotFound) {
		return 0, ErrAccountNotFound
	} else if err != nil {
		return 0, err
	}
	return account.Amount, nil
}

// GetMintDecimals returns the number of decimals of mint. Decimals never
// change once a mint exists, so results are cached.
func (c *Client) GetMintDecimals(ctx context.Context, mint ed25519.PublicKey) (uint8, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetMintDecimals")
	defer tracer.End()

	key := base58.Encode(mint)
	if decimals, ok := c.mintDecimals.Retrieve(key); ok {
		return decimals, nil
	}

	res, err := c.tokens.GetMint(ctx, mint, c.commitment(ctx))
	if errors.Is(err, token.ErrAccountNotFound) {
		tracer.OnError(err)
		return 0, ErrAccountNotFound
	} else if err != nil {
		tracer.OnError(err)
		return 0, err
	}

	c.mintDecimals.Insert(key, res.Decimals, 1)
	return res.Decimals, nil
}
