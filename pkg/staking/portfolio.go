package staking

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bert-labs/bert-staking-client/pkg/metrics"
	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
)

// Portfolio is everything owner has staked under one config.
type Portfolio struct {
	Owner  ed25519.PublicKey
	Config *bertstaking.ConfigWithPools

	// User is nil when owner has never staked under the config.
	User *bertstaking.UserAccount

	// Positions are ordered by id and include claimed positions.
	Positions []KeyedPosition

	// pool addresses, index aligned with Config.Pools
	pools []ed25519.PublicKey
}

// Unclaimed returns the positions that have not been claimed yet.
func (p *Portfolio) Unclaimed() []KeyedPosition {
	var res []KeyedPosition
	for _, position := range p.Positions {
		if !position.Position.IsClaimed() {
			res = append(res, position)
		}
	}
	return res
}

// Claimable returns the unclaimed positions that are unlocked at now, in unix
// seconds.
func (p *Portfolio) Claimable(now int64) []KeyedPosition {
	var res []KeyedPosition
	for _, position := range p.Unclaimed() {
		if position.Position.IsUnlocked(now) {
			res = append(res, position)
		}
	}
	return res
}

// Pool returns the pool a position was staked into.
func (p *Portfolio) Pool(position *bertstaking.PositionAccount) (*bertstaking.PoolAccount, bool) {
	for i, address := range p.pools {
		if bytes.Equal(address, position.Pool) {
			return p.Config.Pools[i], true
		}
	}
	return nil, false
}

// GetPortfolio returns owner's user account and positions under config. The
// reads run concurrently.
func (c *Client) GetPortfolio(ctx context.Context, owner, config ed25519.PublicKey) (*Portfolio, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPortfolio")
	defer tracer.End()

	res, err := c.getPortfolio(ctx, owner, config)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (c *Client) getPortfolio(ctx context.Context, owner, config ed25519.PublicKey) (*Portfolio, error) {
	var (
		configWithPools *bertstaking.ConfigWithPools
		user            *bertstaking.UserAccount
		positions       []KeyedPosition
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		configWithPools, err = c.getConfigWithPools(ctx, config)
		return err
	})

	g.Go(func() error {
		address, _, err := c.program.GetUserAddress(&bertstaking.GetUserAddressArgs{
			Owner:  owner,
			Config: config,
		})
		if err != nil {
			return err
		}

		user, err = getAccount[bertstaking.UserAccount](ctx, c, address)
		if errors.Is(err, ErrAccountNotFound) {
			return nil
		}
		return err
	})

	g.Go(func() (err error) {
		positions, err = c.getPositionsByOwner(ctx, owner)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	pools, err := c.poolAddresses(config, 0, uint32(len(configWithPools.Pools)))
	if err != nil {
		return nil, err
	}

	res := &Portfolio{
		Owner:  owner,
		Config: configWithPools,
		User:   user,
		pools:  pools,
	}
	for _, position := range positions {
		if _, ok := res.Pool(position.Position); ok {
			res.Positions = append(res.Positions, position)
		}
	}
	return res, nil
}
