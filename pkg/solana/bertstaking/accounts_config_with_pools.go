package bertstaking

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

// ConfigWithPools is a config together with its pools, indexed by pool index.
type ConfigWithPools struct {
	Address ed25519.PublicKey
	Config  *ConfigAccount
	Pools   []*PoolAccount
}

// NewConfigWithPools checks that pools are exactly the config's pools
// 0..poolCount-1, in order.
func NewConfigWithPools(address ed25519.PublicKey, config *ConfigAccount, pools []*PoolAccount) (*ConfigWithPools, error) {
	if uint32(len(pools)) != config.PoolCount {
		return nil, errors.Errorf("expected %d pools, got %d", config.PoolCount, len(pools))
	}

	for i, pool := range pools {
		if pool == nil {
			return nil, errors.Errorf("pool %d is missing", i)
		}
		if pool.Index != uint32(i) {
			return nil, errors.Errorf("pool at position %d has index %d", i, pool.Index)
		}
		if len(address) > 0 && !bytes.Equal(pool.Config, address) {
			return nil, errors.Errorf("pool %d belongs to a different config", i)
		}
	}

	return &ConfigWithPools{
		Address: address,
		Config:  config,
		Pools:   pools,
	}, nil
}

// PoolsConfig returns each pool's terms, index aligned with PoolsStats.
func (c *ConfigWithPools) PoolsConfig() []PoolConfig {
	res := make([]PoolConfig, len(c.Pools))
	for i, pool := range c.Pools {
		res[i] = pool.PoolConfig()
	}
	return res
}

// PoolsStats returns each pool's totals, index aligned with PoolsConfig.
func (c *ConfigWithPools) PoolsStats() []PoolStats {
	res := make([]PoolStats, len(c.Pools))
	for i, pool := range c.Pools {
		res[i] = pool.PoolStats()
	}
	return res
}

// Pool returns the pool at index.
func (c *ConfigWithPools) Pool(index uint32) (*PoolAccount, bool) {
	if int(index) >= len(c.Pools) {
		return nil, false
	}
	return c.Pools[index], true
}

// PoolForLockPeriod returns the first pool with the given lock period.
func (c *ConfigWithPools) PoolForLockPeriod(days uint16) (*PoolAccount, bool) {
	for _, pool := range c.Pools {
		if pool.LockPeriodDays == days {
			return pool, true
		}
	}
	return nil, false
}
