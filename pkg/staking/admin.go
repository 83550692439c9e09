package staking

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bert-labs/bert-staking-client/pkg/metrics"
	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

type InitializeDeploymentArgs struct {
	Authority  ed25519.PublicKey
	Id         uint64
	Mint       ed25519.PublicKey
	Collection ed25519.PublicKey

	// AdminWithdrawDestination receives tokens withdrawn from the yield
	// reserve.
	AdminWithdrawDestination ed25519.PublicKey

	// NftsVault overrides the derived custody account for staked NFTs.
	NftsVault ed25519.PublicKey

	MaxCap           uint64
	NftValueInTokens uint64
	NftsLimitPerUser uint8

	// Pools are created in order, pool i with index i.
	Pools []bertstaking.PoolConfigArgs

	// TokenProgram defaults to the SPL token program.
	TokenProgram ed25519.PublicKey
}

// BuildInitializeDeployment returns the instructions creating a config, its
// yield reserve and its pools. They are meant to be submitted together so
// that a deployment is never left half initialized.
func (c *Client) BuildInitializeDeployment(ctx context.Context, args *InitializeDeploymentArgs) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildInitializeDeployment")
	defer tracer.End()

	plan, err := c.buildInitializeDeployment(ctx, args)
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

func (c *Client) buildInitializeDeployment(ctx context.Context, args *InitializeDeploymentArgs) (*Plan, error) {
	if len(args.Pools) == 0 {
		return nil, errors.Wrap(bertstaking.ErrInvalidArgument, "at least one pool is required")
	}
	for i, pool := range args.Pools {
		if pool.LockPeriodDays == 0 {
			return nil, errors.Wrapf(bertstaking.ErrInvalidArgument, "pool %d has no lock period", i)
		}
	}

	config, _, err := c.program.GetConfigAddress(&bertstaking.GetConfigAddressArgs{
		Authority: args.Authority,
		Id:        args.Id,
	})
	if err != nil {
		return nil, err
	}

	_, err = c.sc.GetAccountInfo(ctx, config, c.commitment(ctx))
	if err == nil {
		return nil, bertstaking.NewLocalRejection(bertstaking.RejectionAlreadyInUse)
	} else if !errors.Is(err, solana.ErrNoAccountInfo) {
		return nil, err
	}

	vault, err := bertstaking.GetVaultAddress(config, args.Mint)
	if err != nil {
		return nil, err
	}

	authorityVault, _, err := c.program.GetAuthorityVaultAddress(&bertstaking.GetAuthorityVaultAddressArgs{
		Config: config,
		Mint:   args.Mint,
	})
	if err != nil {
		return nil, err
	}

	nftsVault, _, err := c.program.GetNftsVaultAddress(&bertstaking.GetNftsVaultAddressArgs{
		Config:   config,
		Override: args.NftsVault,
	})
	if err != nil {
		return nil, err
	}

	ixns := []solana.Instruction{
		c.program.NewInitializeInstruction(
			&bertstaking.InitializeInstructionAccounts{
				Authority:                args.Authority,
				Config:                   config,
				Mint:                     args.Mint,
				Collection:               args.Collection,
				Vault:                    vault,
				NftsVault:                nftsVault,
				AdminWithdrawDestination: args.AdminWithdrawDestination,
				TokenProgram:             args.TokenProgram,
			},
			&bertstaking.InitializeInstructionArgs{
				Id:               args.Id,
				MaxCap:           args.MaxCap,
				NftValueInTokens: args.NftValueInTokens,
				NftsLimitPerUser: args.NftsLimitPerUser,
			},
		),
		c.program.NewInitializeAuthVaultInstruction(&bertstaking.InitializeAuthVaultInstructionAccounts{
			Authority:      args.Authority,
			Config:         config,
			Mint:           args.Mint,
			AuthorityVault: authorityVault,
			TokenProgram:   args.TokenProgram,
		}),
	}

	pools, err := c.poolAddresses(config, 0, uint32(len(args.Pools)))
	if err != nil {
		return nil, err
	}
	for i, pool := range args.Pools {
		ixns = append(ixns, c.program.NewInitializePoolInstruction(
			&bertstaking.InitializePoolInstructionAccounts{
				Authority: args.Authority,
				Config:    config,
				Pool:      pools[i],
			},
			&bertstaking.InitializePoolInstructionArgs{
				Index:          uint32(i),
				LockPeriodDays: pool.LockPeriodDays,
				YieldRate:      pool.YieldRate,
				MaxNftsCap:     pool.MaxNftsCap,
				MaxTokensCap:   pool.MaxTokensCap,
				MaxValueCap:    pool.MaxValueCap,
			},
		))
	}

	c.log.WithFields(logrus.Fields{
		"method": "BuildInitializeDeployment",
		"config": base58.Encode(config),
		"pools":  len(args.Pools),
	}).Debug("built deployment initialization")

	return &Plan{Instructions: ixns}, nil
}

// BuildPausePool returns the instruction pausing new stakes into a pool.
func (c *Client) BuildPausePool(ctx context.Context, authority, config ed25519.PublicKey, poolIndex uint32) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildPausePool")
	defer tracer.End()

	tracer.AddAttribute("pool_index", poolIndex)

	plan, err := c.buildPoolAdmin(ctx, authority, config, poolIndex, true, func(accounts *bertstaking.AdminPoolInstructionAccounts) solana.Instruction {
		return c.program.NewAdminPausePoolInstruction(accounts)
	})
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

// BuildActivatePool returns the instruction resuming stakes into a paused
// pool.
func (c *Client) BuildActivatePool(ctx context.Context, authority, config ed25519.PublicKey, poolIndex uint32) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildActivatePool")
	defer tracer.End()

	tracer.AddAttribute("pool_index", poolIndex)

	plan, err := c.buildPoolAdmin(ctx, authority, config, poolIndex, false, func(accounts *bertstaking.AdminPoolInstructionAccounts) solana.Instruction {
		return c.program.NewAdminActivatePoolInstruction(accounts)
	})
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

// BuildSetPoolConfig returns the instruction replacing a paused pool's terms.
// Existing positions claim at the new yield rate.
func (c *Client) BuildSetPoolConfig(ctx context.Context, authority, config ed25519.PublicKey, poolIndex uint32, args *bertstaking.PoolConfigArgs) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildSetPoolConfig")
	defer tracer.End()

	tracer.AddAttribute("pool_index", poolIndex)

	if args.LockPeriodDays == 0 {
		err := errors.Wrap(bertstaking.ErrInvalidArgument, "lock period is required")
		tracer.OnError(err)
		return nil, err
	}

	// The program only accepts new terms while the pool is paused, which is
	// the state a pause would conflict with.
	plan, err := c.buildPoolAdmin(ctx, authority, config, poolIndex, false, func(accounts *bertstaking.AdminPoolInstructionAccounts) solana.Instruction {
		return c.program.NewAdminSetPoolConfigInstruction(accounts, args)
	})
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

// buildPoolAdmin checks authority and the pool's pause state. conflictsWhenPaused
// selects which state is a conflict.
func (c *Client) buildPoolAdmin(
	ctx context.Context,
	authority, config ed25519.PublicKey,
	poolIndex uint32,
	conflictsWhenPaused bool,
	build func(*bertstaking.AdminPoolInstructionAccounts) solana.Instruction,
) (*Plan, error) {
	poolAddress, _, err := c.program.GetPoolAddress(&bertstaking.GetPoolAddressArgs{
		Config: config,
		Index:  poolIndex,
	})
	if err != nil {
		return nil, err
	}

	infos, err := c.fetchAccounts(ctx, config, poolAddress)
	if err != nil {
		return nil, err
	}

	configAccount, err := decodeAccount[bertstaking.ConfigAccount](c.program.ID(), config, infos[0])
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if err := checkAuthority(configAccount, authority); err != nil {
		return nil, err
	}

	pool, err := decodeAccount[bertstaking.PoolAccount](c.program.ID(), poolAddress, infos[1])
	if err != nil {
		return nil, errors.Wrapf(err, "pool %d", poolIndex)
	}

	if pool.IsPaused == conflictsWhenPaused {
		res := bertstaking.NewLocalRejection(bertstaking.RejectionPoolStateConflict)
		res.PoolIndex = poolIndex
		return nil, res
	}

	return &Plan{
		Instructions: []solana.Instruction{
			build(&bertstaking.AdminPoolInstructionAccounts{
				Authority: authority,
				Config:    config,
				Pool:      poolAddress,
			}),
		},
		rejectionContext: &bertstaking.RejectionContext{
			PoolIndex: poolIndex,
		},
	}, nil
}

// BuildWithdrawTokens returns the instruction moving amount from the yield
// reserve to the config's withdraw destination.
func (c *Client) BuildWithdrawTokens(ctx context.Context, authority, config ed25519.PublicKey, amount uint64) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildWithdrawTokens")
	defer tracer.End()

	tracer.AddAttribute("amount", amount)

	plan, err := c.buildWithdrawTokens(ctx, authority, config, amount)
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

func (c *Client) buildWithdrawTokens(ctx context.Context, authority, config ed25519.PublicKey, amount uint64) (*Plan, error) {
	if amount == 0 {
		return nil, bertstaking.NewLocalRejection(bertstaking.RejectionMalformedInput)
	}

	configAccount, err := getAccount[bertstaking.ConfigAccount](ctx, c, config)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if err := checkAuthority(configAccount, authority); err != nil {
		return nil, err
	}

	vault, err := c.tokens.GetAccount(ctx, configAccount.AuthorityVault, configAccount.Mint, c.commitment(ctx))
	if errors.Is(err, token.ErrAccountNotFound) {
		return nil, errors.Wrap(ErrAccountNotFound, "authority vault")
	} else if err != nil {
		return nil, err
	}

	if vault.Amount < amount {
		res := bertstaking.NewLocalRejection(bertstaking.RejectionInsufficientYieldFunds)
		res.Requested = amount
		res.Remaining = vault.Amount
		return nil, res
	}

	// The program only pays out to the destination wallet's token account
	destination, err := token.GetAssociatedAccount(configAccount.AdminWithdrawDestination, configAccount.Mint)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Instructions: []solana.Instruction{
			c.program.NewAdminWithdrawTokensInstruction(
				&bertstaking.AdminWithdrawTokensInstructionAccounts{
					Authority:                authority,
					Config:                   config,
					AuthorityVault:           configAccount.AuthorityVault,
					AdminWithdrawDestination: destination,
				},
				&bertstaking.AdminWithdrawTokensInstructionArgs{
					Amount: amount,
				},
			),
		},
		rejectionContext: &bertstaking.RejectionContext{
			Requested: amount,
		},
	}, nil
}

// BuildDepositYield returns a transfer of amount from source, which defaults
// to the authority's associated token account, into the yield reserve.
func (c *Client) BuildDepositYield(ctx context.Context, authority, config, source ed25519.PublicKey, amount uint64) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildDepositYield")
	defer tracer.End()

	plan, err := c.buildDepositYield(ctx, authority, config, source, amount)
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

func (c *Client) buildDepositYield(ctx context.Context, authority, config, source ed25519.PublicKey, amount uint64) (*Plan, error) {
	if amount == 0 {
		return nil, bertstaking.NewLocalRejection(bertstaking.RejectionMalformedInput)
	}

	configAccount, err := getAccount[bertstaking.ConfigAccount](ctx, c, config)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}

	decimals, err := c.GetMintDecimals(ctx, configAccount.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "mint")
	}

	source, err = ownerTokenAccount(source, authority, configAccount.Mint)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Instructions: []solana.Instruction{
			bertstaking.NewDepositYieldInstruction(
				&bertstaking.DepositYieldInstructionAccounts{
					Authority:      authority,
					Source:         source,
					Mint:           configAccount.Mint,
					AuthorityVault: configAccount.AuthorityVault,
				},
				amount,
				decimals,
			),
		},
	}, nil
}

func checkAuthority(config *bertstaking.ConfigAccount, authority ed25519.PublicKey) error {
	if !bytes.Equal(config.Authority, authority) {
		return bertstaking.NewLocalRejection(bertstaking.RejectionUnauthorized)
	}
	return nil
}
