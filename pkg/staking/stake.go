package staking

import (
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

type StakeTokenArgs struct {
	Owner      ed25519.PublicKey
	Config     ed25519.PublicKey
	PoolIndex  uint32
	Amount     uint64
	PositionID uint64

	// TokenAccount defaults to the owner's associated token account.
	TokenAccount ed25519.PublicKey
}

type StakeNftArgs struct {
	Owner      ed25519.PublicKey
	Config     ed25519.PublicKey
	PoolIndex  uint32
	Asset      ed25519.PublicKey
	PositionID uint64
}

// stakeState is the state a stake decision is based on, read in one round
// trip.
type stakeState struct {
	config        *bertstaking.ConfigAccount
	pool          *bertstaking.PoolAccount
	user          *bertstaking.UserAccount
	poolAddress   ed25519.PublicKey
	userAddress   ed25519.PublicKey
	userPoolStats ed25519.PublicKey
}

// BuildStakeToken checks the stake against fresh pool and config state and
// returns the instructions staking args.Amount tokens. The owner's user
// account is opened first when it does not exist.
func (c *Client) BuildStakeToken(ctx context.Context, args *StakeTokenArgs) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildStakeToken")
	defer tracer.End()

	tracer.AddAttributes(metrics.Attributes{
		"pool_index":  args.PoolIndex,
		"position_id": args.PositionID,
		"amount":      args.Amount,
	})

	plan, err := c.buildStakeToken(ctx, args)
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

func (c *Client) buildStakeToken(ctx context.Context, args *StakeTokenArgs) (*Plan, error) {
	log := c.log.WithFields(logrus.Fields{
		"method":      "BuildStakeToken",
		"owner":       base58.Encode(args.Owner),
		"pool_index":  args.PoolIndex,
		"amount":      args.Amount,
		"position_id": args.PositionID,
	})

	state, err := c.getStakeState(ctx, args.Owner, args.Config, args.PoolIndex)
	if err != nil {
		return nil, err
	}

	if err := bertstaking.CheckTokenStake(state.pool, state.config, args.Amount); err != nil {
		log.WithError(err).Debug("stake rejected locally")
		return nil, err
	}

	position, _, err := c.program.GetPositionAddress(&bertstaking.GetPositionAddressArgs{
		Owner: args.Owner,
		Mint:  state.config.Mint,
		Id:    args.PositionID,
	})
	if err != nil {
		return nil, err
	}
	if err := c.checkPositionUnused(ctx, position); err != nil {
		return nil, err
	}

	tokenAccount := args.TokenAccount
	if len(tokenAccount) == 0 {
		tokenAccount, err = token.GetAssociatedAccount(args.Owner, state.config.Mint)
		if err != nil {
			return nil, err
		}
	}

	plan := &Plan{
		Position:   position,
		PositionID: args.PositionID,
		rejectionContext: &bertstaking.RejectionContext{
			PoolIndex: args.PoolIndex,
			Requested: args.Amount,
		},
	}
	c.prependInitiateUser(plan, args.Owner, args.Config, state)

	plan.Instructions = append(plan.Instructions, c.program.NewStakeTokenInstruction(
		&bertstaking.StakeTokenInstructionAccounts{
			Owner:         args.Owner,
			Config:        args.Config,
			Pool:          state.poolAddress,
			UserAccount:   state.userAddress,
			UserPoolStats: state.userPoolStats,
			Position:      position,
			Mint:          state.config.Mint,
			TokenAccount:  tokenAccount,
			Vault:         state.config.Vault,
		},
		&bertstaking.StakeTokenInstructionArgs{
			Id:     args.PositionID,
			Amount: args.Amount,
		},
	))

	log.WithField("creates_user_account", plan.CreatesUserAccount).Debug("built token stake")
	return plan, nil
}

// BuildStakeNft checks the stake against fresh pool, config and user state
// and returns the instructions staking args.Asset.
func (c *Client) BuildStakeNft(ctx context.Context, args *StakeNftArgs) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildStakeNft")
	defer tracer.End()

	tracer.AddAttributes(metrics.Attributes{
		"pool_index":  args.PoolIndex,
		"position_id": args.PositionID,
	})

	plan, err := c.buildStakeNft(ctx, args)
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

func (c *Client) buildStakeNft(ctx context.Context, args *StakeNftArgs) (*Plan, error) {
	log := c.log.WithFields(logrus.Fields{
		"method":      "BuildStakeNft",
		"owner":       base58.Encode(args.Owner),
		"pool_index":  args.PoolIndex,
		"asset":       base58.Encode(args.Asset),
		"position_id": args.PositionID,
	})

	state, err := c.getStakeState(ctx, args.Owner, args.Config, args.PoolIndex)
	if err != nil {
		return nil, err
	}

	if err := bertstaking.CheckNftStake(state.pool, state.config, state.user); err != nil {
		log.WithError(err).Debug("stake rejected locally")
		return nil, err
	}

	position, _, err := c.program.GetNftPositionAddress(&bertstaking.GetNftPositionAddressArgs{
		Owner: args.Owner,
		Mint:  state.config.Mint,
		Asset: args.Asset,
		Id:    args.PositionID,
	})
	if err != nil {
		return nil, err
	}
	if err := c.checkPositionUnused(ctx, position); err != nil {
		return nil, err
	}

	plan := &Plan{
		Position:   position,
		PositionID: args.PositionID,
		rejectionContext: &bertstaking.RejectionContext{
			PoolIndex: args.PoolIndex,
			Requested: state.config.NftValueInTokens,
		},
	}
	c.prependInitiateUser(plan, args.Owner, args.Config, state)

	plan.Instructions = append(plan.Instructions, c.program.NewStakeNftInstruction(
		&bertstaking.StakeNftInstructionAccounts{
			Owner:         args.Owner,
			Config:        args.Config,
			Pool:          state.poolAddress,
			UserAccount:   state.userAddress,
			UserPoolStats: state.userPoolStats,
			Position:      position,
			Asset:         args.Asset,
			NftsVault:     state.config.NftsVault,
			Collection:    state.config.Collection,
			Mint:          state.config.Mint,
		},
		&bertstaking.StakeNftInstructionArgs{
			Id: args.PositionID,
		},
	))

	log.WithField("creates_user_account", plan.CreatesUserAccount).Debug("built nft stake")
	return plan, nil
}

func (c *Client) getStakeState(ctx context.Context, owner, config ed25519.PublicKey, poolIndex uint32) (*stakeState, error) {
	poolAddress, _, err := c.program.GetPoolAddress(&bertstaking.GetPoolAddressArgs{
		Config: config,
		Index:  poolIndex,
	})
	if err != nil {
		return nil, err
	}

	userAddress, _, err := c.program.GetUserAddress(&bertstaking.GetUserAddressArgs{
		Owner:  owner,
		Config: config,
	})
	if err != nil {
		return nil, err
	}

	userPoolStats, _, err := c.program.GetUserPoolStatsAddress(&bertstaking.GetUserPoolStatsAddressArgs{
		Owner: owner,
		Pool:  poolAddress,
	})
	if err != nil {
		return nil, err
	}

	infos, err := c.fetchAccounts(ctx, config, poolAddress, userAddress)
	if err != nil {
		return nil, err
	}

	state := &stakeState{
		poolAddress:   poolAddress,
		userAddress:   userAddress,
		userPoolStats: userPoolStats,
	}

	state.config, err = decodeAccount[bertstaking.ConfigAccount](c.program.ID(), config, infos[0])
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}

	state.pool, err = decodeAccount[bertstaking.PoolAccount](c.program.ID(), poolAddress, infos[1])
	if err != nil {
		return nil, errors.Wrapf(err, "pool %d", poolIndex)
	}

	if infos[2] != nil {
		state.user, err = decodeAccount[bertstaking.UserAccount](c.program.ID(), userAddress, infos[2])
		if err != nil {
			return nil, errors.Wrap(err, "user account")
		}
	}

	return state, nil
}

func (c *Client) prependInitiateUser(plan *Plan, owner, config ed25519.PublicKey, state *stakeState) {
	if state.user != nil {
		return
	}

	plan.CreatesUserAccount = true
	plan.Instructions = append(plan.Instructions, c.program.NewInitiateUserInstruction(
		&bertstaking.InitiateUserInstructionAccounts{
			Owner:       owner,
			Config:      config,
			Pool:        state.poolAddress,
			UserAccount: state.userAddress,
			Mint:        state.config.Mint,
		},
	))
}

func (c *Client) newInitiateUserInstruction(owner, config, pool, mint ed25519.PublicKey) (solana.Instruction, error) {
	userAddress, _, err := c.program.GetUserAddress(&bertstaking.GetUserAddressArgs{
		Owner:  owner,
		Config: config,
	})
	if err != nil {
		return solana.Instruction{}, err
	}

	return c.program.NewInitiateUserInstruction(&bertstaking.InitiateUserInstructionAccounts{
		Owner:       owner,
		Config:      config,
		Pool:        pool,
		UserAccount: userAddress,
		Mint:        mint,
	}), nil
}

// checkPositionUnused rejects position ids that are already taken, which the
// program would otherwise fail on when creating the position.
func (c *Client) checkPositionUnused(ctx context.Context, position ed25519.PublicKey) error {
	_, err := c.sc.GetAccountInfo(ctx, position, c.commitment(ctx))
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return nil
	} else if err != nil {
		return err
	}

	return bertstaking.NewLocalRejection(bertstaking.RejectionAlreadyInUse)
}
