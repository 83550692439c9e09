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
	"github.com/bert-labs/bert-staking-client/pkg/solana/system"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
)

type ClaimTokenArgs struct {
	Owner      ed25519.PublicKey
	Config     ed25519.PublicKey
	PositionID uint64

	// TokenAccount defaults to the owner's associated token account.
	TokenAccount ed25519.PublicKey
}

type ClaimNftArgs struct {
	Owner      ed25519.PublicKey
	Config     ed25519.PublicKey
	Asset      ed25519.PublicKey
	PositionID uint64

	// Payer defaults to Owner.
	Payer ed25519.PublicKey

	// UpdateAuthority is the collection's update authority. It defaults to
	// the config authority.
	UpdateAuthority ed25519.PublicKey

	// TokenAccount defaults to the owner's associated token account.
	TokenAccount ed25519.PublicKey
}

// claimState is the state a claim decision is based on.
type claimState struct {
	config   *bertstaking.ConfigAccount
	position *bertstaking.PositionAccount
	pool     *bertstaking.PoolAccount
	now      int64

	userAddress   ed25519.PublicKey
	userPoolStats ed25519.PublicKey
	preview       *bertstaking.ClaimPreview
}

// BuildClaimToken checks that the token position is owned by args.Owner,
// unclaimed, unlocked at cluster time and covered by the yield reserve, and
// returns the claim instruction.
func (c *Client) BuildClaimToken(ctx context.Context, args *ClaimTokenArgs) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildClaimToken")
	defer tracer.End()

	tracer.AddAttribute("position_id", args.PositionID)

	plan, err := c.buildClaimToken(ctx, args)
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

func (c *Client) buildClaimToken(ctx context.Context, args *ClaimTokenArgs) (*Plan, error) {
	config, err := getAccount[bertstaking.ConfigAccount](ctx, c, args.Config)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}

	position, _, err := c.program.GetPositionAddress(&bertstaking.GetPositionAddressArgs{
		Owner: args.Owner,
		Mint:  config.Mint,
		Id:    args.PositionID,
	})
	if err != nil {
		return nil, err
	}

	state, err := c.getClaimState(ctx, args.Owner, args.Config, config, bertstaking.PositionTypeToken, args.PositionID, position)
	if err != nil {
		return nil, err
	}

	tokenAccount, err := ownerTokenAccount(args.TokenAccount, args.Owner, config.Mint)
	if err != nil {
		return nil, err
	}

	ixn := c.program.NewClaimPositionTokenInstruction(&bertstaking.ClaimPositionTokenInstructionAccounts{
		Owner:          args.Owner,
		Config:         args.Config,
		Pool:           state.position.Pool,
		UserAccount:    state.userAddress,
		UserPoolStats:  state.userPoolStats,
		Position:       position,
		Collection:     config.Collection,
		Mint:           config.Mint,
		TokenAccount:   tokenAccount,
		Vault:          config.Vault,
		AuthorityVault: config.AuthorityVault,
	})

	return state.plan(position, ixn), nil
}

// BuildClaimNft is BuildClaimToken for NFT positions. The asset is returned
// to the owner and the yield is paid in tokens.
func (c *Client) BuildClaimNft(ctx context.Context, args *ClaimNftArgs) (*Plan, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildClaimNft")
	defer tracer.End()

	tracer.AddAttribute("position_id", args.PositionID)

	plan, err := c.buildClaimNft(ctx, args)
	if err != nil {
		tracer.OnError(err)
	}
	return plan, err
}

func (c *Client) buildClaimNft(ctx context.Context, args *ClaimNftArgs) (*Plan, error) {
	config, err := getAccount[bertstaking.ConfigAccount](ctx, c, args.Config)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}

	addressArgs := &bertstaking.GetNftPositionAddressArgs{
		Owner: args.Owner,
		Mint:  config.Mint,
		Asset: args.Asset,
		Id:    args.PositionID,
	}
	position, _, err := c.program.GetNftPositionAddress(addressArgs)
	if err != nil {
		return nil, err
	}

	state, err := c.getClaimState(ctx, args.Owner, args.Config, config, bertstaking.PositionTypeNft, args.PositionID, position)
	if errors.Is(err, ErrAccountNotFound) {
		// Positions opened before ids were seeded live at the legacy address
		legacy, _, legacyErr := c.program.GetLegacyNftPositionAddress(addressArgs)
		if legacyErr != nil {
			return nil, legacyErr
		}

		position = legacy
		state, err = c.getClaimState(ctx, args.Owner, args.Config, config, bertstaking.PositionTypeNft, args.PositionID, position)
	}
	if err != nil {
		return nil, err
	}

	if asset, _ := state.position.Asset(); !bytes.Equal(asset, args.Asset) {
		return nil, bertstaking.NewLocalRejection(bertstaking.RejectionMalformedInput)
	}

	tokenAccount, err := ownerTokenAccount(args.TokenAccount, args.Owner, config.Mint)
	if err != nil {
		return nil, err
	}

	updateAuthority := args.UpdateAuthority
	if len(updateAuthority) == 0 {
		updateAuthority = config.Authority
	}

	ixn := c.program.NewClaimPositionNftInstruction(&bertstaking.ClaimPositionNftInstructionAccounts{
		Owner:           args.Owner,
		Payer:           args.Payer,
		Config:          args.Config,
		Pool:            state.position.Pool,
		UserAccount:     state.userAddress,
		UserPoolStats:   state.userPoolStats,
		Position:        position,
		Collection:      config.Collection,
		UpdateAuthority: updateAuthority,
		Asset:           args.Asset,
		Mint:            config.Mint,
		TokenAccount:    tokenAccount,
		Vault:           config.Vault,
		AuthorityVault:  config.AuthorityVault,
	})

	return state.plan(position, ixn), nil
}

func (c *Client) getClaimState(
	ctx context.Context,
	owner ed25519.PublicKey,
	configAddress ed25519.PublicKey,
	config *bertstaking.ConfigAccount,
	positionType bertstaking.PositionType,
	positionID uint64,
	positionAddress ed25519.PublicKey,
) (*claimState, error) {
	log := c.log.WithFields(logrus.Fields{
		"method":   "getClaimState",
		"owner":    base58.Encode(owner),
		"position": base58.Encode(positionAddress),
	})

	infos, err := c.fetchAccounts(ctx, positionAddress, system.ClockSysVar)
	if err != nil {
		return nil, err
	}

	position, err := decodeAccount[bertstaking.PositionAccount](c.program.ID(), positionAddress, infos[0])
	if err != nil {
		return nil, err
	}

	// Legacy NFT addresses aren't seeded by id, so the stored id decides
	// whether this is the requested position.
	if position.Id != positionID {
		return nil, errors.Wrapf(ErrAccountNotFound, "position %d", positionID)
	}

	if infos[1] == nil {
		return nil, errors.New("clock sysvar is unavailable")
	}
	var clock system.Clock
	if err := clock.Unmarshal(infos[1].Data); err != nil {
		return nil, err
	}

	state := &claimState{
		config:   config,
		position: position,
		now:      clock.UnixTimestamp,
	}

	if !bytes.Equal(position.Owner, owner) {
		res := bertstaking.NewLocalRejection(bertstaking.RejectionUnauthorized)
		res.PositionID = position.Id
		return nil, res
	}
	if position.Kind() != positionType {
		return nil, errors.Wrapf(bertstaking.NewLocalRejection(bertstaking.RejectionMalformedInput), "position is a %s position", position.Kind())
	}

	if err := bertstaking.CheckClaim(position, state.now); err != nil {
		log.WithError(err).Debug("claim rejected locally")
		return nil, err
	}

	state.userAddress, _, err = c.program.GetUserAddress(&bertstaking.GetUserAddressArgs{
		Owner:  owner,
		Config: configAddress,
	})
	if err != nil {
		return nil, err
	}

	state.userPoolStats, _, err = c.program.GetUserPoolStatsAddress(&bertstaking.GetUserPoolStatsAddressArgs{
		Owner: owner,
		Pool:  position.Pool,
	})
	if err != nil {
		return nil, err
	}

	infos, err = c.fetchAccounts(ctx, position.Pool, config.AuthorityVault)
	if err != nil {
		return nil, err
	}

	state.pool, err = decodeAccount[bertstaking.PoolAccount](c.program.ID(), position.Pool, infos[0])
	if err != nil {
		return nil, errors.Wrap(err, "pool")
	}

	state.preview, err = bertstaking.PreviewClaim(position, state.pool)
	if err != nil {
		return nil, err
	}

	if state.preview.Yield > 0 {
		var reserve uint64
		if infos[1] != nil {
			var vault token.Account
			if err := vault.Unmarshal(infos[1].Data); err != nil {
				return nil, errors.Wrap(err, "authority vault")
			}
			reserve = vault.Amount
		}

		if reserve < state.preview.Yield {
			log.WithFields(logrus.Fields{
				"yield":   state.preview.Yield,
				"reserve": reserve,
			}).Debug("yield reserve cannot cover claim")

			res := bertstaking.NewLocalRejection(bertstaking.RejectionInsufficientYieldFunds)
			res.PositionID = position.Id
			res.Requested = state.preview.Yield
			res.Remaining = reserve
			return nil, res
		}
	}

	return state, nil
}

func (s *claimState) plan(position ed25519.PublicKey, ixn solana.Instruction) *Plan {
	return &Plan{
		Instructions: []solana.Instruction{ixn},
		Position:     position,
		PositionID:   s.position.Id,
		Preview:      s.preview,
		rejectionContext: &bertstaking.RejectionContext{
			Position:  s.position,
			Now:       s.now,
			PoolIndex: s.pool.Index,
		},
	}
}

func ownerTokenAccount(override, owner, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	if len(override) > 0 {
		return override, nil
	}
	return token.GetAssociatedAccount(owner, mint)
}
