// Package staking reads staking program state and assembles the transactions
// that change it.
//
// Every decision a flow makes is based on state fetched immediately before
// building, and the program's verdict on submission is authoritative.
package staking

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bert-labs/bert-staking-client/pkg/cache"
	"github.com/bert-labs/bert-staking-client/pkg/metrics"
	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
	"github.com/bert-labs/bert-staking-client/pkg/solana/token"
	sync_util "github.com/bert-labs/bert-staking-client/pkg/sync"
)

const (
	metricsStructName = "staking.client"

	ownerLockStripes  = 256
	mintDecimalsCache = 1_000
)

// Client is the query and flow layer for one deployment of the staking
// program. It is safe for concurrent use.
type Client struct {
	log  *logrus.Entry
	conf *conf

	sc      solana.Client
	tokens  *token.Client
	program bertstaking.Program

	ownerLocks   *sync_util.StripedLock
	mintDecimals *cache.Cache[string, uint8]
}

// NewClient returns a Client for the program deployment, reading and
// submitting through sc.
func NewClient(sc solana.Client, program bertstaking.Program, configProvider ConfigProvider) *Client {
	return &Client{
		log:          logrus.StandardLogger().WithField("type", "staking/client"),
		conf:         configProvider(),
		sc:           sc,
		tokens:       token.NewClient(sc),
		program:      program,
		ownerLocks:   sync_util.NewStripedLock(ownerLockStripes),
		mintDecimals: cache.New[string, uint8](mintDecimalsCache),
	}
}

// Program returns the deployment the client targets.
func (c *Client) Program() bertstaking.Program {
	return c.program
}

func (c *Client) commitment(ctx context.Context) solana.Commitment {
	raw := c.conf.commitment.Get(ctx)
	commitment, err := solana.ParseCommitment(raw)
	if err != nil {
		c.log.WithError(err).WithField("commitment", raw).Warn("invalid commitment configured, using confirmed")
		return solana.CommitmentConfirmed
	}
	return commitment
}

// fetchAccounts reads addresses in a single round trip. Missing accounts are
// nil.
func (c *Client) fetchAccounts(ctx context.Context, addresses ...ed25519.PublicKey) ([]*solana.AccountInfo, error) {
	start := time.Now()
	infos, err := c.sc.GetMultipleAccounts(ctx, c.commitment(ctx), addresses...)
	metrics.RecordDuration(ctx, "staking.rpc.get_multiple_accounts", time.Since(start))
	if err != nil {
		return nil, err
	}

	if len(infos) != len(addresses) {
		return nil, errors.Errorf("requested %d accounts, got %d", len(addresses), len(infos))
	}
	return infos, nil
}

type decodable[T any] interface {
	*T
	Unmarshal(data []byte) error
}

func getAccount[T any, PT decodable[T]](ctx context.Context, c *Client, address ed25519.PublicKey) (*T, error) {
	start := time.Now()
	info, err := c.sc.GetAccountInfo(ctx, address, c.commitment(ctx))
	metrics.RecordDuration(ctx, "staking.rpc.get_account_info", time.Since(start))
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, err
	}

	return decodeAccount[T, PT](c.program.ID(), address, &info)
}

func decodeAccount[T any, PT decodable[T]](program, address ed25519.PublicKey, info *solana.AccountInfo) (*T, error) {
	if info == nil {
		return nil, ErrAccountNotFound
	}

	if !bytes.Equal(info.Owner, program) {
		return nil, errors.Wrapf(bertstaking.ErrInvalidAccountData, "%s is not owned by the staking program", base58.Encode(address))
	}

	var res T
	if err := PT(&res).Unmarshal(info.Data); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", base58.Encode(address))
	}
	return &res, nil
}
