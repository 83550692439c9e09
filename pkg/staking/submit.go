package staking

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bert-labs/bert-staking-client/pkg/metrics"
	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
	"github.com/bert-labs/bert-staking-client/pkg/solana/computebudget"
)

const (
	submitDurationMetricName = "staking.submit.duration"
	submitCountMetricName    = "staking.submit.count"
	rejectionEventName       = "StakingRejection"
)

// Submit signs and sends instructions, then waits for the configured
// commitment. payer pays fees and is always a signer.
//
// A program rejection is returned as a *bertstaking.RejectionError whose
// InstructionIndex refers to instructions. Anything else, including a
// confirmation timeout, is a transport or client error and the transaction
// may or may not have landed.
func (c *Client) Submit(ctx context.Context, payer ed25519.PrivateKey, signers []ed25519.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Submit")
	defer tracer.End()

	sig, err := c.submit(ctx, nil, payer, signers, instructions)
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

// SubmitPlan submits a plan's instructions, classifying rejections with what
// was known when the plan was built.
func (c *Client) SubmitPlan(ctx context.Context, payer ed25519.PrivateKey, signers []ed25519.PrivateKey, plan *Plan) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "SubmitPlan")
	defer tracer.End()

	sig, err := c.submit(ctx, plan.RejectionContext(), payer, signers, plan.Instructions)
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

func (c *Client) submit(
	ctx context.Context,
	rc *bertstaking.RejectionContext,
	payer ed25519.PrivateKey,
	signers []ed25519.PrivateKey,
	instructions []solana.Instruction,
) (solana.Signature, error) {
	if len(instructions) == 0 {
		return solana.Signature{}, errors.Wrap(bertstaking.ErrInvalidArgument, "no instructions")
	}

	start := time.Now()
	defer func() {
		metrics.RecordDuration(ctx, submitDurationMetricName, time.Since(start))
		metrics.RecordCount(ctx, submitCountMetricName, 1)
	}()

	payerKey := payer.Public().(ed25519.PublicKey)
	log := c.log.WithFields(logrus.Fields{
		"method": "submit",
		"op_id":  uuid.NewString(),
		"payer":  base58.Encode(payerKey),
	})

	limit := c.conf.computeUnitLimit.Get(ctx)
	if limit > uint64(^uint32(0)) {
		limit = uint64(^uint32(0))
	}
	withBudget := computebudget.WithBudget(uint32(limit), c.conf.computeUnitPrice.Get(ctx), instructions...)
	budgetCount := len(withBudget) - len(instructions)

	bh, err := c.sc.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to get recent blockhash")
	}

	txn := solana.NewTransaction(payerKey, withBudget...)
	txn.SetBlockhash(bh)
	if err := txn.Sign(append([]ed25519.PrivateKey{payer}, signers...)...); err != nil {
		return solana.Signature{}, err
	}
	for i, sig := range txn.Signatures {
		if sig == (solana.Signature{}) {
			return solana.Signature{}, errors.Wrapf(ErrMissingSignature, "%s", base58.Encode(txn.Message.Accounts[i]))
		}
	}
	if err := txn.CheckSize(); err != nil {
		return solana.Signature{}, err
	}

	commitment := c.commitment(ctx)
	log = log.WithField("signature", txn.Signature().String())

	sig, err := c.sc.SubmitTransaction(ctx, txn, commitment)
	if err != nil {
		var txErr *solana.TransactionError
		if errors.As(err, &txErr) {
			return sig, c.reject(ctx, log, txErr, rc, budgetCount)
		}

		log.WithError(err).Warn("failed to submit transaction")
		return sig, err
	}

	confirmCtx, cancel := context.WithTimeout(ctx, c.conf.confirmationTimeout.Get(ctx))
	defer cancel()

	status, err := c.sc.GetSignatureStatus(confirmCtx, sig, commitment)
	if err != nil {
		log.WithError(err).Warn("transaction not confirmed")
		return sig, errors.Wrap(err, "failed to confirm transaction")
	}
	if status != nil && status.ErrorResult != nil {
		return sig, c.reject(ctx, log, status.ErrorResult, rc, budgetCount)
	}

	log.Debug("transaction confirmed")
	return sig, nil
}

func (c *Client) reject(
	ctx context.Context,
	log *logrus.Entry,
	txErr *solana.TransactionError,
	rc *bertstaking.RejectionContext,
	budgetCount int,
) error {
	res := bertstaking.ClassifyTransactionError(txErr, rc)

	// Budget instructions were prepended here, so indices are reported
	// relative to the caller's instructions.
	if res.InstructionIndex >= budgetCount {
		res.InstructionIndex -= budgetCount
	} else {
		res.InstructionIndex = -1
	}

	log.WithError(res).WithFields(logrus.Fields{
		"kind": res.Kind,
		"code": res.Code,
	}).Info("transaction rejected")

	metrics.RecordEvent(ctx, rejectionEventName, res.TraceAttributes())

	return res
}

// EnsureUserAccount creates the owner's user account for config unless it
// already exists. It reports whether this call created it. Concurrent callers
// in the same process are serialized per owner, and losing a race to another
// process is not an error.
func (c *Client) EnsureUserAccount(ctx context.Context, owner ed25519.PrivateKey, config, pool ed25519.PublicKey) (bool, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "EnsureUserAccount")
	defer tracer.End()

	created, err := c.ensureUserAccount(ctx, owner, config, pool)
	if err != nil {
		tracer.OnError(err)
	}
	return created, err
}

func (c *Client) ensureUserAccount(ctx context.Context, owner ed25519.PrivateKey, config, pool ed25519.PublicKey) (bool, error) {
	ownerKey := owner.Public().(ed25519.PublicKey)

	unlock := c.ownerLocks.Lock(ownerKey)
	defer unlock()

	exists, err := c.UserAccountExists(ctx, ownerKey, config)
	if err != nil {
		return false, err
	} else if exists {
		return false, nil
	}

	configAccount, err := getAccount[bertstaking.ConfigAccount](ctx, c, config)
	if err != nil {
		return false, errors.Wrap(err, "config")
	}

	ixn, err := c.newInitiateUserInstruction(ownerKey, config, pool, configAccount.Mint)
	if err != nil {
		return false, err
	}

	_, err = c.submit(ctx, nil, owner, nil, []solana.Instruction{ixn})
	if bertstaking.IsRejection(err, bertstaking.RejectionAlreadyInUse) {
		c.log.WithFields(logrus.Fields{
			"method": "EnsureUserAccount",
			"owner":  base58.Encode(ownerKey),
		}).Debug("user account created concurrently")
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
