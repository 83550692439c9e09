package solana

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/bert-labs/bert-staking-client/pkg/metrics"
	"github.com/bert-labs/bert-staking-client/pkg/rate"
	"github.com/bert-labs/bert-staking-client/pkg/retry"
	"github.com/bert-labs/bert-staking-client/pkg/retry/backoff"
)

const (
	// todo: we can retrieve these from the Syscall account
	//       but they're unlikely to change.
	ticksPerSec  = 160
	ticksPerSlot = 64
	slotsPerSec  = ticksPerSec / ticksPerSlot

	// PollRate is the rate at which signature statuses are polled.
	PollRate = (time.Second / slotsPerSec) / 2

	// Poll rate is ~2x the slot rate, and we want to wait ~32 slots
	defaultSigStatusPollLimit = 2 * 32

	// DefaultTimeout bounds a single RPC round trip when the caller's context
	// has no earlier deadline.
	DefaultTimeout = 30 * time.Second

	// maxAccountsPerRequest is the getMultipleAccounts limit.
	maxAccountsPerRequest = 100

	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// ParseCommitment parses processed, confirmed or finalized.
func ParseCommitment(s string) (Commitment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case confirmationStatusProcessed:
		return CommitmentProcessed, nil
	case confirmationStatusConfirmed:
		return CommitmentConfirmed, nil
	case confirmationStatusFinalized:
		return CommitmentFinalized, nil
	}
	return Commitment{}, errors.Errorf("unknown commitment: %q", s)
}

var (
	ErrNoAccountInfo     = errors.New("no account info")
	ErrSignatureNotFound = errors.New("signature not found")
)

// AccountInfo contains the Solana account information (not to be confused with a TokenAccount)
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

// KeyedAccount is an account returned by getProgramAccounts.
type KeyedAccount struct {
	PublicKey ed25519.PublicKey
	Account   AccountInfo
}

// ProgramAccountsFilter narrows getProgramAccounts results. Exactly one of
// DataSize or Memcmp should be set; use FilterDataSize or FilterMemcmp.
type ProgramAccountsFilter struct {
	DataSize uint64        `json:"dataSize,omitempty"`
	Memcmp   *MemcmpFilter `json:"memcmp,omitempty"`
}

type MemcmpFilter struct {
	Offset uint64 `json:"offset"`
	Bytes  string `json:"bytes"`
}

// FilterDataSize matches accounts whose data is exactly size bytes.
func FilterDataSize(size uint64) ProgramAccountsFilter {
	return ProgramAccountsFilter{DataSize: size}
}

// FilterMemcmp matches accounts whose data contains value at offset.
func FilterMemcmp(offset uint64, value []byte) ProgramAccountsFilter {
	return ProgramAccountsFilter{
		Memcmp: &MemcmpFilter{
			Offset: offset,
			Bytes:  base58.Encode(value),
		},
	}
}

type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Confirmations will be nil if the transaction has been rooted.
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Confirmed() bool {
	if s.Finalized() {
		return true
	}

	if s.ConfirmationStatus == confirmationStatusConfirmed {
		return true
	}

	return *s.Confirmations >= 1
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

// Client provides an interaction with the Solana JSON RPC API. Every call
// honours ctx; calls without a deadline are bounded by the client timeout.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (AccountInfo, error)
	// GetMultipleAccounts returns one entry per account, nil where the
	// account does not exist.
	GetMultipleAccounts(ctx context.Context, commitment Commitment, accounts ...ed25519.PublicKey) ([]*AccountInfo, error)
	GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, commitment Commitment, filters ...ProgramAccountsFilter) ([]KeyedAccount, error)
	GetBalance(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (Blockhash, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (lamports uint64, err error)
	GetSlot(ctx context.Context, commitment Commitment) (uint64, error)
	GetSignatureStatus(ctx context.Context, sig Signature, commitment Commitment) (*SignatureStatus, error)
	GetSignatureStatuses(ctx context.Context, sigs []Signature) ([]*SignatureStatus, error)
	RequestAirdrop(ctx context.Context, account ed25519.PublicKey, lamports uint64, commitment Commitment) (Signature, error)
	SubmitTransaction(ctx context.Context, txn Transaction, commitment Commitment) (Signature, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type rpcResponse struct {
	Context struct {
		Slot int64 `json:"slot"`
	} `json:"context"`
	Value interface{} `json:"value"`
}

type rpcAccount struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
}

func (a *rpcAccount) toAccountInfo() (info AccountInfo, err error) {
	info.Owner, err = base58.Decode(a.Owner)
	if err != nil {
		return info, errors.Wrap(err, "invalid base58 encoded owner")
	}

	if len(a.Data) == 0 {
		return info, errors.New("missing account data")
	}
	info.Data, err = base64.StdEncoding.DecodeString(a.Data[0])
	if err != nil {
		return info, errors.Wrap(err, "invalid base64 encoded data")
	}

	info.Lamports = a.Lamports
	info.Executable = a.Executable
	return info, nil
}

type accountsConfig struct {
	Commitment string                  `json:"commitment"`
	Encoding   string                  `json:"encoding"`
	Filters    []ProgramAccountsFilter `json:"filters,omitempty"`
}

// Option configures a client.
type Option func(*options)

type options struct {
	timeout      time.Duration
	limiter      rate.Limiter
	httpClient   *http.Client
	log          *logrus.Entry
	sigPollLimit uint
}

// WithTimeout sets the per request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithRateLimiter throttles requests, keyed by RPC method.
func WithRateLimiter(limiter rate.Limiter) Option {
	return func(o *options) {
		o.limiter = limiter
	}
}

// WithHTTPClient overrides the underlying HTTP client. Its Timeout takes
// precedence over WithTimeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// WithSignaturePollLimit bounds how many times GetSignatureStatus polls
// before giving up with ErrTimeout.
func WithSignaturePollLimit(limit uint) Option {
	return func(o *options) {
		if limit > 0 {
			o.sigPollLimit = limit
		}
	}
}

// WithLogger sets the base log entry.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		o.log = log
	}
}

type client struct {
	log     *logrus.Entry
	client  jsonrpc.RPCClient
	limiter rate.Limiter
	timeout time.Duration

	sigPollLimit uint

	// reads are retried on throttling, node errors and transport failures.
	// Submissions only on throttling, since anything else may have landed.
	readRetrier   retry.Retrier
	submitRetrier retry.Retrier

	blockMu   sync.RWMutex
	blockhash Blockhash
	lastWrite time.Time
}

// New returns a client using the specified endpoint.
func New(endpoint string, opts ...Option) Client {
	o := &options{
		timeout:      DefaultTimeout,
		limiter:      &rate.NoLimiter{},
		log:          logrus.StandardLogger().WithField("type", "solana/client"),
		sigPollLimit: defaultSigStatusPollLimit,
	}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &client{
		log:          o.log,
		client:       jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{HTTPClient: httpClient}),
		limiter:      o.limiter,
		timeout:      o.timeout,
		sigPollLimit: o.sigPollLimit,
		readRetrier: retry.NewRetrier(
			retry.RetriableFunc(isRetriableRead),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(500*time.Millisecond), 5*time.Second, 0.1),
		),
		submitRetrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(500*time.Millisecond), 5*time.Second, 0.1),
		),
	}
}

func isRetriableRead(err error) bool {
	return errors.Is(err, errRateLimited) || errors.Is(err, errServiceError) || IsTransportError(err)
}

func (c *client) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	_, err := c.readRetrier.Retry(ctx, func() error {
		return c.callOnce(ctx, out, method, params...)
	})
	return err
}

// callOnce performs a single round trip. The underlying JSON-RPC client has
// no context support, so the call runs in its own goroutine and is abandoned
// (bounded by the HTTP client timeout) if ctx finishes first.
func (c *client) callOnce(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx, method); err != nil {
		return wrapTransportError(ctx, err)
	}

	start := time.Now()
	defer func() {
		metrics.RecordDuration(ctx, "solana_rpc_"+method, time.Since(start))
	}()

	type result struct {
		resp *jsonrpc.RPCResponse
		err  error
	}

	done := make(chan result, 1)
	go func() {
		var res result
		// Params are always sent as a positional array, which the Solana RPC
		// requires even for a single object argument.
		if len(params) == 0 {
			res.resp, res.err = c.client.Call(method)
		} else {
			res.resp, res.err = c.client.Call(method, params)
		}
		done <- res
	}()

	var res result
	select {
	case <-ctx.Done():
		return wrapTransportError(ctx, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		return c.handleRpcError(ctx, method, res.err)
	}
	if res.resp == nil {
		return errors.Wrapf(ErrTransport, "%s(): empty response", method)
	}
	if res.resp.Error != nil {
		return c.handleRpcError(ctx, method, res.resp.Error)
	}
	if out == nil {
		return nil
	}
	if err := res.resp.GetObject(out); err != nil {
		return errors.Wrapf(err, "%s(): invalid response", method)
	}
	return nil
}

func (c *client) handleRpcError(ctx context.Context, method string, err error) error {
	log := c.log.WithField("method", method)

	switch typed := err.(type) {
	case *jsonrpc.HTTPError:
		if typed.Code == http.StatusTooManyRequests {
			log.Warn("rate limited")
			return errRateLimited
		}
		if typed.Code >= http.StatusInternalServerError {
			return errors.Wrap(errServiceError, typed.Error())
		}
		return errors.Wrap(ErrTransport, typed.Error())
	case *jsonrpc.RPCError:
		if typed.Code == http.StatusTooManyRequests {
			log.Warn("rate limited")
			return errRateLimited
		}
		if typed.Code == rpcNodeUnhealthyCode {
			return errors.Wrap(errServiceError, typed.Message)
		}
		return typed
	}

	if wrapped := wrapTransportError(ctx, err); IsTransportError(wrapped) || errors.Is(wrapped, context.Canceled) {
		return wrapped
	}
	if strings.Contains(err.Error(), "Client.Timeout exceeded") {
		return errors.Wrap(ErrTimeout, err.Error())
	}

	// The JSON-RPC client flattens network failures into plain errors, so
	// anything that isn't an RPC or HTTP error is a transport failure.
	return errors.Wrap(ErrTransport, err.Error())
}

func (c *client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (lamports uint64, err error) {
	if err := c.call(ctx, &lamports, "getMinimumBalanceForRentExemption", dataSize); err != nil {
		return 0, errors.Wrapf(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) GetSlot(ctx context.Context, commitment Commitment) (slot uint64, err error) {
	if err := c.call(ctx, &slot, "getSlot", commitment); err != nil {
		return 0, errors.Wrapf(err, "getSlot() failed to send request")
	}

	return slot, nil
}

func (c *client) GetLatestBlockhash(ctx context.Context) (hash Blockhash, err error) {
	// To avoid thrashing around a similar periodic interval, we randomize
	// when we refresh our block hash.
	window := time.Duration(float64(2*time.Second) * (0.8 + rand.Float64()))

	c.blockMu.RLock()
	if time.Since(c.lastWrite) < window {
		hash = c.blockhash
	}
	c.blockMu.RUnlock()

	if hash != (Blockhash{}) {
		return hash, nil
	}

	var resp struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(ctx, &resp, "getLatestBlockhash", CommitmentFinalized); err != nil {
		return hash, errors.Wrapf(err, "getLatestBlockhash() failed to send request")
	}

	hashBytes, err := base58.Decode(resp.Value.Blockhash)
	if err != nil || len(hashBytes) != len(hash) {
		return hash, errors.Errorf("invalid blockhash in response: %q", resp.Value.Blockhash)
	}

	copy(hash[:], hashBytes)

	c.blockMu.Lock()
	c.blockhash = hash
	c.lastWrite = time.Now()
	c.blockMu.Unlock()

	return hash, nil
}

func (c *client) GetBalance(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (uint64, error) {
	var resp struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, &resp, "getBalance", base58.Encode(account), commitment); err != nil {
		return 0, errors.Wrapf(err, "getBalance() failed to send request")
	}

	return resp.Value, nil
}

func (c *client) GetAccountInfo(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (AccountInfo, error) {
	var resp struct {
		Value *rpcAccount `json:"value"`
	}

	config := accountsConfig{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}
	if err := c.call(ctx, &resp, "getAccountInfo", base58.Encode(account), config); err != nil {
		return AccountInfo{}, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return AccountInfo{}, ErrNoAccountInfo
	}

	return resp.Value.toAccountInfo()
}

func (c *client) GetMultipleAccounts(ctx context.Context, commitment Commitment, accounts ...ed25519.PublicKey) ([]*AccountInfo, error) {
	config := accountsConfig{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	infos := make([]*AccountInfo, 0, len(accounts))
	for start := 0; start < len(accounts); start += maxAccountsPerRequest {
		end := start + maxAccountsPerRequest
		if end > len(accounts) {
			end = len(accounts)
		}

		keys := make([]string, 0, end-start)
		for _, account := range accounts[start:end] {
			keys = append(keys, base58.Encode(account))
		}

		var resp struct {
			Value []*rpcAccount `json:"value"`
		}
		if err := c.call(ctx, &resp, "getMultipleAccounts", keys, config); err != nil {
			return nil, errors.Wrap(err, "getMultipleAccounts() failed to send request")
		}
		if len(resp.Value) != len(keys) {
			return nil, errors.Errorf("getMultipleAccounts() returned %d accounts, expected %d", len(resp.Value), len(keys))
		}

		for i, value := range resp.Value {
			if value == nil {
				infos = append(infos, nil)
				continue
			}

			info, err := value.toAccountInfo()
			if err != nil {
				return nil, errors.Wrapf(err, "invalid account %s", keys[i])
			}
			infos = append(infos, &info)
		}
	}

	return infos, nil
}

func (c *client) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, commitment Commitment, filters ...ProgramAccountsFilter) ([]KeyedAccount, error) {
	config := accountsConfig{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
		Filters:    filters,
	}

	var resp []struct {
		PubKey  string     `json:"pubkey"`
		Account rpcAccount `json:"account"`
	}
	if err := c.call(ctx, &resp, "getProgramAccounts", base58.Encode(program), config); err != nil {
		return nil, errors.Wrap(err, "getProgramAccounts() failed to send request")
	}

	accounts := make([]KeyedAccount, 0, len(resp))
	for _, result := range resp {
		key, err := base58.Decode(result.PubKey)
		if err != nil || len(key) != ed25519.PublicKeySize {
			return nil, errors.Errorf("invalid account key in response: %q", result.PubKey)
		}

		info, err := result.Account.toAccountInfo()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid account %s", result.PubKey)
		}

		accounts = append(accounts, KeyedAccount{PublicKey: key, Account: info})
	}
	return accounts, nil
}

func (c *client) RequestAirdrop(ctx context.Context, account ed25519.PublicKey, lamports uint64, commitment Commitment) (Signature, error) {
	var sigStr string
	if err := c.call(ctx, &sigStr, "requestAirdrop", base58.Encode(account), lamports, commitment); err != nil {
		return Signature{}, errors.Wrapf(err, "requestAirdrop() failed to send request")
	}

	return parseSignature(sigStr)
}

// SubmitTransaction sends txn with preflight enabled, so program rejections
// surface immediately as a *TransactionError carrying the simulation logs.
func (c *client) SubmitTransaction(ctx context.Context, txn Transaction, commitment Commitment) (Signature, error) {
	sig := txn.Signature()

	config := struct {
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
		Encoding            string `json:"encoding"`
	}{
		PreflightCommitment: commitment.Commitment,
		Encoding:            "base64",
	}

	encoded := base64.StdEncoding.EncodeToString(txn.Marshal())

	var sigStr string
	_, err := c.submitRetrier.Retry(ctx, func() error {
		return c.callOnce(ctx, &sigStr, "sendTransaction", encoded, config)
	})
	if err == nil {
		return sig, nil
	}

	jsonRPCErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return sig, errors.Wrapf(err, "sendTransaction() failed to send request")
	}

	txErr, parseErr := ParseRPCError(jsonRPCErr)
	if parseErr != nil || txErr == nil {
		return sig, errors.Wrapf(jsonRPCErr, "sendTransaction() rejected")
	}

	c.log.WithFields(logrus.Fields{
		"method":    "SubmitTransaction",
		"signature": sig.String(),
		"logs":      txErr.Logs(),
	}).WithError(txErr).Debug("transaction failed preflight")

	return sig, txErr
}

// GetSignatureStatus polls until sig reaches commitment, fails, or ctx is
// done. Running out of polls is reported as ErrTimeout, since the
// transaction may still land.
func (c *client) GetSignatureStatus(ctx context.Context, sig Signature, commitment Commitment) (*SignatureStatus, error) {
	var s *SignatureStatus
	errConfirmationsNotReached := errors.New("confirmations not reached")
	_, err := retry.Retry(
		ctx,
		func() error {
			statuses, err := c.GetSignatureStatuses(ctx, []Signature{sig})
			if err != nil {
				return err
			}

			s = statuses[0]
			if s == nil {
				return ErrSignatureNotFound
			}

			if s.ErrorResult != nil {
				return nil
			}

			switch commitment {
			case CommitmentProcessed:
				return nil
			case CommitmentConfirmed:
				if s.Confirmed() {
					return nil
				}
			case CommitmentFinalized:
				if s.Finalized() {
					return nil
				}
			}

			return errConfirmationsNotReached
		},
		retry.RetriableErrors(ErrSignatureNotFound, errConfirmationsNotReached),
		retry.Limit(c.sigPollLimit),
		retry.Backoff(backoff.Constant(PollRate), PollRate),
	)

	if err != nil && ctx.Err() != nil {
		return s, wrapTransportError(ctx, ctx.Err())
	}
	if errors.Is(err, ErrSignatureNotFound) || errors.Is(err, errConfirmationsNotReached) {
		return s, errors.Wrapf(ErrTimeout, "signature %s not %s after %d polls: %v", sig, commitment.Commitment, c.sigPollLimit, err)
	}
	return s, err
}

func (c *client) GetSignatureStatuses(ctx context.Context, sigs []Signature) ([]*SignatureStatus, error) {
	b58Sigs := make([]string, len(sigs))
	for i := range sigs {
		b58Sigs[i] = sigs[i].String()
	}

	req := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: true,
	}

	type signatureStatus struct {
		Slot               uint64          `json:"slot"`
		Confirmations      *int            `json:"confirmations"`
		ConfirmationStatus string          `json:"confirmationStatus"`
		Err                json.RawMessage `json:"err"`
	}

	var resp struct {
		Value []*signatureStatus `json:"value"`
	}
	if err := c.call(ctx, &resp, "getSignatureStatuses", b58Sigs, req); err != nil {
		return nil, errors.Wrap(err, "getSignatureStatuses() failed to send request")
	}

	statuses := make([]*SignatureStatus, len(sigs))
	for i, v := range resp.Value {
		if v == nil || i >= len(statuses) {
			continue
		}

		statuses[i] = &SignatureStatus{
			Slot:               v.Slot,
			Confirmations:      v.Confirmations,
			ConfirmationStatus: v.ConfirmationStatus,
		}

		if len(v.Err) > 0 && !bytes.Equal(v.Err, []byte("null")) {
			var txError interface{}
			d := json.NewDecoder(bytes.NewReader(v.Err))
			d.UseNumber()
			if err := d.Decode(&txError); err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}

			var err error
			statuses[i].ErrorResult, err = ParseTransactionError(txError)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}
		}
	}

	return statuses, nil
}

func parseSignature(s string) (Signature, error) {
	var sig Signature

	raw, err := base58.Decode(s)
	if err != nil || len(raw) != len(sig) {
		return sig, errors.Errorf("invalid signature in response: %q", s)
	}

	copy(sig[:], raw)
	return sig, nil
}
