package bertstaking

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/bert-labs/bert-staking-client/pkg/solana"
)

// StakingError is an error code returned by the staking program.
type StakingError uint32

const (
	ErrorPositionLocked StakingError = iota + 6000
	ErrorNftLimitReached
	ErrorGlobalNftLimitReached
	ErrorInvalidAmount
	ErrorArithmeticOverflow
	ErrorInvalidPositionType
	ErrorUserTokensLimitCapReached
	ErrorPoolAlreadyPaused
	ErrorPoolAlreadyActive
	ErrorInvalidPoolPauseState
	ErrorInsufficientYieldFunds
	ErrorAuthorityVaultAlreadyInitialized
	ErrorAuthorityVaultNotInitialized
	ErrorUnauthorized
	ErrorPoolValueLimitReached
)

var stakingErrorMessages = map[StakingError]string{
	ErrorPositionLocked:                   "The staking position is still locked",
	ErrorNftLimitReached:                  "NFT limit per user for this pool reached",
	ErrorGlobalNftLimitReached:            "Global NFT limit per user reached",
	ErrorInvalidAmount:                    "Invalid staking amount",
	ErrorArithmeticOverflow:               "Arithmetic overflow",
	ErrorInvalidPositionType:              "Invalid position type",
	ErrorUserTokensLimitCapReached:        "Tokens limit per user reached",
	ErrorPoolAlreadyPaused:                "Pool paused",
	ErrorPoolAlreadyActive:                "Pool is already active",
	ErrorInvalidPoolPauseState:            "You can only set pool config if the pool is paused",
	ErrorInsufficientYieldFunds:           "Insufficient funds in yield vault for rewards",
	ErrorAuthorityVaultAlreadyInitialized: "Authority vault already initialized",
	ErrorAuthorityVaultNotInitialized:     "Authority vault not initialized",
	ErrorUnauthorized:                     "Unauthorized Operation",
	ErrorPoolValueLimitReached:            "Pool value limit reached",
}

// ParseStakingError returns the StakingError for code, if it is one.
func ParseStakingError(code uint32) (StakingError, bool) {
	e := StakingError(code)
	_, ok := stakingErrorMessages[e]
	return e, ok
}

func (e StakingError) Error() string {
	if msg, ok := stakingErrorMessages[e]; ok {
		return fmt.Sprintf("staking error %d: %s", uint32(e), msg)
	}
	return fmt.Sprintf("staking error %d", uint32(e))
}

// Anchor framework codes the program can fail with.
//
// Reference: https://github.com/coral-xyz/anchor/blob/master/lang/src/error.rs
const (
	AnchorErrorConstraintHasOne             uint32 = 2001
	AnchorErrorConstraintRaw                uint32 = 2003
	AnchorErrorConstraintSeeds              uint32 = 2006
	AnchorErrorAccountDiscriminatorNotFound uint32 = 3001
	AnchorErrorAccountOwnedByWrongProgram   uint32 = 3007
	AnchorErrorAccountNotSigner             uint32 = 3010
	AnchorErrorAccountNotInitialized        uint32 = 3012
)

// SystemErrorAccountAlreadyInUse is returned by the system program when an
// account being created already exists.
const SystemErrorAccountAlreadyInUse uint32 = 0

// RejectionKind classifies why an operation was, or would be, rejected.
type RejectionKind string

const (
	RejectionUnknown                RejectionKind = "unknown"
	RejectionAccountNotFound        RejectionKind = "account_not_found"
	RejectionAlreadyClaimed         RejectionKind = "already_claimed"
	RejectionStillLocked            RejectionKind = "still_locked"
	RejectionCapacityExceeded       RejectionKind = "capacity_exceeded"
	RejectionUnauthorized           RejectionKind = "unauthorized"
	RejectionMalformedInput         RejectionKind = "malformed_input"
	RejectionPoolStateConflict      RejectionKind = "pool_state_conflict"
	RejectionInsufficientYieldFunds RejectionKind = "insufficient_yield_funds"
	RejectionAlreadyInUse           RejectionKind = "already_in_use"
)

// Capacity names which limit a stake exceeds.
type Capacity string

const (
	CapacityPoolTokens   Capacity = "pool_tokens"
	CapacityPoolNfts     Capacity = "pool_nfts"
	CapacityPoolValue    Capacity = "pool_value"
	CapacityGlobalTokens Capacity = "global_tokens"
	CapacityUserNfts     Capacity = "user_nfts"
	CapacityGlobalNfts   Capacity = "global_nfts"
)

// RejectionError is a classified rejection, either reported by the cluster
// or predicted by a local check. Resubmitting the same instructions fails
// the same way.
type RejectionError struct {
	Kind RejectionKind

	// Code is the program, framework or system error code. Local is set
	// instead when the rejection comes from a client side check.
	Code  uint32
	Local bool

	// InstructionIndex is the failing instruction, or -1.
	InstructionIndex int

	Which     Capacity
	Requested uint64
	Remaining uint64

	SecondsRemaining int64
	PositionID       uint64
	PoolIndex        uint32

	cause error
}

// NewLocalRejection returns a rejection predicted by a client side check.
func NewLocalRejection(kind RejectionKind) *RejectionError {
	return &RejectionError{
		Kind:             kind,
		Local:            true,
		InstructionIndex: -1,
	}
}

func (e *RejectionError) Error() string {
	var sb strings.Builder
	sb.WriteString("rejected: ")
	sb.WriteString(string(e.Kind))

	switch e.Kind {
	case RejectionStillLocked:
		fmt.Fprintf(&sb, " (position %d unlocks in %ds)", e.PositionID, e.SecondsRemaining)
	case RejectionAlreadyClaimed:
		fmt.Fprintf(&sb, " (position %d)", e.PositionID)
	case RejectionCapacityExceeded:
		fmt.Fprintf(&sb, " (%s: requested %d, remaining %d)", e.Which, e.Requested, e.Remaining)
	case RejectionPoolStateConflict:
		fmt.Fprintf(&sb, " (pool %d)", e.PoolIndex)
	}

	if !e.Local {
		fmt.Fprintf(&sb, " [code %d", e.Code)
		if e.InstructionIndex >= 0 {
			fmt.Fprintf(&sb, ", instruction %d", e.InstructionIndex)
		}
		sb.WriteString("]")
	}

	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *RejectionError) Unwrap() error {
	return e.cause
}

// IsRetryable is always false. The same request is rejected again until the
// state it depends on changes.
func (e *RejectionError) IsRetryable() bool {
	return false
}

// TraceAttributes describes the rejection for metrics and traces.
func (e *RejectionError) TraceAttributes() map[string]interface{} {
	res := map[string]interface{}{
		"kind":        string(e.Kind),
		"local":       e.Local,
		"instruction": e.InstructionIndex,
	}
	if !e.Local {
		res["code"] = e.Code
	}

	switch e.Kind {
	case RejectionStillLocked:
		res["position_id"] = e.PositionID
		res["seconds_remaining"] = e.SecondsRemaining
	case RejectionAlreadyClaimed:
		res["position_id"] = e.PositionID
	case RejectionCapacityExceeded:
		res["which"] = string(e.Which)
		res["requested"] = e.Requested
		res["remaining"] = e.Remaining
	case RejectionPoolStateConflict:
		res["pool_index"] = e.PoolIndex
	}
	return res
}

// IsRejection reports whether err is a RejectionError of the given kind.
func IsRejection(err error, kind RejectionKind) bool {
	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		return false
	}
	return rejection.Kind == kind
}

// RejectionContext carries what the caller knew when it submitted, so that
// ambiguous codes can be classified and reported with useful detail.
type RejectionContext struct {
	// Position is a freshly fetched copy of the position being claimed.
	Position *PositionAccount

	// Now is the cluster time in unix seconds.
	Now int64

	PoolIndex uint32
	Requested uint64
}

// ClassifyTransactionError maps a failed transaction onto a RejectionError.
// It returns nil if txErr is nil. rc may be nil.
func ClassifyTransactionError(txErr *solana.TransactionError, rc *RejectionContext) *RejectionError {
	if txErr == nil {
		return nil
	}
	if rc == nil {
		rc = &RejectionContext{}
	}

	res := &RejectionError{
		Kind:             RejectionUnknown,
		InstructionIndex: -1,
		PoolIndex:        rc.PoolIndex,
		Requested:        rc.Requested,
		cause:            txErr,
	}
	if rc.Position != nil {
		res.PositionID = rc.Position.Id
	}

	ixnErr := txErr.InstructionError()
	if ixnErr == nil {
		if txErr.ErrorKey() == solana.TransactionErrorAccountNotFound {
			res.Kind = RejectionAccountNotFound
		}
		return res
	}
	res.InstructionIndex = ixnErr.Index

	custom := ixnErr.CustomError()
	if custom == nil {
		switch ixnErr.ErrorKey() {
		case solana.InstructionErrorMissingRequiredSignature:
			res.Kind = RejectionUnauthorized
		case solana.InstructionErrorAccountAlreadyInitialized:
			res.Kind = RejectionAlreadyInUse
		case solana.InstructionErrorUninitializedAccount:
			res.Kind = RejectionAccountNotFound
		case solana.InstructionErrorInvalidArgument, solana.InstructionErrorInvalidInstructionData, solana.InstructionErrorInvalidAccountData:
			res.Kind = RejectionMalformedInput
		}
		return res
	}

	code := uint32(*custom)
	res.Code = code

	if stakingErr, ok := ParseStakingError(code); ok {
		res.cause = stakingErr
		classifyStakingError(res, stakingErr, rc)
		return res
	}

	switch code {
	case SystemErrorAccountAlreadyInUse:
		res.Kind = RejectionAlreadyInUse
	case AnchorErrorConstraintRaw:
		// Claims require an unclaimed position. Any other raw constraint
		// failure is an authorization mismatch.
		if rc.Position != nil && rc.Position.IsClaimed() {
			res.Kind = RejectionAlreadyClaimed
		} else {
			res.Kind = RejectionUnauthorized
		}
	case AnchorErrorConstraintHasOne, AnchorErrorAccountNotSigner:
		res.Kind = RejectionUnauthorized
	case AnchorErrorConstraintSeeds, AnchorErrorAccountDiscriminatorNotFound, AnchorErrorAccountOwnedByWrongProgram:
		res.Kind = RejectionMalformedInput
	case AnchorErrorAccountNotInitialized:
		res.Kind = RejectionAccountNotFound
	}
	return res
}

func classifyStakingError(res *RejectionError, e StakingError, rc *RejectionContext) {
	switch e {
	case ErrorPositionLocked:
		res.Kind = RejectionStillLocked
		if rc.Position != nil && rc.Position.UnlockTime > rc.Now {
			res.SecondsRemaining = rc.Position.UnlockTime - rc.Now
		}
	case ErrorNftLimitReached:
		res.Kind = RejectionCapacityExceeded
		res.Which = CapacityUserNfts
	case ErrorGlobalNftLimitReached:
		res.Kind = RejectionCapacityExceeded
		res.Which = CapacityGlobalNfts
	case ErrorUserTokensLimitCapReached:
		res.Kind = RejectionCapacityExceeded
		res.Which = CapacityPoolTokens
	case ErrorPoolValueLimitReached:
		res.Kind = RejectionCapacityExceeded
		res.Which = CapacityPoolValue
	case ErrorInvalidAmount, ErrorArithmeticOverflow, ErrorInvalidPositionType:
		res.Kind = RejectionMalformedInput
	case ErrorPoolAlreadyPaused, ErrorPoolAlreadyActive, ErrorInvalidPoolPauseState:
		res.Kind = RejectionPoolStateConflict
	case ErrorInsufficientYieldFunds:
		res.Kind = RejectionInsufficientYieldFunds
	case ErrorAuthorityVaultAlreadyInitialized:
		res.Kind = RejectionAlreadyInUse
	case ErrorAuthorityVaultNotInitialized:
		res.Kind = RejectionAccountNotFound
	case ErrorUnauthorized:
		res.Kind = RejectionUnauthorized
	}
}
