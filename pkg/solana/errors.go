package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

var (
	// ErrTimeout indicates an RPC call did not complete before its deadline.
	// The outcome of a timed out submission is unknown until state is queried.
	ErrTimeout = errors.New("rpc timeout")

	// ErrTransport indicates the RPC node could not be reached or answered
	// with a non-definitive failure.
	ErrTransport = errors.New("rpc transport failure")
)

// IsTransportError reports whether err is a timeout or transport failure,
// which callers may retry with backoff.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransport)
}

// TransactionErrorKey is the string key returned in a transaction error.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorAccountInUse            TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountNotFound         TransactionErrorKey = "AccountNotFound"
	TransactionErrorInsufficientFundsForFee TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorDuplicateSignature      TransactionErrorKey = "DuplicateSignature"
	TransactionErrorBlockhashNotFound       TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorInstructionError        TransactionErrorKey = "InstructionError"
	TransactionErrorSignatureFailure        TransactionErrorKey = "SignatureFailure"
)

// InstructionErrorKey is the string key returned in an instruction error.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData    InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount      InstructionErrorKey = "UninitializedAccount"
	InstructionErrorCustom                    InstructionErrorKey = "Custom"
)

// CustomError is the numerical error returned by a non-native program.
type CustomError uint32

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", uint32(c))
}

// InstructionError identifies which instruction in a transaction failed.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("error processing instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}
	if i.CustomError() != nil {
		return InstructionErrorCustom
	}
	return InstructionErrorKey(i.Err.Error())
}

func (i InstructionError) CustomError() *CustomError {
	if ce, ok := i.Err.(CustomError); ok {
		return &ce
	}
	return nil
}

// TransactionError is a transaction failure reported by the cluster, either
// during preflight or after execution.
type TransactionError struct {
	key              TransactionErrorKey
	instructionError *InstructionError
	logs             []string
	raw              interface{}
}

func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{key: key, raw: string(key)}
}

func NewInstructionTransactionError(index int, err error) *TransactionError {
	return &TransactionError{
		key:              TransactionErrorInstructionError,
		instructionError: &InstructionError{Index: index, Err: err},
	}
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}
	return string(t.key)
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

// Logs returns the program logs attached to a preflight failure, if any.
func (t TransactionError) Logs() []string {
	return t.logs
}

func (t TransactionError) JSONString() (string, error) {
	b, err := json.Marshal(t.raw)
	return string(b), err
}

// ParseRPCError extracts the transaction error, and any simulation logs, from
// the data of a sendTransaction/simulateTransaction RPC error. A nil result
// with nil error means the RPC error carried no transaction error.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected map type")
	}

	raw, ok := data["err"]
	if !ok || raw == nil {
		return nil, nil
	}

	txErr, parseErr := ParseTransactionError(raw)
	if txErr != nil {
		txErr.logs = parseLogs(data["logs"])
	}
	return txErr, parseErr
}

// ParseTransactionError parses the "err" field returned by the RPC node.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &TransactionError{key: TransactionErrorKey(t), raw: raw}, nil
	case map[string]interface{}:
		if len(t) != 1 {
			return nil, errors.Errorf("invalid transaction error size: %d", len(t))
		}

		for k, v := range t {
			if k != string(TransactionErrorInstructionError) {
				return &TransactionError{key: TransactionErrorKey(k), raw: raw}, nil
			}

			ixnErr, err := parseInstructionError(v)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse instruction error")
			}
			return &TransactionError{key: TransactionErrorInstructionError, instructionError: ixnErr, raw: raw}, nil
		}
	}

	return nil, errors.Errorf("unhandled transaction error type %T", raw)
}

func parseInstructionError(v interface{}) (*InstructionError, error) {
	tuple, ok := v.([]interface{})
	if !ok || len(tuple) != 2 {
		return nil, errors.New("expected [index, error] tuple")
	}

	index, err := parseJSONNumber(tuple[0])
	if err != nil {
		return nil, err
	}

	e := &InstructionError{Index: index}
	switch t := tuple[1].(type) {
	case string:
		e.Err = errors.New(t)
	case map[string]interface{}:
		if len(t) != 1 {
			return nil, errors.Errorf("invalid instruction error size: %d", len(t))
		}
		for k, v := range t {
			if k != string(InstructionErrorCustom) {
				e.Err = errors.New(k)
				break
			}

			code, err := parseJSONNumber(v)
			if err != nil {
				return nil, errors.Wrap(err, "invalid custom error code")
			}
			e.Err = CustomError(code)
		}
	default:
		return nil, errors.Errorf("unhandled instruction error type %T", t)
	}

	return e, nil
}

func parseLogs(v interface{}) []string {
	values, ok := v.([]interface{})
	if !ok {
		return nil
	}

	logs := make([]string, 0, len(values))
	for _, line := range values {
		if s, ok := line.(string); ok {
			logs = append(logs, s)
		}
	}
	return logs
}

func parseJSONNumber(v interface{}) (int, error) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, errors.Errorf("non int64 value: %v", v)
		}
		return int(n), nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value: %v", v)
		}
		return int(n), nil
	case float64:
		return int(t), nil
	}
	return 0, errors.Errorf("non numeric value: %v", v)
}

// wrapTransportError maps context and network failures onto ErrTimeout and
// ErrTransport. Other errors are returned unchanged.
func wrapTransportError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(ErrTimeout, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.Wrap(ErrTimeout, err.Error())
		}
		return errors.Wrap(ErrTransport, err.Error())
	}

	return err
}
