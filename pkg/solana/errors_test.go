package solana

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

func decodeJSON(t *testing.T, s string) interface{} {
	var v interface{}
	d := json.NewDecoder(strings.NewReader(s))
	d.UseNumber()
	require.NoError(t, d.Decode(&v))
	return v
}

func TestParseTransactionError_Keys(t *testing.T) {
	txErr, err := ParseTransactionError(decodeJSON(t, `"BlockhashNotFound"`))
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorBlockhashNotFound, txErr.ErrorKey())
	assert.Nil(t, txErr.InstructionError())
	assert.Equal(t, "BlockhashNotFound", txErr.Error())

	txErr, err = ParseTransactionError(decodeJSON(t, `{"InsufficientFundsForRent":{"account_index":2}}`))
	require.NoError(t, err)
	assert.EqualValues(t, "InsufficientFundsForRent", txErr.ErrorKey())

	txErr, err = ParseTransactionError(nil)
	assert.NoError(t, err)
	assert.Nil(t, txErr)
}

func TestParseTransactionError_Custom(t *testing.T) {
	raw := `{"InstructionError":[1,{"Custom":6000}]}`
	txErr, err := ParseTransactionError(decodeJSON(t, raw))
	require.NoError(t, err)

	assert.Equal(t, TransactionErrorInstructionError, txErr.ErrorKey())
	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, 1, txErr.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, txErr.InstructionError().ErrorKey())
	require.NotNil(t, txErr.InstructionError().CustomError())
	assert.EqualValues(t, 6000, *txErr.InstructionError().CustomError())
	assert.Equal(t, "error processing instruction 1: custom program error: 0x1770", txErr.Error())

	encoded, err := txErr.JSONString()
	require.NoError(t, err)
	assert.JSONEq(t, raw, encoded)
}

func TestParseTransactionError_Named(t *testing.T) {
	txErr, err := ParseTransactionError(decodeJSON(t, `{"InstructionError":[0,"MissingRequiredSignature"]}`))
	require.NoError(t, err)

	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, 0, txErr.InstructionError().Index)
	assert.Equal(t, InstructionErrorMissingRequiredSignature, txErr.InstructionError().ErrorKey())
	assert.Nil(t, txErr.InstructionError().CustomError())

	// Non-custom object errors keep their key
	txErr, err = ParseTransactionError(decodeJSON(t, `{"InstructionError":[2,{"BorshIoError":"Unknown"}]}`))
	require.NoError(t, err)
	assert.EqualValues(t, "BorshIoError", txErr.InstructionError().ErrorKey())
}

func TestParseTransactionError_Invalid(t *testing.T) {
	for _, raw := range []string{
		`{"InstructionError":[0]}`,
		`{"InstructionError":["x","InvalidArgument"]}`,
		`{"InstructionError":[0,{"Custom":"abc"}]}`,
		`{"InstructionError":[0,12]}`,
		`{"a":1,"b":2}`,
		`12`,
	} {
		_, err := ParseTransactionError(decodeJSON(t, raw))
		assert.Error(t, err, raw)
	}
}

func TestParseRPCError(t *testing.T) {
	rpcErr := &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1770",
		Data: decodeJSON(t, `{
			"err": {"InstructionError": [0, {"Custom": 6000}]},
			"logs": [
				"Program 5SBAWmpeag75vcgPvnSxbibQQoKguZaa5KDdR8TBjC1N invoke [1]",
				"Program log: AnchorError occurred. Error Code: PositionLocked. Error Number: 6000."
			]
		}`),
	}

	txErr, err := ParseRPCError(rpcErr)
	require.NoError(t, err)
	require.NotNil(t, txErr)
	assert.EqualValues(t, 6000, *txErr.InstructionError().CustomError())
	assert.Len(t, txErr.Logs(), 2)

	// RPC errors without a transaction error
	txErr, err = ParseRPCError(&jsonrpc.RPCError{Code: -32005, Message: "node is behind", Data: map[string]interface{}{}})
	assert.NoError(t, err)
	assert.Nil(t, txErr)

	_, err = ParseRPCError(&jsonrpc.RPCError{Code: -32005, Message: "node is behind"})
	assert.Error(t, err)

	txErr, err = ParseRPCError(nil)
	assert.NoError(t, err)
	assert.Nil(t, txErr)
}

func TestConstructedErrors(t *testing.T) {
	txErr := NewTransactionError(TransactionErrorAccountInUse)
	assert.Equal(t, TransactionErrorAccountInUse, txErr.ErrorKey())
	assert.Nil(t, txErr.InstructionError())

	txErr = NewInstructionTransactionError(3, CustomError(0))
	assert.Equal(t, TransactionErrorInstructionError, txErr.ErrorKey())
	assert.Equal(t, 3, txErr.InstructionError().Index)
	assert.EqualValues(t, 0, *txErr.InstructionError().CustomError())
}

type timeoutError struct{ timeout bool }

func (e timeoutError) Error() string   { return "dial tcp: i/o" }
func (e timeoutError) Timeout() bool   { return e.timeout }
func (e timeoutError) Temporary() bool { return false }

var _ net.Error = timeoutError{}

func TestWrapTransportError(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, wrapTransportError(ctx, nil))

	err := wrapTransportError(ctx, context.DeadlineExceeded)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, IsTransportError(err))

	err = wrapTransportError(ctx, timeoutError{timeout: true})
	assert.True(t, errors.Is(err, ErrTimeout))

	err = wrapTransportError(ctx, timeoutError{})
	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, IsTransportError(err))

	assert.Equal(t, context.Canceled, wrapTransportError(ctx, context.Canceled))

	other := errors.New("other")
	assert.Equal(t, other, wrapTransportError(ctx, other))
	assert.False(t, IsTransportError(other))

	expired, cancel := context.WithTimeout(ctx, 0)
	defer cancel()
	<-expired.Done()
	assert.True(t, errors.Is(wrapTransportError(expired, other), ErrTimeout))
}
