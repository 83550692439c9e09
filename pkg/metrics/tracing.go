package metrics

import (
	"context"
	"errors"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Attributes annotate a traced method call.
type Attributes map[string]interface{}

// AttributedError is implemented by errors that describe themselves with
// trace attributes, such as classified program rejections.
type AttributedError interface {
	error
	TraceAttributes() map[string]interface{}
}

// MethodTracer is a segment of the transaction in ctx covering a single
// method call. A nil *MethodTracer is valid and records nothing, which is
// what TraceMethodCall returns outside of a transaction.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// TraceMethodCall starts a segment named "<component> <method>" on the
// transaction carried by ctx.
func TraceMethodCall(ctx context.Context, component, method string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(component + " " + method),
	}
}

// AddAttribute annotates the segment.
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

// AddAttributes annotates the segment with every entry of attributes.
func (t *MethodTracer) AddAttributes(attributes Attributes) {
	if t == nil {
		return
	}
	for key, value := range attributes {
		t.seg.AddAttribute(key, value)
	}
}

// OnError reports err on the transaction. Attributes of an AttributedError
// anywhere in the chain are copied onto the segment under an "error." prefix.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}

	t.AddAttributes(ErrorAttributes(err))
	t.txn.NoticeError(err)
}

// End completes the segment.
func (t *MethodTracer) End() {
	if t == nil {
		return
	}
	t.seg.End()
}

// ErrorAttributes returns the prefixed attributes OnError records for err.
func ErrorAttributes(err error) Attributes {
	var attributed AttributedError
	if !errors.As(err, &attributed) {
		return nil
	}

	res := make(Attributes)
	for key, value := range attributed.TraceAttributes() {
		res["error."+key] = value
	}
	return res
}
