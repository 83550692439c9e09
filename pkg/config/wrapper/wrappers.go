package wrapper

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/bert-labs/bert-staking-client/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// Converter turns a raw config value into T. Raw values from environment
// sources arrive as []byte.
type Converter[T any] func(raw interface{}) (T, error)

// TypedConfig is a utility wrapper converting a raw config into T
type TypedConfig[T any] struct {
	override     config.Config
	defaultValue T
	convert      Converter[T]

	stateMu   sync.RWMutex
	lastValue T
}

// NewTypedConfig returns a new typed config utility wrapper
func NewTypedConfig[T any](override config.Config, defaultValue T, convert Converter[T]) config.Typed[T] {
	return &TypedConfig[T]{
		override:     override,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. A best-effort
// attempt is made to return the last known value
func (c *TypedConfig[T]) GetSafe(ctx context.Context) (T, error) {
	raw, err := c.override.Get(ctx)

	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if errors.Is(err, config.ErrNoValue) {
		c.lastValue = c.defaultValue
		return c.defaultValue, nil
	} else if err != nil {
		return c.lastValue, err
	}

	value, err := c.convert(raw)
	if err != nil {
		return c.lastValue, err
	}
	c.lastValue = value
	return value, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *TypedConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *TypedConfig[T]) Shutdown() {
	c.override.Shutdown()
}

// NewUint64Config returns a new uint64 config utility wrapper
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return NewTypedConfig(override, defaultValue, toUint64)
}

// NewStringConfig returns a new string config utility wrapper
func NewStringConfig(override config.Config, defaultValue string) config.String {
	return NewTypedConfig(override, defaultValue, toString)
}

// NewDurationConfig returns a new duration config utility wrapper
func NewDurationConfig(override config.Config, defaultValue time.Duration) config.Duration {
	return NewTypedConfig(override, defaultValue, toDuration)
}

func toUint64(raw interface{}) (uint64, error) {
	switch v := raw.(type) {
	case []byte:
		return strconv.ParseUint(string(v), 10, 64)
	case uint64:
		return v, nil
	case uint:
		return uint64(v), nil
	default:
		return 0, ErrUnsuportedConversion
	}
}

func toString(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	default:
		return "", ErrUnsuportedConversion
	}
}

// toDuration accepts Go duration strings ("30s") and bare integers, which
// are read as seconds.
func toDuration(raw interface{}) (time.Duration, error) {
	switch v := raw.(type) {
	case []byte:
		s := string(v)
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return time.ParseDuration(s)
	case time.Duration:
		return v, nil
	default:
		return 0, ErrUnsuportedConversion
	}
}
