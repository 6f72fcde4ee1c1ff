package wrapper

import (
	"context"
	"crypto/ed25519"
	"strconv"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// Converter converts a raw source value into the wrapper's type. Sources such
// as the environment yield []byte.
type Converter[T any] func(raw interface{}) (T, error)

// TypedConfig is a utility wrapper that converts a raw config into T, falling
// back to a default when no value is set.
type TypedConfig[T any] struct {
	override     config.Config
	defaultValue T
	convert      Converter[T]

	stateMu   sync.RWMutex
	lastValue T
}

// NewTypedConfig returns a new typed config utility wrapper
func NewTypedConfig[T any](override config.Config, defaultValue T, convert Converter[T]) *TypedConfig[T] {
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
	override, err := c.override.Get(ctx)

	c.stateMu.RLock()
	lastValue := c.lastValue
	c.stateMu.RUnlock()

	if err == config.ErrNoValue {
		c.setLastValue(c.defaultValue)
		return c.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	newValue, err := c.convert(override)
	if err != nil {
		return lastValue, err
	}

	c.setLastValue(newValue)
	return newValue, nil
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

func (c *TypedConfig[T]) setLastValue(v T) {
	c.stateMu.Lock()
	c.lastValue = v
	c.stateMu.Unlock()
}

// NewBoolConfig returns a new bool config utility wrapper
func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return NewTypedConfig(override, defaultValue, func(raw interface{}) (bool, error) {
		switch typed := raw.(type) {
		case []byte:
			return strconv.ParseBool(string(typed))
		case bool:
			return typed, nil
		}
		return false, ErrUnsuportedConversion
	})
}

// NewInt64Config returns a new int64 config utility wrapper
func NewInt64Config(override config.Config, defaultValue int64) config.Int64 {
	return NewTypedConfig(override, defaultValue, func(raw interface{}) (int64, error) {
		switch typed := raw.(type) {
		case []byte:
			return strconv.ParseInt(string(typed), 10, 64)
		case int64:
			return typed, nil
		case int:
			return int64(typed), nil
		}
		return 0, ErrUnsuportedConversion
	})
}

// NewUint64Config returns a new uint64 config utility wrapper
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return NewTypedConfig(override, defaultValue, func(raw interface{}) (uint64, error) {
		switch typed := raw.(type) {
		case []byte:
			return strconv.ParseUint(string(typed), 10, 64)
		case uint64:
			return typed, nil
		case int:
			if typed < 0 {
				return 0, errors.Errorf("negative value %d", typed)
			}
			return uint64(typed), nil
		}
		return 0, ErrUnsuportedConversion
	})
}

// NewStringConfig returns a new string config utility wrapper
func NewStringConfig(override config.Config, defaultValue string) config.String {
	return NewTypedConfig(override, defaultValue, func(raw interface{}) (string, error) {
		switch typed := raw.(type) {
		case []byte:
			return string(typed), nil
		case string:
			return typed, nil
		}
		return "", ErrUnsuportedConversion
	})
}

// NewPublicKeyConfig returns a new public key config utility wrapper. String
// sources are base58 decoded.
func NewPublicKeyConfig(override config.Config, defaultValue ed25519.PublicKey) config.PublicKey {
	return NewTypedConfig(override, defaultValue, func(raw interface{}) (ed25519.PublicKey, error) {
		var encoded string
		switch typed := raw.(type) {
		case []byte:
			encoded = string(typed)
		case string:
			encoded = typed
		case ed25519.PublicKey:
			return typed, nil
		default:
			return nil, ErrUnsuportedConversion
		}

		decoded, err := base58.Decode(encoded)
		if err != nil {
			return nil, errors.Wrap(err, "invalid base58 public key")
		}
		if len(decoded) != ed25519.PublicKeySize {
			return nil, errors.Errorf("invalid public key length %d", len(decoded))
		}
		return decoded, nil
	})
}
