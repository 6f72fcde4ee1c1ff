package wrapper

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bounty-server/pkg/config"
	"github.com/code-payments/bounty-server/pkg/config/memory"
	"github.com/code-payments/bounty-server/pkg/solana"
)

func TestBoolConfig(t *testing.T) {
	mock := memory.NewConfig(nil)
	testTypedConfig[bool](t, mock, NewBoolConfig(mock, true), true, false, []byte("false"), []byte("nope"))
}

func TestInt64Config(t *testing.T) {
	mock := memory.NewConfig(nil)
	testTypedConfig[int64](t, mock, NewInt64Config(mock, 5432), 5432, -12, []byte("-12"), []byte("twelve"))
}

func TestUint64Config(t *testing.T) {
	mock := memory.NewConfig(nil)
	testTypedConfig[uint64](t, mock, NewUint64Config(mock, 1), 1, 42, []byte("42"), []byte("-1"))
}

func TestStringConfig(t *testing.T) {
	mock := memory.NewConfig(nil)
	testTypedConfig[string](t, mock, NewStringConfig(mock, "treasury"), "treasury", "self", []byte("self"), nil)
}

func TestPublicKeyConfig(t *testing.T) {
	defaultValue := solana.MustBase58Decode("GrLCFRYBs3cPaEJgu18fMbQAujPJCmgJiD9V9zB4HufC")
	overridenValue := solana.MustBase58Decode("HSHEMhjDuPag76qtf6LhRovmUJYm2J18MZ7sJVEdeB5Z")

	mock := memory.NewConfig(nil)
	testTypedConfig[ed25519.PublicKey](
		t,
		mock,
		NewPublicKeyConfig(mock, defaultValue),
		defaultValue,
		overridenValue,
		[]byte("HSHEMhjDuPag76qtf6LhRovmUJYm2J18MZ7sJVEdeB5Z"),
		[]byte("3mJr7AoUXx2Wqd"),
	)
}

func TestNoopConfig(t *testing.T) {
	wrapper := NewUint64Config(config.NoopConfig, 7)
	val, err := wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, val)
}

// testTypedConfig exercises a wrapper through its full lifecycle. rawValue is
// the source encoding of overridenValue and invalidRaw, when set, is a source
// value that fails conversion.
func testTypedConfig[T any](t *testing.T, mock *memory.Config, wrapper config.Typed[T], defaultValue, overridenValue T, rawValue, invalidRaw []byte) {
	ctx := context.Background()

	// Return the default value when no override is set
	val, err := wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)
	assert.Equal(t, defaultValue, wrapper.Get(ctx))

	// The overriden value is returned when set
	mock.SetValue(overridenValue)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, overridenValue, val)
	assert.Equal(t, overridenValue, wrapper.Get(ctx))

	// The last observed config value is returned on error
	mock.InduceErrors()
	val, err = wrapper.GetSafe(ctx)
	require.Error(t, err)
	assert.Equal(t, overridenValue, val)
	assert.Equal(t, overridenValue, wrapper.Get(ctx))

	// The default value is returned when the override no longer has a value
	mock.StopInducingErrors()
	mock.ClearValue()
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)

	// Raw bytes are converted
	mock.SetValue(rawValue)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, overridenValue, val)

	// Conversion failures keep the last value
	if invalidRaw != nil {
		mock.SetValue(invalidRaw)
		val, err = wrapper.GetSafe(ctx)
		require.Error(t, err)
		assert.Equal(t, overridenValue, val)
	}

	// Return an unsupported source value type
	mock.SetValue(struct{}{})
	val, err = wrapper.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, overridenValue, val)

	wrapper.Shutdown()
}
