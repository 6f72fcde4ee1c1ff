package env

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bounty-server/pkg/config"
	"github.com/code-payments/bounty-server/pkg/solana"
)

func TestConfigDoesntExist(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"
	os.Setenv(env, "default")

	v, err := NewConfig(env).Get(context.Background())
	assert.Equal(t, []byte("default"), v)
	assert.Nil(t, err)

	os.Unsetenv(env)

	v, err = NewConfig(env).Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	ctx := context.Background()
	treasury := solana.MustBase58Decode("GrLCFRYBs3cPaEJgu18fMbQAujPJCmgJiD9V9zB4HufC")

	t.Setenv("ENV_CONFIG_TEST_FEE", "7")
	t.Setenv("ENV_CONFIG_TEST_TREASURY", "GrLCFRYBs3cPaEJgu18fMbQAujPJCmgJiD9V9zB4HufC")
	t.Setenv("ENV_CONFIG_TEST_POLICY", "self")

	assert.EqualValues(t, 7, NewUint64Config("env_config_test_fee", 1).Get(ctx))
	assert.EqualValues(t, treasury, NewPublicKeyConfig("ENV_CONFIG_TEST_TREASURY", nil).Get(ctx))
	assert.Equal(t, "self", NewStringConfig("ENV_CONFIG_TEST_POLICY", "treasury").Get(ctx))
	assert.EqualValues(t, 5432, NewInt64Config("ENV_CONFIG_TEST_UNSET", 5432).Get(ctx))
	assert.True(t, NewBoolConfig("ENV_CONFIG_TEST_UNSET", true).Get(ctx))

	t.Setenv("ENV_CONFIG_TEST_TREASURY", "not a key")
	_, err := NewPublicKeyConfig("ENV_CONFIG_TEST_TREASURY", treasury).GetSafe(ctx)
	require.Error(t, err)
}
