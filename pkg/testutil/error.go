package testutil

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bounty-server/pkg/solana"
)

// AssertCustomError verifies that the provided error is, or wraps, the
// provided program error code.
func AssertCustomError(t *testing.T, err error, expected solana.CustomError) {
	require.Error(t, err)

	var actual solana.CustomError
	require.True(t, errors.As(err, &actual), "expected custom error %d, got %v", expected, err)
	assert.Equal(t, expected, actual)
}
