package bounty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bounty-server/pkg/solana"
)

func TestGetProgramConfigAddress(t *testing.T) {
	address, bump, err := GetProgramConfigAddress()
	require.NoError(t, err)
	assert.EqualValues(t, solana.MustBase58Decode("JCjMrmyWBp6Gcdwz4SSxGrqDKSw8Uv2sgoTQcz6kr88v"), address)
	assert.EqualValues(t, 253, bump)
}

func TestGetFeeTokenAccountAddress(t *testing.T) {
	address, bump, err := GetFeeTokenAccountAddress(&GetFeeTokenAccountAddressArgs{
		Owner: TREASURY_WALLET,
		Mint:  solana.MustBase58Decode("HSHEMhjDuPag76qtf6LhRovmUJYm2J18MZ7sJVEdeB5Z"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, solana.MustBase58Decode("Atb5N2CHLmnCYcwffqZ9rrQJsBYPfpvicRuMzNpkv8my"), address)
	assert.EqualValues(t, 255, bump)
}

func TestErrorMessage(t *testing.T) {
	msg, ok := ErrorMessage(ErrorUnauthorized)
	require.True(t, ok)
	assert.Equal(t, "Unauthorized access", msg)

	msg, ok = ErrorMessage(ErrorInvalidTokenMint)
	require.True(t, ok)
	assert.Equal(t, "Invalid token mint. Only the specified Token-2022 token is accepted", msg)

	assert.EqualValues(t, 6003, ErrorAlreadyExists)
	assert.EqualValues(t, 6006, ErrorMemoTooLong)

	_, ok = ErrorMessage(solana.CustomError(1))
	assert.False(t, ok)
}
