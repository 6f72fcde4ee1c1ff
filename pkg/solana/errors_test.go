package solana

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionError_Custom(t *testing.T) {
	ixErr := NewInstructionError(2, errors.Wrap(CustomError(6000), "bounty rejected"))

	require.NotNil(t, ixErr.CustomError())
	assert.Equal(t, CustomError(6000), *ixErr.CustomError())
	assert.Equal(t, InstructionErrorCustom, ixErr.ErrorKey())
	assert.Equal(t, `[2, {"Custom": 6000}]`, ixErr.JSONString())
	assert.True(t, errors.Is(ixErr, CustomError(6000)))
	assert.False(t, errors.Is(ixErr, CustomError(6001)))
}

func TestInstructionError_BuiltIn(t *testing.T) {
	ixErr := NewInstructionError(0, errors.Wrap(ErrMissingRequiredSignature, "signer"))

	assert.Nil(t, ixErr.CustomError())
	assert.Equal(t, InstructionErrorMissingRequiredSignature, ixErr.ErrorKey())
	assert.Equal(t, `[0, "MissingRequiredSignature"]`, ixErr.JSONString())
	assert.True(t, errors.Is(ixErr, ErrMissingRequiredSignature))
	assert.Equal(t, "Error processing Instruction 0: signer: MissingRequiredSignature", ixErr.Error())
}

func TestCustomError_String(t *testing.T) {
	assert.Equal(t, "custom program error: 0x1770", CustomError(6000).Error())
	assert.Equal(t, "custom program error: 0x1", CustomError(1).Error())
}
