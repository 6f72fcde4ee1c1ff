package solana

import (
	"fmt"

	"github.com/pkg/errors"
)

// InstructionErrorKey is the string key of a built-in instruction error.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorInvalidArgument          InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData   InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData       InstructionErrorKey = "InvalidAccountData"
	InstructionErrorAccountDataTooSmall      InstructionErrorKey = "AccountDataTooSmall"
	InstructionErrorIncorrectProgramID       InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorUninitializedAccount     InstructionErrorKey = "UninitializedAccount"
	InstructionErrorNotEnoughAccountKeys     InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorCustom                   InstructionErrorKey = "Custom"
	InstructionErrorMissingAccount           InstructionErrorKey = "MissingAccount"
	InstructionErrorInvalidSeeds             InstructionErrorKey = "InvalidSeeds"
	InstructionErrorIllegalOwner             InstructionErrorKey = "IllegalOwner"
	InstructionErrorReadonlyDataModified     InstructionErrorKey = "ReadonlyDataModified"
)

// Built-in instruction errors, comparable with errors.Is after wrapping.
var (
	ErrInvalidArgument          = errors.New(string(InstructionErrorInvalidArgument))
	ErrInvalidInstructionData   = errors.New(string(InstructionErrorInvalidInstructionData))
	ErrInvalidAccountData       = errors.New(string(InstructionErrorInvalidAccountData))
	ErrAccountDataTooSmall      = errors.New(string(InstructionErrorAccountDataTooSmall))
	ErrIncorrectProgram         = errors.New(string(InstructionErrorIncorrectProgramID))
	ErrMissingRequiredSignature = errors.New(string(InstructionErrorMissingRequiredSignature))
	ErrUninitializedAccount     = errors.New(string(InstructionErrorUninitializedAccount))
	ErrNotEnoughAccountKeys     = errors.New(string(InstructionErrorNotEnoughAccountKeys))
	ErrMissingAccount           = errors.New(string(InstructionErrorMissingAccount))
	ErrInvalidSeeds             = errors.New(string(InstructionErrorInvalidSeeds))
	ErrIllegalOwner             = errors.New(string(InstructionErrorIllegalOwner))
	ErrReadonlyDataModified     = errors.New(string(InstructionErrorReadonlyDataModified))

	// ErrIncorrectInstruction is returned by decompilers when the data does not
	// belong to the expected instruction.
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// CustomError is the numerical error returned by a non-system program.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %#x", int(c))
}

// InstructionError indicates an instruction failed with Err.
type InstructionError struct {
	Index int
	Err   error
}

// NewInstructionError wraps err as the result of the instruction at index.
func NewInstructionError(index int, err error) InstructionError {
	return InstructionError{Index: index, Err: err}
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) Unwrap() error {
	return i.Err
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}

	if i.CustomError() != nil {
		return InstructionErrorCustom
	}

	return InstructionErrorKey(errors.Cause(i.Err).Error())
}

func (i InstructionError) JSONString() string {
	if ce := i.CustomError(); ce != nil {
		return fmt.Sprintf(`[%d, {"%s": %d}]`, i.Index, InstructionErrorCustom, *ce)
	}

	return fmt.Sprintf(`[%d, "%s"]`, i.Index, i.ErrorKey())
}

func (i InstructionError) CustomError() *CustomError {
	var ce CustomError
	if errors.As(i.Err, &ce) {
		return &ce
	}

	return nil
}
