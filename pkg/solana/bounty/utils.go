package bounty

import (
	"bytes"

	"github.com/code-payments/bounty-server/pkg/solana"
)

// checkInstruction validates the program, discriminator and minimum account
// count shared by every decompiler.
func checkInstruction(ix solana.Instruction, discriminator []byte, minAccounts int) error {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return ErrInvalidProgram
	}
	if len(ix.Data) < len(discriminator) || !bytes.Equal(ix.Data[:len(discriminator)], discriminator) {
		return ErrInvalidInstructionData
	}
	if len(ix.Accounts) < minAccounts {
		return solana.ErrNotEnoughAccountKeys
	}
	return nil
}

func newInstructionData(discriminator []byte, argsSize int) ([]byte, int) {
	data := make([]byte, len(discriminator)+argsSize)
	return data, copy(data, discriminator)
}
