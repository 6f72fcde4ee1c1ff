package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/system"
)

// AssociatedTokenAccountProgramKey is the address of the associated token account program that should be used.
//
// Current key: ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL
var AssociatedTokenAccountProgramKey = ed25519.PublicKey{140, 151, 37, 143, 78, 36, 137, 241, 187, 61, 16, 41, 20, 142, 13, 131, 11, 90, 19, 153, 218, 255, 16, 132, 4, 142, 123, 216, 219, 233, 248, 89}

type AssociatedCommand byte

const (
	AssociatedCommandCreate AssociatedCommand = iota
	AssociatedCommandCreateIdempotent
)

// GetAssociatedAccount returns the Token-2022 associated account address for
// a wallet.
//
// Reference: https://spl.solana.com/associated-token-account#finding-the-associated-token-account-address
func GetAssociatedAccount(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return GetAssociatedAccountForProgram(wallet, ProgramKey, mint)
}

// GetAssociatedAccountForProgram returns the associated account address of a
// wallet under the provided token program.
func GetAssociatedAccountForProgram(wallet, tokenProgram, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		AssociatedTokenAccountProgramKey,
		wallet,
		tokenProgram,
		mint,
	)
}

// CreateAssociatedTokenAccountIdempotent creates the associated account of a
// wallet, succeeding without changes when it already exists for the same owner
// and mint.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/associated-token-account/program/src/instruction.rs#L38
func CreateAssociatedTokenAccountIdempotent(subsidizer, wallet, mint ed25519.PublicKey) (solana.Instruction, ed25519.PublicKey, error) {
	addr, err := GetAssociatedAccount(wallet, mint)
	if err != nil {
		return solana.Instruction{}, nil, err
	}

	return solana.NewInstruction(
		AssociatedTokenAccountProgramKey,
		[]byte{byte(AssociatedCommandCreateIdempotent)},
		solana.NewAccountMeta(subsidizer, true),
		solana.NewAccountMeta(addr, false),
		solana.NewReadonlyAccountMeta(wallet, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(ProgramKey, false),
	), addr, nil
}

type DecompiledCreateAssociatedAccount struct {
	Subsidizer ed25519.PublicKey
	Address    ed25519.PublicKey
	Owner      ed25519.PublicKey
	Mint       ed25519.PublicKey
	Idempotent bool
}

func DecompileCreateAssociatedAccount(ix solana.Instruction) (*DecompiledCreateAssociatedAccount, error) {
	if !bytes.Equal(ix.Program, AssociatedTokenAccountProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}

	var idempotent bool
	switch {
	case len(ix.Data) == 0, len(ix.Data) == 1 && ix.Data[0] == byte(AssociatedCommandCreate):
	case len(ix.Data) == 1 && ix.Data[0] == byte(AssociatedCommandCreateIdempotent):
		idempotent = true
	default:
		return nil, errors.Errorf("unexpected data")
	}

	if len(ix.Accounts) != 6 {
		return nil, errors.Wrapf(solana.ErrNotEnoughAccountKeys, "invalid number of accounts: %d (expected %d)", len(ix.Accounts), 6)
	}
	if !bytes.Equal(ix.Accounts[4].PublicKey, system.ProgramKey) {
		return nil, errors.Wrap(solana.ErrIncorrectProgram, "system program key mismatch")
	}
	if !bytes.Equal(ix.Accounts[5].PublicKey, ProgramKey) {
		return nil, errors.Wrap(solana.ErrIncorrectProgram, "token program key mismatch")
	}
	if !ix.Accounts[0].IsSigner {
		return nil, errors.Wrap(solana.ErrMissingRequiredSignature, "subsidizer")
	}

	return &DecompiledCreateAssociatedAccount{
		Subsidizer: ix.Accounts[0].PublicKey,
		Address:    ix.Accounts[1].PublicKey,
		Owner:      ix.Accounts[2].PublicKey,
		Mint:       ix.Accounts[3].PublicKey,
		Idempotent: idempotent,
	}, nil
}
