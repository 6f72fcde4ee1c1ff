package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/solana"
)

var (
	// ProgramKey is the address of the Token-2022 program.
	//
	// Current key: TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb
	ProgramKey = solana.MustBase58Decode("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

	// LegacyProgramKey is the address of the original SPL token program. Only
	// used to reject accounts owned by it.
	//
	// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
	LegacyProgramKey = solana.MustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
)

type Command byte

const (
	// nolint:varcheck,deadcode,unused
	CommandInitializeMint Command = iota
	// nolint:varcheck,deadcode,unused
	CommandInitializeAccount
	// nolint:varcheck,deadcode,unused
	CommandInitializeMultisig
	// nolint:varcheck,deadcode,unused
	CommandTransfer
	// nolint:varcheck,deadcode,unused
	CommandApprove
	// nolint:varcheck,deadcode,unused
	CommandRevoke
	// nolint:varcheck,deadcode,unused
	CommandSetAuthority
	// nolint:varcheck,deadcode,unused
	CommandMintTo
	// nolint:varcheck,deadcode,unused
	CommandBurn
	// nolint:varcheck,deadcode,unused
	CommandCloseAccount
	// nolint:varcheck,deadcode,unused
	CommandFreezeAccount
	// nolint:varcheck,deadcode,unused
	CommandThawAccount
	CommandTransferChecked
	// nolint:varcheck,deadcode,unused
	CommandApproveChecked
	// nolint:varcheck,deadcode,unused
	CommandMintToChecked
	CommandBurnChecked

	CommandUnknown = Command(math.MaxUint8)
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/error.rs
const (
	// nolint:varcheck,deadcode,unused
	ErrorNotRentExempt solana.CustomError = iota
	ErrorInsufficientFunds
	ErrorInvalidMint
	ErrorMintMismatch
	ErrorOwnerMismatch
	// nolint:varcheck,deadcode,unused
	ErrorFixedSupply
	ErrorAlreadyInUse
	// nolint:varcheck,deadcode,unused
	ErrorInvalidNumberOfProvidedSigners
	// nolint:varcheck,deadcode,unused
	ErrorInvalidNumberOfRequiredSigners
	ErrorUninitializedState
	// nolint:varcheck,deadcode,unused
	ErrorNativeNotSupported
	// nolint:varcheck,deadcode,unused
	ErrorNonNativeHasBalance
	// nolint:varcheck,deadcode,unused
	ErrorInvalidInstruction
	// nolint:varcheck,deadcode,unused
	ErrorInvalidState
	ErrorOverflow
	// nolint:varcheck,deadcode,unused
	ErrorAuthorityTypeNotSupported
	// nolint:varcheck,deadcode,unused
	ErrorMintCannotFreeze
	ErrorAccountFrozen
	ErrorMintDecimalsMismatch
)

// GetCommand returns the token command encoded in an instruction.
func GetCommand(ix solana.Instruction) (Command, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}

	return Command(ix.Data[0]), nil
}

// TransferChecked builds a decimals checked transfer. Extra accounts are
// appended after the fixed accounts and are required by mints with a transfer
// hook.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program-2022/src/instruction.rs#L286
func TransferChecked(source, mint, dest, authority ed25519.PublicKey, amount uint64, decimals byte, extra ...solana.AccountMeta) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The source account.
	//   1. `[]` The token mint.
	//   2. `[writable]` The destination account.
	//   3. `[signer]` The source account's owner/delegate.
	//   4. ..4+M `[]` Accounts required by the mint's transfer hook.
	data := make([]byte, 1+8+1)
	data[0] = byte(CommandTransferChecked)
	binary.LittleEndian.PutUint64(data[1:], amount)
	data[9] = decimals

	accounts := []solana.AccountMeta{
		solana.NewAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(authority, true),
	}
	accounts = append(accounts, extra...)

	return solana.NewInstruction(ProgramKey, data, accounts...)
}

type DecompiledTransferChecked struct {
	Source      ed25519.PublicKey
	Mint        ed25519.PublicKey
	Destination ed25519.PublicKey
	Authority   ed25519.PublicKey
	Amount      uint64
	Decimals    byte

	AuthoritySigned bool
	ExtraAccounts   []solana.AccountMeta
}

func DecompileTransferChecked(ix solana.Instruction) (*DecompiledTransferChecked, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 || ix.Data[0] != byte(CommandTransferChecked) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ix.Data) != 10 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}
	if len(ix.Accounts) < 4 {
		return nil, errors.Wrapf(solana.ErrNotEnoughAccountKeys, "invalid number of accounts: %d", len(ix.Accounts))
	}

	return &DecompiledTransferChecked{
		Source:          ix.Accounts[0].PublicKey,
		Mint:            ix.Accounts[1].PublicKey,
		Destination:     ix.Accounts[2].PublicKey,
		Authority:       ix.Accounts[3].PublicKey,
		Amount:          binary.LittleEndian.Uint64(ix.Data[1:9]),
		Decimals:        ix.Data[9],
		AuthoritySigned: ix.Accounts[3].IsSigner,
		ExtraAccounts:   ix.Accounts[4:],
	}, nil
}

// BurnChecked builds a decimals checked burn. The authority may be the owner,
// a delegate, or the mint's permanent delegate.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program-2022/src/instruction.rs#L365
func BurnChecked(account, mint, authority ed25519.PublicKey, amount uint64, decimals byte, extra ...solana.AccountMeta) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The account to burn from.
	//   1. `[writable]` The token mint.
	//   2. `[signer]` The account's owner/delegate.
	data := make([]byte, 1+8+1)
	data[0] = byte(CommandBurnChecked)
	binary.LittleEndian.PutUint64(data[1:], amount)
	data[9] = decimals

	accounts := []solana.AccountMeta{
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(authority, true),
	}
	accounts = append(accounts, extra...)

	return solana.NewInstruction(ProgramKey, data, accounts...)
}

type DecompiledBurnChecked struct {
	Account   ed25519.PublicKey
	Mint      ed25519.PublicKey
	Authority ed25519.PublicKey
	Amount    uint64
	Decimals  byte

	AuthoritySigned bool
	ExtraAccounts   []solana.AccountMeta
}

func DecompileBurnChecked(ix solana.Instruction) (*DecompiledBurnChecked, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 || ix.Data[0] != byte(CommandBurnChecked) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ix.Data) != 10 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}
	if len(ix.Accounts) < 3 {
		return nil, errors.Wrapf(solana.ErrNotEnoughAccountKeys, "invalid number of accounts: %d", len(ix.Accounts))
	}

	return &DecompiledBurnChecked{
		Account:         ix.Accounts[0].PublicKey,
		Mint:            ix.Accounts[1].PublicKey,
		Authority:       ix.Accounts[2].PublicKey,
		Amount:          binary.LittleEndian.Uint64(ix.Data[1:9]),
		Decimals:        ix.Data[9],
		AuthoritySigned: ix.Accounts[2].IsSigner,
		ExtraAccounts:   ix.Accounts[3:],
	}, nil
}
