package system

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/solana"
)

// ProgramKey is the system program address (11111111111111111111111111111111).
var ProgramKey = make(ed25519.PublicKey, ed25519.PublicKeySize)

const (
	commandCreateAccount uint32 = 0
	commandTransfer      uint32 = 2
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L23
const (
	ErrorAccountAlreadyInUse solana.CustomError = iota
	ErrorResultWithNegativeLamports
	// nolint:varcheck,deadcode,unused
	ErrorInvalidProgramID
	// nolint:varcheck,deadcode,unused
	ErrorInvalidAccountDataLength
	// nolint:varcheck,deadcode,unused
	ErrorMaxSeedLengthExceeded
	// nolint:varcheck,deadcode,unused
	ErrorAddressWithSeedMismatch
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L58-L72
func CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE, SIGNER] New account
	data := make([]byte, 4+2*8+32)
	binary.LittleEndian.PutUint32(data, commandCreateAccount)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[12:], size)
	copy(data[20:], owner)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, true),
	)
}

type DecompiledCreateAccount struct {
	Funder   ed25519.PublicKey
	Address  ed25519.PublicKey
	Owner    ed25519.PublicKey
	Lamports uint64
	Size     uint64
}

func DecompileCreateAccount(ix solana.Instruction) (*DecompiledCreateAccount, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(ix.Data) != 52 || binary.LittleEndian.Uint32(ix.Data) != commandCreateAccount {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ix.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	return &DecompiledCreateAccount{
		Funder:   ix.Accounts[0].PublicKey,
		Address:  ix.Accounts[1].PublicKey,
		Owner:    ed25519.PublicKey(append([]byte{}, ix.Data[20:52]...)),
		Lamports: binary.LittleEndian.Uint64(ix.Data[4:]),
		Size:     binary.LittleEndian.Uint64(ix.Data[12:]),
	}, nil
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L98
func Transfer(from, to ed25519.PublicKey, lamports uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE] Recipient account
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data, commandTransfer)
	binary.LittleEndian.PutUint64(data[4:], lamports)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(from, true),
		solana.NewAccountMeta(to, false),
	)
}

type DecompiledTransfer struct {
	From     ed25519.PublicKey
	To       ed25519.PublicKey
	Lamports uint64
}

func DecompileTransfer(ix solana.Instruction) (*DecompiledTransfer, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(ix.Data) != 12 || binary.LittleEndian.Uint32(ix.Data) != commandTransfer {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ix.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	return &DecompiledTransfer{
		From:     ix.Accounts[0].PublicKey,
		To:       ix.Accounts[1].PublicKey,
		Lamports: binary.LittleEndian.Uint64(ix.Data[4:]),
	}, nil
}
