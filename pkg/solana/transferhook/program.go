// Package transferhook provides the SPL transfer hook interface shared by
// Token-2022 and the hook programs it invokes.
package transferhook

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/solana"
)

// ExecuteDiscriminator prefixes the Execute instruction of every hook program.
//
// Reference: sha256("spl-transfer-hook-interface:execute")[:8]
var ExecuteDiscriminator = []byte{0x69, 0x25, 0x65, 0xc5, 0x4b, 0xfb, 0x66, 0x1a}

// InitializeExtraAccountMetaListDiscriminator prefixes the instruction that
// writes a mint's validation account.
//
// Reference: sha256("spl-transfer-hook-interface:initialize-extra-account-metas")[:8]
var InitializeExtraAccountMetaListDiscriminator = []byte{0x2b, 0x22, 0x0d, 0x31, 0xa7, 0x58, 0xeb, 0xeb}

const extraAccountMetasSeed = "extra-account-metas"

// GetExtraAccountMetasAddress returns the validation account a hook program
// reads its extra accounts from for a mint.
func GetExtraAccountMetasAddress(hookProgram, mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		hookProgram,
		[]byte(extraAccountMetasSeed),
		mint,
	)
}

// Execute builds the instruction Token-2022 issues to a hook program after a
// checked transfer.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/transfer-hook/interface/src/instruction.rs#L20
func Execute(hookProgram, source, mint, destination, authority, extraAccountMetas ed25519.PublicKey, amount uint64, extra ...solana.AccountMeta) solana.Instruction {
	data := make([]byte, len(ExecuteDiscriminator)+8)
	copy(data, ExecuteDiscriminator)
	binary.LittleEndian.PutUint64(data[len(ExecuteDiscriminator):], amount)

	accounts := []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(destination, false),
		solana.NewReadonlyAccountMeta(authority, false),
		solana.NewReadonlyAccountMeta(extraAccountMetas, false),
	}
	accounts = append(accounts, extra...)

	return solana.NewInstruction(hookProgram, data, accounts...)
}

type DecompiledExecute struct {
	Source            ed25519.PublicKey
	Mint              ed25519.PublicKey
	Destination       ed25519.PublicKey
	Authority         ed25519.PublicKey
	ExtraAccountMetas ed25519.PublicKey
	Amount            uint64

	ExtraAccounts []solana.AccountMeta
}

func DecompileExecute(ix solana.Instruction) (*DecompiledExecute, error) {
	if len(ix.Data) != len(ExecuteDiscriminator)+8 || !bytes.Equal(ix.Data[:len(ExecuteDiscriminator)], ExecuteDiscriminator) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ix.Accounts) < 5 {
		return nil, errors.Wrapf(solana.ErrNotEnoughAccountKeys, "invalid number of accounts: %d", len(ix.Accounts))
	}

	return &DecompiledExecute{
		Source:            ix.Accounts[0].PublicKey,
		Mint:              ix.Accounts[1].PublicKey,
		Destination:       ix.Accounts[2].PublicKey,
		Authority:         ix.Accounts[3].PublicKey,
		ExtraAccountMetas: ix.Accounts[4].PublicKey,
		Amount:            binary.LittleEndian.Uint64(ix.Data[len(ExecuteDiscriminator):]),
		ExtraAccounts:     ix.Accounts[5:],
	}, nil
}
