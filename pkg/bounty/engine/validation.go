package engine

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
	"github.com/code-payments/bounty-server/pkg/solana/system"
	"github.com/code-payments/bounty-server/pkg/solana/token"
)

func requireSigner(ix solana.Instruction, key ed25519.PublicKey, name string) error {
	if !ix.IsSigner(key) {
		return errors.Wrapf(solana.ErrMissingRequiredSignature, "%s %s", name, encodeKey(key))
	}
	return nil
}

func requireWritable(ix solana.Instruction, key ed25519.PublicKey, name string) error {
	for _, account := range ix.Accounts {
		if account.IsWritable && bytes.Equal(account.PublicKey, key) {
			return nil
		}
	}
	return errors.Wrapf(solana.ErrReadonlyDataModified, "%s %s is not writable", name, encodeKey(key))
}

// requirePrograms checks the program accounts that follow the named accounts
// of an instruction.
func requirePrograms(ix solana.Instruction, offset int, programs ...ed25519.PublicKey) error {
	if len(ix.Accounts) < offset+len(programs) {
		return solana.ErrNotEnoughAccountKeys
	}

	for i, program := range programs {
		if !bytes.Equal(ix.Accounts[offset+i].PublicKey, program) {
			return errors.Wrapf(solana.ErrIncorrectProgram, "expected %s at account %d", encodeKey(program), offset+i)
		}
	}
	return nil
}

// requireRelation is the has_one check between a stored identity and the
// account supplied for it.
func requireRelation(stored, supplied ed25519.PublicKey, name string) error {
	if !bytes.Equal(stored, supplied) {
		return errors.Wrapf(bounty.ErrorUnauthorized, "%s %s does not match %s", name, encodeKey(supplied), encodeKey(stored))
	}
	return nil
}

func requireProgramConfigAddress(address ed25519.PublicKey) error {
	expected, _, err := bounty.GetProgramConfigAddress()
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, address) {
		return errors.Wrapf(bounty.ErrorInvalidProgramConfig, "%s is not the program config address", encodeKey(address))
	}
	return nil
}

func requireMemo(memo string) error {
	if len(memo) > bounty.MaxBountyInfoAccountMemoLength {
		return errors.Wrapf(bounty.ErrorMemoTooLong, "memo is %d bytes", len(memo))
	}
	if !utf8.ValidString(memo) {
		return errors.Wrap(solana.ErrInvalidInstructionData, "memo is not valid utf-8")
	}
	return nil
}

func (e *Engine) loadProgramConfig(ctx context.Context, address ed25519.PublicKey) (*account.Record, *bounty.ProgramConfigAccount, error) {
	record, err := e.runtime.GetAccount(ctx, address)
	if err == account.ErrAccountNotFound {
		return nil, nil, errors.Wrap(solana.ErrUninitializedAccount, "program config")
	} else if err != nil {
		return nil, nil, err
	}

	if record.Owner != encodeKey(bounty.PROGRAM_ID) {
		return nil, nil, errors.Wrapf(bounty.ErrorInvalidProgramConfig, "program config owned by %s", record.Owner)
	}

	var config bounty.ProgramConfigAccount
	if err := config.Unmarshal(record.Data); err != nil {
		return nil, nil, errors.Wrap(bounty.ErrorInvalidProgramConfig, "invalid program config data")
	}
	return record, &config, nil
}

func (e *Engine) loadBounty(ctx context.Context, address ed25519.PublicKey) (*account.Record, *bounty.BountyInfoAccount, error) {
	record, err := e.runtime.GetAccount(ctx, address)
	if err == account.ErrAccountNotFound {
		return nil, nil, errors.Wrapf(solana.ErrUninitializedAccount, "bounty %s", encodeKey(address))
	} else if err != nil {
		return nil, nil, err
	}

	if record.Owner != encodeKey(bounty.PROGRAM_ID) {
		return nil, nil, errors.Wrapf(solana.ErrIllegalOwner, "bounty %s owned by %s", encodeKey(address), record.Owner)
	}

	var info bounty.BountyInfoAccount
	if err := info.Unmarshal(record.Data); err != nil {
		return nil, nil, errors.Wrapf(solana.ErrInvalidAccountData, "bounty %s", encodeKey(address))
	}
	return record, &info, nil
}

// loadTokenAccount returns the state of a token account that must hold mint
// for owner.
func (e *Engine) loadTokenAccount(ctx context.Context, address, owner, mint ed25519.PublicKey) (*token.Account, error) {
	_, state, err := e.runtime.GetTokenAccount(ctx, address)
	if err != nil {
		return nil, errors.Wrapf(bounty.ErrorInvalidTokenAccount, "token account %s: %v", encodeKey(address), err)
	}
	if !bytes.Equal(state.Mint, mint) {
		return nil, errors.Wrapf(bounty.ErrorInvalidTokenAccount, "token account %s holds mint %s", encodeKey(address), encodeKey(state.Mint))
	}
	if !bytes.Equal(state.Owner, owner) {
		return nil, errors.Wrapf(bounty.ErrorInvalidTokenAccount, "token account %s is owned by %s", encodeKey(address), encodeKey(state.Owner))
	}
	return state, nil
}

// allocate creates a program owned account paid for by payer
func (e *Engine) allocate(ctx context.Context, payer, address ed25519.PublicKey, size uint64) (*account.Record, error) {
	record, err := e.runtime.CreateAccount(ctx, payer, address, bounty.PROGRAM_ID, size)
	if errors.Is(err, system.ErrorAccountAlreadyInUse) {
		return nil, errors.Wrapf(bounty.ErrorAlreadyExists, "account %s", encodeKey(address))
	}
	return record, err
}
