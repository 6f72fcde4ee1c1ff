package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/token"
	"github.com/code-payments/bounty-server/pkg/solana/transferhook"
)

func (r *Runtime) processToken(ctx context.Context, ix solana.Instruction) error {
	cmd, err := token.GetCommand(ix)
	if err != nil {
		return err
	}

	switch cmd {
	case token.CommandTransferChecked:
		return r.processTransferChecked(ctx, ix)
	case token.CommandBurnChecked:
		return r.processBurnChecked(ctx, ix)
	default:
		return errors.Wrapf(solana.ErrInvalidInstructionData, "unsupported token command %d", cmd)
	}
}

func (r *Runtime) processTransferChecked(ctx context.Context, ix solana.Instruction) error {
	decompiled, err := token.DecompileTransferChecked(ix)
	if err != nil {
		return err
	}

	sourceRecord, source, err := r.GetTokenAccount(ctx, decompiled.Source)
	if err != nil {
		return err
	}
	destinationRecord, destination, err := r.GetTokenAccount(ctx, decompiled.Destination)
	if err != nil {
		return err
	}
	_, mint, err := r.GetMint(ctx, decompiled.Mint)
	if err != nil {
		return err
	}

	if source.State == token.AccountStateFrozen || destination.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(source.Mint, decompiled.Mint) || !bytes.Equal(destination.Mint, decompiled.Mint) {
		return token.ErrorMintMismatch
	}
	if decompiled.Decimals != mint.Decimals {
		return token.ErrorMintDecimalsMismatch
	}

	if err := validateTokenAuthority(source, mint, decompiled.Authority, decompiled.AuthoritySigned, decompiled.Amount); err != nil {
		return err
	}
	if source.Amount < decompiled.Amount {
		return token.ErrorInsufficientFunds
	}

	var hookIx *solana.Instruction
	if mint.TransferHook != nil && len(mint.TransferHook.ProgramID) > 0 {
		hookIx, err = r.getTransferHookInstruction(ctx, mint.TransferHook.ProgramID, decompiled)
		if err != nil {
			return err
		}
	}

	if sourceRecord.Address != destinationRecord.Address {
		if destination.Amount > math.MaxUint64-decompiled.Amount {
			return token.ErrorOverflow
		}

		source.Amount -= decompiled.Amount
		destination.Amount += decompiled.Amount

		if err := r.PutAccountData(ctx, sourceRecord, source.Marshal()); err != nil {
			return err
		}
		if err := r.PutAccountData(ctx, destinationRecord, destination.Marshal()); err != nil {
			return err
		}
	}

	if hookIx == nil {
		return nil
	}
	return r.Invoke(ctx, *hookIx)
}

// getTransferHookInstruction builds the call to the mint's hook program with
// the accounts listed in its validation account. Every resolved account must
// have been forwarded with the transfer.
func (r *Runtime) getTransferHookInstruction(ctx context.Context, hookProgram ed25519.PublicKey, transfer *token.DecompiledTransferChecked) (*solana.Instruction, error) {
	if !containsKey(transfer.ExtraAccounts, hookProgram) {
		return nil, errors.Wrapf(solana.ErrMissingAccount, "transfer hook program %s", base58.Encode(hookProgram))
	}

	validationAddress, _, err := transferhook.GetExtraAccountMetasAddress(hookProgram, transfer.Mint)
	if err != nil {
		return nil, err
	}
	if !containsKey(transfer.ExtraAccounts, validationAddress) {
		return nil, errors.Wrapf(solana.ErrMissingAccount, "extra account metas %s", base58.Encode(validationAddress))
	}

	var metas transferhook.ExtraAccountMetaList
	validationRecord, err := r.GetAccount(ctx, validationAddress)
	switch err {
	case nil:
		if validationRecord.Owner != base58.Encode(hookProgram) {
			return nil, errors.Wrapf(solana.ErrIllegalOwner, "extra account metas owned by %s", validationRecord.Owner)
		}
		if err := metas.Unmarshal(validationRecord.Data); err != nil {
			return nil, err
		}
	case account.ErrAccountNotFound:
	default:
		return nil, err
	}

	executeAccounts := []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(transfer.Source, false),
		solana.NewReadonlyAccountMeta(transfer.Mint, false),
		solana.NewReadonlyAccountMeta(transfer.Destination, false),
		solana.NewReadonlyAccountMeta(transfer.Authority, false),
		solana.NewReadonlyAccountMeta(validationAddress, false),
	}
	resolved, err := metas.ResolveAll(hookProgram, executeAccounts)
	if err != nil {
		return nil, err
	}

	extra := make([]solana.AccountMeta, len(resolved))
	for i, meta := range resolved {
		forwarded, ok := findKey(transfer.ExtraAccounts, meta.PublicKey)
		if !ok {
			return nil, errors.Wrapf(solana.ErrMissingAccount, "extra account %s", base58.Encode(meta.PublicKey))
		}

		// Privileges can't be escalated beyond what the transfer was granted
		extra[i] = solana.AccountMeta{
			PublicKey:  meta.PublicKey,
			IsSigner:   meta.IsSigner && forwarded.IsSigner,
			IsWritable: meta.IsWritable && forwarded.IsWritable,
		}
	}

	ix := transferhook.Execute(
		hookProgram,
		transfer.Source,
		transfer.Mint,
		transfer.Destination,
		transfer.Authority,
		validationAddress,
		transfer.Amount,
		extra...,
	)
	return &ix, nil
}

func (r *Runtime) processBurnChecked(ctx context.Context, ix solana.Instruction) error {
	decompiled, err := token.DecompileBurnChecked(ix)
	if err != nil {
		return err
	}

	holderRecord, holder, err := r.GetTokenAccount(ctx, decompiled.Account)
	if err != nil {
		return err
	}
	mintRecord, mint, err := r.GetMint(ctx, decompiled.Mint)
	if err != nil {
		return err
	}

	if holder.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(holder.Mint, decompiled.Mint) {
		return token.ErrorMintMismatch
	}
	if decompiled.Decimals != mint.Decimals {
		return token.ErrorMintDecimalsMismatch
	}

	if err := validateTokenAuthority(holder, mint, decompiled.Authority, decompiled.AuthoritySigned, decompiled.Amount); err != nil {
		return err
	}
	if holder.Amount < decompiled.Amount {
		return token.ErrorInsufficientFunds
	}
	if mint.Supply < decompiled.Amount {
		return token.ErrorOverflow
	}

	holder.Amount -= decompiled.Amount
	mint.Supply -= decompiled.Amount

	if err := r.PutAccountData(ctx, holderRecord, holder.Marshal()); err != nil {
		return err
	}
	return r.PutAccountData(ctx, mintRecord, mint.Marshal())
}

// validateTokenAuthority checks that authority may move amount out of holder.
// The mint's permanent delegate takes precedence, then the owner, then a
// delegate within its allowance. A delegate's allowance is consumed.
func validateTokenAuthority(holder *token.Account, mint *token.Mint, authority ed25519.PublicKey, signed bool, amount uint64) error {
	switch {
	case len(mint.PermanentDelegate) > 0 && bytes.Equal(mint.PermanentDelegate, authority):
	case bytes.Equal(holder.Owner, authority):
	case len(holder.Delegate) > 0 && bytes.Equal(holder.Delegate, authority):
		if holder.DelegatedAmount < amount {
			return token.ErrorInsufficientFunds
		}
		if signed {
			holder.DelegatedAmount -= amount
			if holder.DelegatedAmount == 0 {
				holder.Delegate = nil
			}
		}
	default:
		return token.ErrorOwnerMismatch
	}

	if !signed {
		return errors.Wrapf(solana.ErrMissingRequiredSignature, "token authority %s", base58.Encode(authority))
	}
	return nil
}

// GetTokenAccount loads and decodes a Token-2022 token account
func (r *Runtime) GetTokenAccount(ctx context.Context, address ed25519.PublicKey) (*account.Record, *token.Account, error) {
	record, err := r.getTokenProgramAccount(ctx, address)
	if err != nil {
		return nil, nil, err
	}

	var decoded token.Account
	if !decoded.Unmarshal(record.Data) || decoded.State == token.AccountStateUninitialized {
		return nil, nil, errors.Wrapf(token.ErrorUninitializedState, "token account %s", record.Address)
	}
	return record, &decoded, nil
}

// GetMint loads and decodes a Token-2022 mint
func (r *Runtime) GetMint(ctx context.Context, address ed25519.PublicKey) (*account.Record, *token.Mint, error) {
	record, err := r.getTokenProgramAccount(ctx, address)
	if err != nil {
		return nil, nil, err
	}

	var decoded token.Mint
	if !decoded.Unmarshal(record.Data) || !decoded.IsInitialized {
		return nil, nil, errors.Wrapf(token.ErrorInvalidMint, "mint %s", record.Address)
	}
	return record, &decoded, nil
}

func (r *Runtime) getTokenProgramAccount(ctx context.Context, address ed25519.PublicKey) (*account.Record, error) {
	record, err := r.GetAccount(ctx, address)
	if err == account.ErrAccountNotFound {
		return nil, errors.Wrapf(token.ErrorUninitializedState, "account %s", base58.Encode(address))
	} else if err != nil {
		return nil, err
	}

	if record.Owner != base58.Encode(token.ProgramKey) {
		return nil, errors.Wrapf(solana.ErrIncorrectProgram, "account %s owned by %s", record.Address, record.Owner)
	}
	return record, nil
}

func containsKey(accounts []solana.AccountMeta, key ed25519.PublicKey) bool {
	_, ok := findKey(accounts, key)
	return ok
}

// findKey returns the meta for key, merging privileges when it is listed more
// than once.
func findKey(accounts []solana.AccountMeta, key ed25519.PublicKey) (solana.AccountMeta, bool) {
	var res solana.AccountMeta
	var found bool
	for _, meta := range accounts {
		if !bytes.Equal(meta.PublicKey, key) {
			continue
		}

		found = true
		res.PublicKey = meta.PublicKey
		res.IsSigner = res.IsSigner || meta.IsSigner
		res.IsWritable = res.IsWritable || meta.IsWritable
	}
	return res, found
}
