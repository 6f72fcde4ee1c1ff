package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/token"
)

func (r *Runtime) processAssociatedTokenAccount(ctx context.Context, ix solana.Instruction) error {
	decompiled, err := token.DecompileCreateAssociatedAccount(ix)
	if err != nil {
		return err
	}

	expected, err := token.GetAssociatedAccount(decompiled.Owner, decompiled.Mint)
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, decompiled.Address) {
		return errors.Wrapf(solana.ErrInvalidSeeds, "associated account %s", base58.Encode(decompiled.Address))
	}

	if _, _, err := r.GetMint(ctx, decompiled.Mint); err != nil {
		return err
	}

	_, err = r.GetAccount(ctx, decompiled.Address)
	switch err {
	case nil:
		if !decompiled.Idempotent {
			return errors.Wrapf(token.ErrorAlreadyInUse, "associated account %s", base58.Encode(decompiled.Address))
		}

		// An existing account only satisfies the request if it's the same
		// owner and mint.
		_, existing, err := r.GetTokenAccount(ctx, decompiled.Address)
		if err != nil {
			return err
		}
		if !bytes.Equal(existing.Owner, decompiled.Owner) {
			return token.ErrorOwnerMismatch
		}
		if !bytes.Equal(existing.Mint, decompiled.Mint) {
			return token.ErrorMintMismatch
		}
		return nil
	case account.ErrAccountNotFound:
	default:
		return err
	}

	return r.createTokenAccount(ctx, decompiled.Subsidizer, decompiled.Address, &token.Account{
		Mint:  decompiled.Mint,
		Owner: decompiled.Owner,
		State: token.AccountStateInitialized,
	})
}

func (r *Runtime) createTokenAccount(ctx context.Context, payer, address ed25519.PublicKey, state *token.Account) error {
	data := state.Marshal()

	record, err := r.CreateAccount(ctx, payer, address, token.ProgramKey, uint64(len(data)))
	if err != nil {
		return err
	}
	return r.PutAccountData(ctx, record, data)
}
