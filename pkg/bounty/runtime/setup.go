package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/solana/token"
	"github.com/code-payments/bounty-server/pkg/solana/transferhook"
)

// The following seed state that would otherwise be created by instructions the
// runtime doesn't process. They're used by hosts bootstrapping a cluster and
// by tests.

// Fund credits lamports to an account, creating it if necessary
func (r *Runtime) Fund(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	return r.credit(ctx, address, lamports)
}

// InitializeMint creates an initialized Token-2022 mint at address
func (r *Runtime) InitializeMint(ctx context.Context, payer, address ed25519.PublicKey, mint *token.Mint) error {
	mint.IsInitialized = true
	data := mint.Marshal()

	record, err := r.CreateAccount(ctx, payer, address, token.ProgramKey, uint64(len(data)))
	if err != nil {
		return err
	}
	return r.PutAccountData(ctx, record, data)
}

// InitializeTokenAccount creates an initialized Token-2022 account at address
func (r *Runtime) InitializeTokenAccount(ctx context.Context, payer, address ed25519.PublicKey, state *token.Account) error {
	if _, _, err := r.GetMint(ctx, state.Mint); err != nil {
		return err
	}

	if state.State == token.AccountStateUninitialized {
		state.State = token.AccountStateInitialized
	}
	return r.createTokenAccount(ctx, payer, address, state)
}

// MintTo issues new tokens of mint into a token account
func (r *Runtime) MintTo(ctx context.Context, mint, destination ed25519.PublicKey, amount uint64) error {
	mintRecord, mintState, err := r.GetMint(ctx, mint)
	if err != nil {
		return err
	}
	destinationRecord, destinationState, err := r.GetTokenAccount(ctx, destination)
	if err != nil {
		return err
	}

	if !bytes.Equal(destinationState.Mint, mint) {
		return token.ErrorMintMismatch
	}
	if mintState.Supply > math.MaxUint64-amount || destinationState.Amount > math.MaxUint64-amount {
		return token.ErrorOverflow
	}

	mintState.Supply += amount
	destinationState.Amount += amount

	if err := r.PutAccountData(ctx, mintRecord, mintState.Marshal()); err != nil {
		return err
	}
	return r.PutAccountData(ctx, destinationRecord, destinationState.Marshal())
}

// InitializeExtraAccountMetas writes the validation account a hook program
// resolves its extra accounts from for mint.
func (r *Runtime) InitializeExtraAccountMetas(ctx context.Context, payer, hookProgram, mint ed25519.PublicKey, metas transferhook.ExtraAccountMetaList) (ed25519.PublicKey, error) {
	address, _, err := transferhook.GetExtraAccountMetasAddress(hookProgram, mint)
	if err != nil {
		return nil, err
	}

	data := metas.Marshal()
	record, err := r.CreateAccount(ctx, payer, address, hookProgram, uint64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "error creating extra account metas")
	}
	if err := r.PutAccountData(ctx, record, data); err != nil {
		return nil, err
	}
	return address, nil
}
