package engine

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/bounty-server/pkg/metrics"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
	"github.com/code-payments/bounty-server/pkg/solana/token"
)

type transferArgs struct {
	source      ed25519.PublicKey
	mint        ed25519.PublicKey
	destination ed25519.PublicKey
	authority   ed25519.PublicKey
	amount      uint64
	decimals    byte

	// Caller supplied accounts for the mint's transfer hook. They're forwarded
	// to the token program as is, and only the token program and the hook
	// validate them.
	extra []solana.AccountMeta
}

func (e *Engine) transferChecked(ctx context.Context, args *transferArgs) error {
	ix := token.TransferChecked(
		args.source,
		args.mint,
		args.destination,
		args.authority,
		args.amount,
		args.decimals,
		args.extra...,
	)
	return e.runtime.Invoke(ctx, ix)
}

// createFeeTokenAccount creates the associated token account of a bounty
// account when fees are self held. Existing accounts for the same owner and
// mint are reused.
func (e *Engine) createFeeTokenAccount(ctx context.Context, payer, owner, mint ed25519.PublicKey) error {
	ix, _, err := token.CreateAssociatedTokenAccountIdempotent(payer, owner, mint)
	if err != nil {
		return err
	}
	return e.runtime.Invoke(ctx, ix)
}

// burnTokens burns from any holder of the required mint. The config authority
// authorizes the request, and the mint authorizes the burn itself as its own
// permanent delegate.
func (e *Engine) burnTokens(ctx context.Context, ix solana.Instruction) error {
	accounts, args, err := bounty.DecompileBurnTokensInstruction(ix)
	if err != nil {
		return err
	}

	if err := requireSigner(ix, accounts.Authority, "authority"); err != nil {
		return err
	}
	if err := requireWritable(ix, accounts.Mint, "mint"); err != nil {
		return err
	}
	if err := requireWritable(ix, accounts.TargetTokenAccount, "target token account"); err != nil {
		return err
	}
	if err := requirePrograms(ix, 5, bounty.TOKEN_2022_PROGRAM_ID); err != nil {
		return err
	}

	if err := requireProgramConfigAddress(accounts.Config); err != nil {
		return err
	}
	_, config, err := e.loadProgramConfig(ctx, accounts.Config)
	if err != nil {
		return err
	}
	if err := requireRelation(config.Authority, accounts.Authority, "authority"); err != nil {
		return err
	}

	if !bytes.Equal(accounts.Mint, config.RequiredTokenMint) {
		return errors.Wrapf(bounty.ErrorInvalidTokenMint, "mint %s is not %s", encodeKey(accounts.Mint), encodeKey(config.RequiredTokenMint))
	}
	_, mint, err := e.runtime.GetMint(ctx, accounts.Mint)
	if err != nil {
		return errors.Wrapf(bounty.ErrorInvalidTokenMint, "mint %s: %v", encodeKey(accounts.Mint), err)
	}
	if !bytes.Equal(mint.PermanentDelegate, accounts.Mint) {
		return errors.Wrapf(bounty.ErrorInvalidTokenMint, "mint %s is not its own permanent delegate", encodeKey(accounts.Mint))
	}
	if _, err := e.loadTokenAccount(ctx, accounts.TargetTokenAccount, accounts.TargetOwner, accounts.Mint); err != nil {
		return err
	}

	// The mint signs as its own permanent delegate. No key can sign for it,
	// so the signature is granted here once the authority has been checked.
	burn := token.BurnChecked(
		accounts.TargetTokenAccount,
		accounts.Mint,
		accounts.Mint,
		args.Amount,
		mint.Decimals,
		accounts.RemainingAccounts...,
	)
	if err := e.runtime.Invoke(ctx, burn); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"method": "burnTokens",
		"target": encodeKey(accounts.TargetTokenAccount),
		"amount": args.Amount,
	}).Info("tokens burned")
	metrics.RecordCount(ctx, "bounty.tokens.burned", args.Amount)

	return nil
}
