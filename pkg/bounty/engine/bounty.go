package engine

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/bounty-server/pkg/metrics"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
)

// createBounty allocates a bounty owned by the signer and charges the creation
// fee in the required mint. Checks run before anything is written, and the fee
// transfer runs after the record is stored so a failed transfer discards it.
func (e *Engine) createBounty(ctx context.Context, ix solana.Instruction) error {
	accounts, args, err := bounty.DecompileCreateBountyInstruction(ix)
	if err != nil {
		return err
	}

	log := e.log.WithFields(logrus.Fields{
		"method": "createBounty",
		"signer": encodeKey(accounts.Signer),
		"bounty": encodeKey(accounts.BountyAccount),
	})

	// Signers and writable accounts
	if err := requireSigner(ix, accounts.Signer, "signer"); err != nil {
		return err
	}
	if err := requireSigner(ix, accounts.BountyAccount, "bounty account"); err != nil {
		return err
	}
	for _, writable := range []struct {
		name string
		key  []byte
	}{
		{"signer", accounts.Signer},
		{"bounty account", accounts.BountyAccount},
		{"user token account", accounts.UserTokenAccount},
		{"destination token account", accounts.DestinationTokenAccount},
	} {
		if err := requireWritable(ix, writable.key, writable.name); err != nil {
			return err
		}
	}
	if err := requirePrograms(ix, 7, bounty.TOKEN_2022_PROGRAM_ID, bounty.ASSOCIATED_TOKEN_PROGRAM_ID, bounty.SYSTEM_PROGRAM_ID); err != nil {
		return err
	}

	// Program config
	if err := requireProgramConfigAddress(accounts.Config); err != nil {
		return err
	}
	_, config, err := e.loadProgramConfig(ctx, accounts.Config)
	if err != nil {
		return err
	}

	// Mint gating
	if !bytes.Equal(accounts.Mint, config.RequiredTokenMint) {
		return errors.Wrapf(bounty.ErrorInvalidTokenMint, "mint %s is not %s", encodeKey(accounts.Mint), encodeKey(config.RequiredTokenMint))
	}
	_, mint, err := e.runtime.GetMint(ctx, accounts.Mint)
	if err != nil {
		return errors.Wrapf(bounty.ErrorInvalidTokenMint, "mint %s: %v", encodeKey(accounts.Mint), err)
	}
	if _, err := e.loadTokenAccount(ctx, accounts.UserTokenAccount, accounts.Signer, accounts.Mint); err != nil {
		return err
	}

	// Fee destination
	feePolicy := FeePolicy(e.conf.feePolicy.Get(ctx))
	switch feePolicy {
	case FeePolicyTreasury:
		treasury := e.conf.treasuryWallet.Get(ctx)
		if !bytes.Equal(accounts.Treasury, treasury) {
			return errors.Wrapf(bounty.ErrorInvalidTreasury, "treasury %s is not %s", encodeKey(accounts.Treasury), encodeKey(treasury))
		}
	case FeePolicySelf:
		if !bytes.Equal(accounts.Treasury, accounts.BountyAccount) {
			return errors.Wrapf(bounty.ErrorInvalidTreasury, "treasury %s is not the bounty account", encodeKey(accounts.Treasury))
		}
	default:
		return errors.Errorf("unsupported fee policy %q", feePolicy)
	}
	destination, _, err := bounty.GetFeeTokenAccountAddress(&bounty.GetFeeTokenAccountAddressArgs{
		Owner: accounts.Treasury,
		Mint:  accounts.Mint,
	})
	if err != nil {
		return err
	}
	if !bytes.Equal(destination, accounts.DestinationTokenAccount) {
		return errors.Wrapf(bounty.ErrorInvalidTokenAccount, "destination %s is not %s", encodeKey(accounts.DestinationTokenAccount), encodeKey(destination))
	}

	if err := requireMemo(args.Memo); err != nil {
		return err
	}

	// Record
	record, err := e.allocate(ctx, accounts.Signer, accounts.BountyAccount, bounty.BountyInfoAccountSize)
	if err != nil {
		return err
	}

	now := e.clock.Now().Unix()
	info := &bounty.BountyInfoAccount{
		Owner:     accounts.Signer,
		Address:   args.Address,
		Memo:      args.Memo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.runtime.PutAccountData(ctx, record, info.Marshal()); err != nil {
		return err
	}

	// Creation fee
	if feePolicy == FeePolicySelf {
		if err := e.createFeeTokenAccount(ctx, accounts.Signer, accounts.BountyAccount, accounts.Mint); err != nil {
			return err
		}
	}
	fee := e.conf.creationFeeAmount.Get(ctx)
	err = e.transferChecked(ctx, &transferArgs{
		source:      accounts.UserTokenAccount,
		mint:        accounts.Mint,
		destination: accounts.DestinationTokenAccount,
		authority:   accounts.Signer,
		amount:      fee,
		decimals:    mint.Decimals,
		extra:       accounts.RemainingAccounts,
	})
	if err != nil {
		return err
	}

	log.WithField("fee_policy", feePolicy).Info("bounty created")
	metrics.RecordCount(ctx, "bounty.created", 1)

	return nil
}

// updateBounty replaces the address and memo of a bounty. Only the owner may
// update it, and the creation time is preserved.
func (e *Engine) updateBounty(ctx context.Context, ix solana.Instruction) error {
	accounts, args, err := bounty.DecompileUpdateBountyInstruction(ix)
	if err != nil {
		return err
	}

	if err := requireSigner(ix, accounts.Signer, "signer"); err != nil {
		return err
	}
	if err := requireWritable(ix, accounts.BountyAccount, "bounty account"); err != nil {
		return err
	}

	record, info, err := e.loadBounty(ctx, accounts.BountyAccount)
	if err != nil {
		return err
	}
	if err := requireRelation(info.Owner, accounts.Owner, "owner"); err != nil {
		return err
	}
	if err := requireRelation(info.Owner, accounts.Signer, "signer"); err != nil {
		return err
	}
	if err := requireMemo(args.Memo); err != nil {
		return err
	}

	info.Address = args.Address
	info.Memo = args.Memo
	info.UpdatedAt = e.clock.Now().Unix()
	if err := e.runtime.PutAccountData(ctx, record, info.Marshal()); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"method": "updateBounty",
		"signer": encodeKey(accounts.Signer),
		"bounty": encodeKey(accounts.BountyAccount),
	}).Info("bounty updated")

	return nil
}

// deleteBounty closes a bounty and refunds its rent to the owner, freeing the
// address for reuse.
func (e *Engine) deleteBounty(ctx context.Context, ix solana.Instruction) error {
	accounts, err := bounty.DecompileDeleteBountyInstruction(ix)
	if err != nil {
		return err
	}

	if err := requireSigner(ix, accounts.Signer, "signer"); err != nil {
		return err
	}
	if err := requireWritable(ix, accounts.Signer, "signer"); err != nil {
		return err
	}
	if err := requireWritable(ix, accounts.BountyAccount, "bounty account"); err != nil {
		return err
	}

	_, info, err := e.loadBounty(ctx, accounts.BountyAccount)
	if err != nil {
		return err
	}
	if err := requireRelation(info.Owner, accounts.Owner, "owner"); err != nil {
		return err
	}
	if err := requireRelation(info.Owner, accounts.Signer, "signer"); err != nil {
		return err
	}

	if err := e.runtime.CloseAccount(ctx, accounts.BountyAccount, accounts.Signer); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"method": "deleteBounty",
		"signer": encodeKey(accounts.Signer),
		"bounty": encodeKey(accounts.BountyAccount),
	}).Info("bounty deleted")
	metrics.RecordCount(ctx, "bounty.deleted", 1)

	return nil
}
