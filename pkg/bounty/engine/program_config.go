package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/bounty-server/pkg/metrics"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
)

// initializeConfig creates the program config singleton. The signing
// authority pays for it and becomes its authority. Concurrent attempts resolve
// to a single winner, the rest fail with AlreadyExists.
func (e *Engine) initializeConfig(ctx context.Context, ix solana.Instruction) error {
	accounts, args, err := bounty.DecompileInitializeConfigInstruction(ix)
	if err != nil {
		return err
	}

	if err := requireSigner(ix, accounts.Authority, "authority"); err != nil {
		return err
	}
	if err := requireWritable(ix, accounts.Authority, "authority"); err != nil {
		return err
	}
	if err := requireWritable(ix, accounts.Config, "config"); err != nil {
		return err
	}
	if err := requirePrograms(ix, 2, bounty.SYSTEM_PROGRAM_ID); err != nil {
		return err
	}
	if err := requireProgramConfigAddress(accounts.Config); err != nil {
		return err
	}

	record, err := e.allocate(ctx, accounts.Authority, accounts.Config, bounty.ProgramConfigAccountSize)
	if err != nil {
		return err
	}

	config := &bounty.ProgramConfigAccount{
		Authority:         accounts.Authority,
		RequiredTokenMint: args.RequiredTokenMint,
	}
	if err := e.runtime.PutAccountData(ctx, record, config.Marshal()); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"method":    "initializeConfig",
		"authority": encodeKey(accounts.Authority),
		"mint":      encodeKey(args.RequiredTokenMint),
	}).Info("program config initialized")
	metrics.RecordCount(ctx, "bounty.config.initialized", 1)

	return nil
}

// updateRequiredMint replaces the mint that gates bounty creation. The
// authority is never changed.
func (e *Engine) updateRequiredMint(ctx context.Context, ix solana.Instruction) error {
	accounts, args, err := bounty.DecompileUpdateRequiredMintInstruction(ix)
	if err != nil {
		return err
	}

	if err := requireSigner(ix, accounts.Authority, "authority"); err != nil {
		return err
	}
	if err := requireWritable(ix, accounts.Config, "config"); err != nil {
		return err
	}
	if err := requireProgramConfigAddress(accounts.Config); err != nil {
		return err
	}

	record, config, err := e.loadProgramConfig(ctx, accounts.Config)
	if err != nil {
		return err
	}
	if err := requireRelation(config.Authority, accounts.Authority, "authority"); err != nil {
		return err
	}

	previous := config.RequiredTokenMint
	config.RequiredTokenMint = args.NewMint
	if err := e.runtime.PutAccountData(ctx, record, config.Marshal()); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"method":   "updateRequiredMint",
		"previous": encodeKey(previous),
		"mint":     encodeKey(args.NewMint),
	}).Info("required mint updated")

	return nil
}
