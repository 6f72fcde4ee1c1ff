package allowlist

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
	"github.com/code-payments/bounty-server/pkg/bounty/runtime"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/transferhook"
)

// Program processes allowlist instructions and transfer hook executions
type Program struct {
	log *logrus.Entry
	id  ed25519.PublicKey
	rt  *runtime.Runtime
}

// Register installs the allowlist program in the runtime under id
func Register(rt *runtime.Runtime, id ed25519.PublicKey) *Program {
	p := &Program{
		log: logrus.StandardLogger().WithFields(logrus.Fields{
			"type":    "bounty/runtime/allowlist",
			"program": base58.Encode(id),
		}),
		id: id,
		rt: rt,
	}
	rt.Register(id, p)
	return p
}

// Process implements runtime.Processor.Process
func (p *Program) Process(ctx context.Context, ix solana.Instruction) error {
	if !bytes.Equal(ix.Program, p.id) {
		return solana.ErrIncorrectProgram
	}
	if len(ix.Data) < 8 {
		return solana.ErrInvalidInstructionData
	}

	switch {
	case bytes.Equal(ix.Data[:8], transferhook.ExecuteDiscriminator):
		return p.execute(ctx, ix)
	case bytes.Equal(ix.Data[:8], InitWalletDiscriminator):
		return p.initWallet(ctx, ix)
	case bytes.Equal(ix.Data[:8], InitConfigDiscriminator):
		return p.initConfig(ctx, ix)
	default:
		return errors.Wrap(solana.ErrInvalidInstructionData, "unknown instruction")
	}
}

func (p *Program) initConfig(ctx context.Context, ix solana.Instruction) error {
	if err := checkAccounts(ix, 4); err != nil {
		return err
	}

	payer := ix.Accounts[0]
	configAddress := ix.Accounts[1].PublicKey
	mint := ix.Accounts[2].PublicKey

	if !payer.IsSigner {
		return errors.Wrap(solana.ErrMissingRequiredSignature, "payer")
	}

	expected, _, err := GetConfigAddress(p.id, mint)
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, configAddress) {
		return errors.Wrap(solana.ErrInvalidSeeds, "config")
	}

	if _, _, err := p.rt.GetMint(ctx, mint); err != nil {
		return err
	}

	record, err := p.rt.CreateAccount(ctx, payer.PublicKey, configAddress, p.id, ConfigAccountSize)
	if err != nil {
		return err
	}

	config := &ConfigAccount{
		Authority: payer.PublicKey,
		Mint:      mint,
	}
	return p.rt.PutAccountData(ctx, record, config.Marshal())
}

func (p *Program) initWallet(ctx context.Context, ix solana.Instruction) error {
	if err := checkAccounts(ix, 6); err != nil {
		return err
	}
	if len(ix.Data) != len(InitWalletDiscriminator)+1 {
		return solana.ErrInvalidInstructionData
	}

	payer := ix.Accounts[0]
	walletAddress := ix.Accounts[2].PublicKey
	configAddress := ix.Accounts[3].PublicKey
	authority := ix.Accounts[4]
	tokenAccount := ix.Accounts[5].PublicKey

	status := WalletStatus(ix.Data[len(InitWalletDiscriminator)])
	if status > WalletStatusNone {
		return errors.Wrapf(solana.ErrInvalidInstructionData, "invalid status %d", status)
	}

	if !payer.IsSigner {
		return errors.Wrap(solana.ErrMissingRequiredSignature, "payer")
	}
	if !authority.IsSigner {
		return errors.Wrap(solana.ErrMissingRequiredSignature, "authority")
	}

	config, err := p.getConfig(ctx, configAddress)
	if err != nil {
		return err
	}
	if !bytes.Equal(config.Authority, authority.PublicKey) {
		return ErrorUnauthorized
	}

	_, state, err := p.rt.GetTokenAccount(ctx, tokenAccount)
	if err != nil {
		return err
	}
	if !bytes.Equal(state.Mint, config.Mint) {
		return errors.Wrap(ErrorInvalidWallet, "token account mint doesn't match config")
	}

	expected, _, err := GetWalletAddress(p.id, tokenAccount)
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, walletAddress) {
		return errors.Wrap(solana.ErrInvalidSeeds, "wallet")
	}

	record, err := p.rt.CreateAccount(ctx, payer.PublicKey, walletAddress, p.id, WalletAccountSize)
	if err != nil {
		return err
	}

	wallet := &WalletAccount{
		Status:       status,
		TokenAccount: tokenAccount,
	}
	return p.rt.PutAccountData(ctx, record, wallet.Marshal())
}

func (p *Program) execute(ctx context.Context, ix solana.Instruction) error {
	decompiled, err := transferhook.DecompileExecute(ix)
	if err != nil {
		return err
	}
	if len(decompiled.ExtraAccounts) < 2 {
		return errors.Wrapf(solana.ErrNotEnoughAccountKeys, "invalid number of extra accounts: %d", len(decompiled.ExtraAccounts))
	}

	validation, _, err := transferhook.GetExtraAccountMetasAddress(p.id, decompiled.Mint)
	if err != nil {
		return err
	}
	if !bytes.Equal(validation, decompiled.ExtraAccountMetas) {
		return errors.Wrap(solana.ErrInvalidSeeds, "extra account metas")
	}

	log := p.log.WithFields(logrus.Fields{
		"method":      "execute",
		"source":      base58.Encode(decompiled.Source),
		"destination": base58.Encode(decompiled.Destination),
	})

	source, err := p.getWallet(ctx, decompiled.Source, decompiled.ExtraAccounts[0].PublicKey)
	if err != nil {
		return err
	}
	if source != nil && source.Status == WalletStatusBlock {
		log.Info("rejecting transfer from blocked wallet")
		return ErrorWalletBlocked
	}

	destination, err := p.getWallet(ctx, decompiled.Destination, decompiled.ExtraAccounts[1].PublicKey)
	if err != nil {
		return err
	}
	switch {
	case destination == nil:
		log.Info("rejecting transfer to unlisted wallet")
		return ErrorWalletNotAllowed
	case destination.Status == WalletStatusBlock:
		log.Info("rejecting transfer to blocked wallet")
		return ErrorWalletBlocked
	case destination.Status != WalletStatusAllow:
		log.Info("rejecting transfer to wallet that isn't allowed")
		return ErrorWalletNotAllowed
	}

	return nil
}

func (p *Program) getConfig(ctx context.Context, address ed25519.PublicKey) (*ConfigAccount, error) {
	record, err := p.rt.GetAccount(ctx, address)
	if err == account.ErrAccountNotFound {
		return nil, errors.Wrap(solana.ErrUninitializedAccount, "config")
	} else if err != nil {
		return nil, err
	}

	if record.Owner != base58.Encode(p.id) {
		return nil, errors.Wrap(solana.ErrIllegalOwner, "config")
	}

	var config ConfigAccount
	if err := config.Unmarshal(record.Data); err != nil {
		return nil, err
	}

	expected, _, err := GetConfigAddress(p.id, config.Mint)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(expected, address) {
		return nil, errors.Wrap(solana.ErrInvalidSeeds, "config")
	}
	return &config, nil
}

// getWallet returns the list entry for a token account, or nil if it has none.
// The supplied address must be the entry's derived address.
func (p *Program) getWallet(ctx context.Context, tokenAccount, address ed25519.PublicKey) (*WalletAccount, error) {
	expected, _, err := GetWalletAddress(p.id, tokenAccount)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(expected, address) {
		return nil, errors.Wrapf(solana.ErrInvalidSeeds, "wallet for %s", base58.Encode(tokenAccount))
	}

	record, err := p.rt.GetAccount(ctx, address)
	if err == account.ErrAccountNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	if record.Owner != base58.Encode(p.id) {
		return nil, errors.Wrap(solana.ErrIllegalOwner, "wallet")
	}

	var wallet WalletAccount
	if err := wallet.Unmarshal(record.Data); err != nil {
		return nil, err
	}
	return &wallet, nil
}
