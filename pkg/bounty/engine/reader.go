package engine

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
	"github.com/code-payments/bounty-server/pkg/metrics"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
)

// GetProgramConfig returns the program config and its address.
//
// bounty.ErrProgramConfigNotFound is returned if it hasn't been initialized.
func (e *Engine) GetProgramConfig(ctx context.Context) (*bounty.ProgramConfigAccount, ed25519.PublicKey, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetProgramConfig")
	defer tracer.End()

	address, _, err := bounty.GetProgramConfigAddress()
	if err != nil {
		return nil, nil, err
	}

	unlock := e.accountLocks.RLockAll(address)
	defer unlock()

	_, config, err := e.loadProgramConfig(ctx, address)
	if errors.Is(err, solana.ErrUninitializedAccount) {
		return nil, nil, bounty.ErrProgramConfigNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, nil, err
	}
	return config, address, nil
}

// GetBounty returns the bounty stored at address.
//
// bounty.ErrBountyNotFound is returned if it doesn't exist.
func (e *Engine) GetBounty(ctx context.Context, address ed25519.PublicKey) (*bounty.BountyInfoAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetBounty")
	defer tracer.End()

	unlock := e.accountLocks.RLockAll(address)
	defer unlock()

	_, info, err := e.loadBounty(ctx, address)
	if errors.Is(err, solana.ErrUninitializedAccount) {
		return nil, bounty.ErrBountyNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return info, nil
}

// GetBountiesByOwner returns every bounty owned by a wallet, oldest first.
//
// bounty.ErrBountyNotFound is returned if the wallet owns none.
func (e *Engine) GetBountiesByOwner(ctx context.Context, owner ed25519.PublicKey) ([]bounty.OwnedBounty, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetBountiesByOwner")
	defer tracer.End()

	// Bounty accounts start with their discriminator followed by the owner
	dataPrefix := make([]byte, 0, len(bounty.BountyInfoAccountDiscriminator)+len(owner))
	dataPrefix = append(dataPrefix, bounty.BountyInfoAccountDiscriminator...)
	dataPrefix = append(dataPrefix, owner...)

	records, err := e.data.GetAllAccountsByOwner(ctx, encodeKey(bounty.PROGRAM_ID), dataPrefix)
	if err == account.ErrAccountNotFound {
		return nil, bounty.ErrBountyNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	var res []bounty.OwnedBounty
	for _, record := range records {
		var info bounty.BountyInfoAccount
		if err := info.Unmarshal(record.Data); err != nil {
			e.log.WithError(err).WithField("bounty", record.Address).Warn("skipping malformed bounty account")
			continue
		}
		if !info.Owner.Equal(owner) {
			continue
		}

		address, err := base58.Decode(record.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid account address %s", record.Address)
		}
		res = append(res, bounty.OwnedBounty{
			Address: address,
			Bounty:  &info,
		})
	}

	if len(res) == 0 {
		return nil, bounty.ErrBountyNotFound
	}
	return res, nil
}
