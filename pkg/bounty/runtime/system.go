package runtime

import (
	"context"
	"crypto/ed25519"
	"math"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/system"
)

// GetAccount returns the account stored at address
func (r *Runtime) GetAccount(ctx context.Context, address ed25519.PublicKey) (*account.Record, error) {
	return r.data.GetAccount(ctx, base58.Encode(address))
}

// GetBalance returns the lamports held at address, which is zero for accounts
// that don't exist.
func (r *Runtime) GetBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	record, err := r.GetAccount(ctx, address)
	if err == account.ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return record.Lamports, nil
}

// PutAccountData replaces the data of an existing account
func (r *Runtime) PutAccountData(ctx context.Context, record *account.Record, data []byte) error {
	record.Data = data
	return r.data.UpdateAccount(ctx, record)
}

// CreateAccount allocates size zeroed bytes at address for owner. The payer
// is debited the rent exempt balance, which the new account holds.
func (r *Runtime) CreateAccount(ctx context.Context, payer, address, owner ed25519.PublicKey, size uint64) (*account.Record, error) {
	_, err := r.GetAccount(ctx, address)
	if err == nil {
		return nil, errors.Wrapf(system.ErrorAccountAlreadyInUse, "account %s", base58.Encode(address))
	} else if err != account.ErrAccountNotFound {
		return nil, err
	}

	lamports := solana.RentExemptBalance(size)
	if err := r.debit(ctx, payer, lamports); err != nil {
		return nil, err
	}

	record := &account.Record{
		Address:  base58.Encode(address),
		Owner:    base58.Encode(owner),
		Lamports: lamports,
		Data:     make([]byte, size),
	}
	err = r.data.CreateAccount(ctx, record)
	if err == account.ErrAccountExists {
		return nil, errors.Wrapf(system.ErrorAccountAlreadyInUse, "account %s", base58.Encode(address))
	} else if err != nil {
		return nil, err
	}
	return record, nil
}

// CloseAccount removes the account at address and credits its lamports to
// recipient.
func (r *Runtime) CloseAccount(ctx context.Context, address, recipient ed25519.PublicKey) error {
	record, err := r.GetAccount(ctx, address)
	if err == account.ErrAccountNotFound {
		return errors.Wrapf(solana.ErrUninitializedAccount, "account %s", base58.Encode(address))
	} else if err != nil {
		return err
	}

	if err := r.data.DeleteAccount(ctx, record.Address); err != nil {
		return err
	}
	return r.credit(ctx, recipient, record.Lamports)
}

// Transfer moves lamports between accounts
func (r *Runtime) Transfer(ctx context.Context, from, to ed25519.PublicKey, lamports uint64) error {
	if err := r.debit(ctx, from, lamports); err != nil {
		return err
	}
	return r.credit(ctx, to, lamports)
}

func (r *Runtime) debit(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	record, err := r.GetAccount(ctx, address)
	if err == account.ErrAccountNotFound {
		if lamports == 0 {
			return nil
		}
		return errors.Wrapf(system.ErrorResultWithNegativeLamports, "account %s has no lamports", base58.Encode(address))
	} else if err != nil {
		return err
	}

	if record.Lamports < lamports {
		return errors.Wrapf(system.ErrorResultWithNegativeLamports, "account %s has %d lamports, needs %d", record.Address, record.Lamports, lamports)
	}

	record.Lamports -= lamports
	return r.data.UpdateAccount(ctx, record)
}

// credit adds lamports to an account, creating a system owned account when
// none exists.
func (r *Runtime) credit(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	record, err := r.GetAccount(ctx, address)
	if err == account.ErrAccountNotFound {
		return r.data.CreateAccount(ctx, &account.Record{
			Address:  base58.Encode(address),
			Owner:    base58.Encode(system.ProgramKey),
			Lamports: lamports,
		})
	} else if err != nil {
		return err
	}

	if record.Lamports > math.MaxUint64-lamports {
		return errors.Wrapf(solana.ErrInvalidArgument, "lamport overflow crediting %s", record.Address)
	}

	record.Lamports += lamports
	return r.data.UpdateAccount(ctx, record)
}
