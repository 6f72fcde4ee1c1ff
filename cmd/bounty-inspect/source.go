package main

import (
	"context"
	"crypto/ed25519"

	"github.com/jonboulle/clockwork"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/bounty-server/pkg/bounty/data"
	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
	"github.com/code-payments/bounty-server/pkg/bounty/engine"
	"github.com/code-payments/bounty-server/pkg/bounty/runtime"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
)

var errAccountNotFound = errors.New("account not found")

// source is where program state is read from
type source interface {
	GetProgramConfig(ctx context.Context) (*bounty.ProgramConfigAccount, ed25519.PublicKey, error)
	GetBounty(ctx context.Context, address ed25519.PublicKey) (*bounty.BountyInfoAccount, error)
	GetBountiesByOwner(ctx context.Context, owner ed25519.PublicKey) ([]bounty.OwnedBounty, error)

	// GetAccount returns the raw data and owning program of any account
	GetAccount(ctx context.Context, address ed25519.PublicKey) ([]byte, ed25519.PublicKey, error)
}

type rpcSource struct {
	sc         solana.Client
	client     *bounty.Client
	commitment solana.Commitment
}

func newRPCSource(endpoint string, commitment solana.Commitment) source {
	sc := solana.New(endpoint)
	return &rpcSource{
		sc:         sc,
		client:     bounty.NewClient(sc, commitment),
		commitment: commitment,
	}
}

func (s *rpcSource) GetProgramConfig(_ context.Context) (*bounty.ProgramConfigAccount, ed25519.PublicKey, error) {
	return s.client.GetProgramConfig()
}

func (s *rpcSource) GetBounty(_ context.Context, address ed25519.PublicKey) (*bounty.BountyInfoAccount, error) {
	return s.client.GetBounty(address)
}

func (s *rpcSource) GetBountiesByOwner(_ context.Context, owner ed25519.PublicKey) ([]bounty.OwnedBounty, error) {
	owned, _, err := s.client.GetBountiesByOwner(owner)
	if err != nil {
		return nil, err
	}
	if len(owned) == 0 {
		return nil, bounty.ErrBountyNotFound
	}
	return owned, nil
}

func (s *rpcSource) GetAccount(_ context.Context, address ed25519.PublicKey) ([]byte, ed25519.PublicKey, error) {
	info, err := s.sc.GetAccountInfo(address, s.commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, nil, errAccountNotFound
	} else if err != nil {
		return nil, nil, err
	}
	return info.Data, info.Owner, nil
}

// postgresSource reads the account store of a locally hosted program
type postgresSource struct {
	data   data.DatabaseData
	engine *engine.Engine
}

func newPostgresSource(ctx context.Context) (source, error) {
	db, err := data.NewDatabaseProvider(ctx, data.WithEnvConfigs().PostgresConfig(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to postgres")
	}

	return &postgresSource{
		data:   db,
		engine: engine.New(db, runtime.New(db), clockwork.NewRealClock(), engine.WithEnvConfigs()),
	}, nil
}

func (s *postgresSource) GetProgramConfig(ctx context.Context) (*bounty.ProgramConfigAccount, ed25519.PublicKey, error) {
	return s.engine.GetProgramConfig(ctx)
}

func (s *postgresSource) GetBounty(ctx context.Context, address ed25519.PublicKey) (*bounty.BountyInfoAccount, error) {
	return s.engine.GetBounty(ctx, address)
}

func (s *postgresSource) GetBountiesByOwner(ctx context.Context, owner ed25519.PublicKey) ([]bounty.OwnedBounty, error) {
	return s.engine.GetBountiesByOwner(ctx, owner)
}

func (s *postgresSource) GetAccount(ctx context.Context, address ed25519.PublicKey) ([]byte, ed25519.PublicKey, error) {
	record, err := s.data.GetAccount(ctx, base58.Encode(address))
	if err == account.ErrAccountNotFound {
		return nil, nil, errAccountNotFound
	} else if err != nil {
		return nil, nil, err
	}

	owner, err := base58.Decode(record.Owner)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "invalid owner %s", record.Owner)
	}
	return record.Data, owner, nil
}
