package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
)

type store struct {
	db *sqlx.DB
}

func New(db *sql.DB) account.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Create implements account.Store.Create
func (s *store) Create(ctx context.Context, record *account.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	err = m.dbCreate(ctx, s.db)
	if err != nil {
		return err
	}

	res := fromModel(m)
	res.CopyTo(record)

	return nil
}

// Update implements account.Store.Update
func (s *store) Update(ctx context.Context, record *account.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	err = m.dbUpdate(ctx, s.db)
	if err != nil {
		return err
	}

	res := fromModel(m)
	res.CopyTo(record)

	return nil
}

// Delete implements account.Store.Delete
func (s *store) Delete(ctx context.Context, address string) error {
	return dbDelete(ctx, s.db, address)
}

// Get implements account.Store.Get
func (s *store) Get(ctx context.Context, address string) (*account.Record, error) {
	m, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromModel(m), nil
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string, dataPrefix []byte) ([]*account.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner, dataPrefix)
	if err != nil {
		return nil, err
	}

	res := make([]*account.Record, len(models))
	for i, m := range models {
		res[i] = fromModel(m)
	}
	return res, nil
}
