package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
	pgutil "github.com/code-payments/bounty-server/pkg/database/postgres"
)

const (
	tableName = "bounty__core_account"

	allColumns = `id, address, owner, lamports, data, created_at, last_updated_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address string `db:"address"`
	Owner   string `db:"owner"`

	Lamports int64  `db:"lamports"`
	Data     []byte `db:"data"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *account.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	if obj.CreatedAt.IsZero() {
		obj.CreatedAt = time.Now().UTC()
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &model{
		Id:            sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      int64(obj.Lamports),
		Data:          data,
		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *account.Record {
	return &account.Record{
		Id:            uint64(obj.Id.Int64),
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      uint64(obj.Lamports),
		Data:          obj.Data,
		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbCreate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(address, owner, lamports, data, created_at, last_updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			RETURNING ` + allColumns

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Owner,
			m.Lamports,
			m.Data,
			m.CreatedAt,
		).StructScan(m)

		return pgutil.CheckUniqueViolation(err, account.ErrAccountExists)
	})
}

func (m *model) dbUpdate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `UPDATE ` + tableName + `
			SET lamports = $2, data = $3, last_updated_at = $4
			WHERE address = $1
			RETURNING ` + allColumns

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Lamports,
			m.Data,
			time.Now().UTC(),
		).StructScan(m)

		return pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	})
}

func dbDelete(ctx context.Context, db *sqlx.DB, address string) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `DELETE FROM ` + tableName + `
			WHERE address = $1`

		res, err := tx.ExecContext(ctx, query, address)
		if err != nil {
			return err
		}

		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return err
		} else if rowsAffected == 0 {
			return account.ErrAccountNotFound
		}
		return nil
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT ` + allColumns + ` FROM ` + tableName + `
		WHERE address = $1`

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string, dataPrefix []byte) ([]*model, error) {
	var res []*model

	query := `SELECT ` + allColumns + ` FROM ` + tableName + `
		WHERE owner = $1 AND substring(data FROM 1 FOR $3) = $2
		ORDER BY id ASC`

	if dataPrefix == nil {
		dataPrefix = []byte{}
	}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &res, query, owner, dataPrefix, len(dataPrefix))
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}

	if len(res) == 0 {
		return nil, account.ErrAccountNotFound
	}
	return res, nil
}
