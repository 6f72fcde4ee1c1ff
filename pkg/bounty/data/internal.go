package data

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	pg "github.com/code-payments/bounty-server/pkg/database/postgres"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"

	account_memory_client "github.com/code-payments/bounty-server/pkg/bounty/data/account/memory"
	account_postgres_client "github.com/code-payments/bounty-server/pkg/bounty/data/account/postgres"
)

type DatabaseData interface {
	// Accounts
	// --------------------------------------------------------------------------------
	CreateAccount(ctx context.Context, record *account.Record) error
	UpdateAccount(ctx context.Context, record *account.Record) error
	DeleteAccount(ctx context.Context, address string) error
	GetAccount(ctx context.Context, address string) (*account.Record, error)
	GetAllAccountsByOwner(ctx context.Context, owner string, dataPrefix []byte) ([]*account.Record, error)

	// ExecuteInTx executes fn with a single DB transaction that is scoped to the call.
	// Every account change made through the provider within fn is committed or
	// discarded together.
	ExecuteInTx(ctx context.Context, isolation sql.IsolationLevel, fn func(ctx context.Context) error) error
}

type DatabaseProvider struct {
	accounts account.Store

	db *sqlx.DB
}

func NewDatabaseProvider(ctx context.Context, dbConfig *pg.Config) (DatabaseData, error) {
	db, err := pg.Open(ctx, dbConfig)
	if err != nil {
		return nil, err
	}
	return NewDatabaseProviderFromDB(db), nil
}

// NewDatabaseProviderFromDB returns a provider backed by an existing postgres
// connection pool.
func NewDatabaseProviderFromDB(db *sql.DB) DatabaseData {
	return &DatabaseProvider{
		accounts: account_postgres_client.New(db),

		db: sqlx.NewDb(db, "pgx"),
	}
}

func NewTestDatabaseProvider() DatabaseData {
	return &DatabaseProvider{
		accounts: account_memory_client.New(),
	}
}

// ExecuteInTx implements DatabaseData.ExecuteInTx. Postgres transactions that
// fail on serialization are retried from the start, so fn must be safe to run
// more than once.
func (dp *DatabaseProvider) ExecuteInTx(ctx context.Context, isolation sql.IsolationLevel, fn func(ctx context.Context) error) error {
	if dp.db == nil {
		return account_memory_client.ExecuteInTx(ctx, dp.accounts, fn)
	}

	return pg.ExecuteRetryable(ctx, func() error {
		return pg.ExecuteTxWithinCtx(ctx, dp.db, isolation, fn)
	})
}

// Accounts
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) CreateAccount(ctx context.Context, record *account.Record) error {
	return dp.accounts.Create(ctx, record)
}
func (dp *DatabaseProvider) UpdateAccount(ctx context.Context, record *account.Record) error {
	return dp.accounts.Update(ctx, record)
}
func (dp *DatabaseProvider) DeleteAccount(ctx context.Context, address string) error {
	return dp.accounts.Delete(ctx, address)
}
func (dp *DatabaseProvider) GetAccount(ctx context.Context, address string) (*account.Record, error) {
	return dp.accounts.Get(ctx, address)
}
func (dp *DatabaseProvider) GetAllAccountsByOwner(ctx context.Context, owner string, dataPrefix []byte) ([]*account.Record, error) {
	return dp.accounts.GetAllByOwner(ctx, owner, dataPrefix)
}
