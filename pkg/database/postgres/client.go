package pg

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"

	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx"
)

const (
	connMaxLifetime = time.Hour
	connMaxIdleTime = time.Hour
	pingTimeout     = 10 * time.Second
)

type Config struct {
	User               string
	Host               string
	Password           string
	Port               int
	DbName             string
	MaxOpenConnections int
	MaxIdleConnections int
}

// DSN returns the connection string for the config. Credentials are escaped.
func (c *Config) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DbName,
		RawQuery: "sslmode=disable",
	}
	return dsn.String()
}

// Open returns a connection pool sized by the config. Queries are traced
// through the New Relic pgx driver.
func Open(ctx context.Context, c *Config) (*sql.DB, error) {
	db, err := sql.Open("nrpgx", c.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "error opening postgres pool")
	}

	if c.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(c.MaxOpenConnections)
	}
	if c.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(c.MaxIdleConnections)
	}
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "error connecting to postgres at %s:%d", c.Host, c.Port)
	}

	return db, nil
}
