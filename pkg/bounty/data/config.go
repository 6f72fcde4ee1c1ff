package data

import (
	"context"

	"github.com/code-payments/bounty-server/pkg/config"
	"github.com/code-payments/bounty-server/pkg/config/env"
	pg "github.com/code-payments/bounty-server/pkg/database/postgres"
)

const (
	envConfigPrefix = "BOUNTY_DB_"

	UserConfigEnvName = envConfigPrefix + "USER"
	defaultUser       = "postgres"

	PasswordConfigEnvName = envConfigPrefix + "PASSWORD"
	defaultPassword       = ""

	HostConfigEnvName = envConfigPrefix + "HOST"
	defaultHost       = "localhost"

	PortConfigEnvName = envConfigPrefix + "PORT"
	defaultPort       = 5432

	NameConfigEnvName = envConfigPrefix + "NAME"
	defaultName       = "bounty"

	MaxOpenConnectionsConfigEnvName = envConfigPrefix + "MAX_OPEN_CONNECTIONS"
	defaultMaxOpenConnections       = 0

	MaxIdleConnectionsConfigEnvName = envConfigPrefix + "MAX_IDLE_CONNECTIONS"
	defaultMaxIdleConnections       = 0
)

type conf struct {
	user               config.String
	password           config.String
	host               config.String
	port               config.Int64
	name               config.String
	maxOpenConnections config.Int64
	maxIdleConnections config.Int64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			user:               env.NewStringConfig(UserConfigEnvName, defaultUser),
			password:           env.NewStringConfig(PasswordConfigEnvName, defaultPassword),
			host:               env.NewStringConfig(HostConfigEnvName, defaultHost),
			port:               env.NewInt64Config(PortConfigEnvName, defaultPort),
			name:               env.NewStringConfig(NameConfigEnvName, defaultName),
			maxOpenConnections: env.NewInt64Config(MaxOpenConnectionsConfigEnvName, defaultMaxOpenConnections),
			maxIdleConnections: env.NewInt64Config(MaxIdleConnectionsConfigEnvName, defaultMaxIdleConnections),
		}
	}
}

// PostgresConfig resolves the connection settings for the database provider
func (p ConfigProvider) PostgresConfig(ctx context.Context) *pg.Config {
	c := p()
	return &pg.Config{
		User:               c.user.Get(ctx),
		Password:           c.password.Get(ctx),
		Host:               c.host.Get(ctx),
		Port:               int(c.port.Get(ctx)),
		DbName:             c.name.Get(ctx),
		MaxOpenConnections: int(c.maxOpenConnections.Get(ctx)),
		MaxIdleConnections: int(c.maxIdleConnections.Get(ctx)),
	}
}
