package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresConfig(t *testing.T) {
	ctx := context.Background()

	t.Setenv(HostConfigEnvName, "db.internal")
	t.Setenv(PortConfigEnvName, "6432")
	t.Setenv(MaxOpenConnectionsConfigEnvName, "20")

	actual := WithEnvConfigs().PostgresConfig(ctx)
	assert.Equal(t, "db.internal", actual.Host)
	assert.Equal(t, 6432, actual.Port)
	assert.Equal(t, 20, actual.MaxOpenConnections)
	assert.Equal(t, defaultUser, actual.User)
	assert.Equal(t, defaultName, actual.DbName)
	assert.Equal(t, 0, actual.MaxIdleConnections)
}
