package snowflake_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robfreedy/dbtprofiles/pkg/adapter"
	"github.com/robfreedy/dbtprofiles/pkg/adapter/snowflake"
	"github.com/robfreedy/dbtprofiles/pkg/configs"
)

func TestNewRequiresAccountAndUser(t *testing.T) {
	_, err := snowflake.New(map[string]interface{}{"user": "dbt", "password": "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account")

	_, err = snowflake.New(map[string]interface{}{"account": "acme-xy12345", "password": "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")

	_, err = snowflake.New(map[string]interface{}{"account": "acme-xy12345", "user": "dbt", "password": "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func TestDSNDerivedThroughDriver(t *testing.T) {
	creds, err := snowflake.New(map[string]interface{}{
		"account":   "acme-xy12345",
		"user":      "dbt",
		"password":  "hunter2",
		"database":  "analytics",
		"warehouse": "transforming",
	})
	require.NoError(t, err)

	dsn, err := creds.(*snowflake.Credentials).DSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "dbt")
	assert.Contains(t, dsn, "acme-xy12345")
}

func TestFlattenTargetWithCredentials(t *testing.T) {
	target, err := adapter.NewTargetConfigs(snowflake.Name, "analytics", map[string]interface{}{
		"account":   "acme-xy12345",
		"user":      "dbt",
		"password":  "hunter2",
		"database":  "prod",
		"warehouse": "transforming",
	})
	require.NoError(t, err)

	flat, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, "snowflake", flat["type"])
	assert.Equal(t, "analytics", flat["schema"])
	assert.Equal(t, "hunter2", flat["password"])
	assert.Equal(t, "transforming", flat["warehouse"])
	assert.NotContains(t, flat, "adapter")
	// role was never set, so it must not appear
	assert.NotContains(t, flat, "role")
}

func TestFlattenOmitsUnsetPassword(t *testing.T) {
	target, err := adapter.NewTargetConfigs(snowflake.Name, "analytics", map[string]interface{}{
		"account":   "acme-xy12345",
		"user":      "dbt",
		"database":  "prod",
		"warehouse": "transforming",
	})
	require.NoError(t, err)

	flat, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.NotContains(t, flat, "password")
}

func TestFlattenIncludesRoleWhenSet(t *testing.T) {
	creds, err := snowflake.New(map[string]interface{}{
		"account":   "acme-xy12345",
		"user":      "dbt",
		"password":  "hunter2",
		"database":  "prod",
		"warehouse": "transforming",
		"role":      "TRANSFORMER",
	})
	require.NoError(t, err)

	target := configs.NewTargetConfigs(snowflake.Name, "analytics")
	target.Credentials = creds

	flat, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, "TRANSFORMER", flat["role"])
}
