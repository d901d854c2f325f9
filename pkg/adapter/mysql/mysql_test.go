package mysql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robfreedy/dbtprofiles/pkg/adapter"
	"github.com/robfreedy/dbtprofiles/pkg/adapter/mysql"
	"github.com/robfreedy/dbtprofiles/pkg/configs"
)

func TestNewAppliesDefaults(t *testing.T) {
	creds, err := mysql.New(map[string]interface{}{
		"host":     "db.internal",
		"user":     "dbt",
		"password": "hunter2",
		"database": "warehouse",
	})
	require.NoError(t, err)
	assert.Equal(t, 3306, creds.(*mysql.Credentials).Port)
}

func TestNewRequiresConnectionFields(t *testing.T) {
	_, err := mysql.New(map[string]interface{}{"user": "dbt", "database": "warehouse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host")

	_, err = mysql.New(map[string]interface{}{"host": "db", "user": "dbt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func TestDSNDerivedThroughDriver(t *testing.T) {
	creds, err := mysql.New(map[string]interface{}{
		"host":     "db.internal",
		"user":     "dbt",
		"password": "hunter2",
		"database": "warehouse",
	})
	require.NoError(t, err)

	dsn := creds.(*mysql.Credentials).DSN()
	assert.Contains(t, dsn, "tcp(db.internal:3306)")
	assert.Contains(t, dsn, "warehouse")
}

func TestFlattenOmitsUnsetPassword(t *testing.T) {
	target, err := adapter.NewTargetConfigs(mysql.Name, "analytics", map[string]interface{}{
		"host":     "db.internal",
		"user":     "dbt",
		"database": "warehouse",
	})
	require.NoError(t, err)

	flat, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.NotContains(t, flat, "password")
}

func TestFlattenTargetWithCredentials(t *testing.T) {
	target, err := adapter.NewTargetConfigs(mysql.Name, "analytics", map[string]interface{}{
		"host":     "db.internal",
		"user":     "dbt",
		"password": "hunter2",
		"database": "warehouse",
	})
	require.NoError(t, err)

	flat, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"type":     "mysql",
		"schema":   "analytics",
		"threads":  4,
		"host":     "db.internal",
		"port":     3306,
		"user":     "dbt",
		"password": "hunter2",
		"database": "warehouse",
	}, flat)
}
