package adapter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robfreedy/dbtprofiles/pkg/adapter"
	"github.com/robfreedy/dbtprofiles/pkg/configs"
)

func init() {
	// one stub adapter in the global registry for load tests
	adapter.MustRegister("stubwh", stubFactory)
}

func writeTargetFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTargetConfigs(t *testing.T) {
	path := writeTargetFile(t, `
type: stubwh
schema: analytics
threads: 8
extras:
  keepalives_idle: 0
`)

	target, err := adapter.LoadTargetConfigs(path)
	require.NoError(t, err)
	assert.Equal(t, "stubwh", target.Type)
	assert.Equal(t, "analytics", target.Schema)
	assert.Equal(t, 8, target.Threads)
	assert.Equal(t, map[string]interface{}{"keepalives_idle": 0}, target.Extras)
	assert.Nil(t, target.Credentials)
}

func TestLoadTargetConfigsDefaultThreads(t *testing.T) {
	path := writeTargetFile(t, "type: stubwh\nschema: analytics\n")

	target, err := adapter.LoadTargetConfigs(path)
	require.NoError(t, err)
	assert.Equal(t, configs.DefaultThreads, target.Threads)
}

func TestLoadTargetConfigsWithCredentials(t *testing.T) {
	path := writeTargetFile(t, `
type: stubwh
schema: analytics
credentials:
  user: a
`)

	target, err := adapter.LoadTargetConfigs(path)
	require.NoError(t, err)
	require.NotNil(t, target.Credentials)

	flat, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, "a", flat["user"])
}

func TestLoadTargetConfigsUnregisteredAdapter(t *testing.T) {
	path := writeTargetFile(t, `
type: duckdb
schema: main
credentials:
  user: a
`)

	_, err := adapter.LoadTargetConfigs(path)
	var missing *adapter.MissingCapabilityError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "duckdb", missing.Adapter)
}

func TestLoadTargetConfigsRequiresType(t *testing.T) {
	path := writeTargetFile(t, "schema: analytics\n")

	_, err := adapter.LoadTargetConfigs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

func TestDecodeRaw(t *testing.T) {
	var out struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	}
	raw := map[string]interface{}{"host": "db.internal", "port": 5439}
	require.NoError(t, adapter.DecodeRaw(raw, &out))
	assert.Equal(t, "db.internal", out.Host)
	assert.Equal(t, 5439, out.Port)
}
