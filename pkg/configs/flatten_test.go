package configs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robfreedy/dbtprofiles/pkg/configs"
	"github.com/robfreedy/dbtprofiles/pkg/secret"
)

// stubCredentials is a minimal nested config object for exercising the
// flattener without pulling in a real adapter.
type stubCredentials struct {
	fields []configs.Field
}

func (s stubCredentials) FieldSchema() configs.FieldSchema {
	return configs.FieldSchema{Exclude: []string{"adapter"}}
}

func (s stubCredentials) ConfigFields() []configs.Field {
	return s.fields
}

func TestFlattenTargetConfigs(t *testing.T) {
	target := configs.NewTargetConfigs("postgres", "public")

	got, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"type":    "postgres",
		"schema":  "public",
		"threads": 4,
	}, got)
}

func TestFlattenMergesExtras(t *testing.T) {
	target := configs.NewTargetConfigs("snowflake", "analytics")
	target.Extras = map[string]interface{}{
		"account":   "acme",
		"warehouse": "transforming",
	}

	got, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"type":      "snowflake",
		"schema":    "analytics",
		"threads":   4,
		"account":   "acme",
		"warehouse": "transforming",
	}, got)
}

func TestFlattenDuplicateKeyInExtras(t *testing.T) {
	target := configs.NewTargetConfigs("postgres", "public")
	target.Extras = map[string]interface{}{"threads": 8}

	got, err := configs.Flatten(target)
	assert.Nil(t, got)

	var dup *configs.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "threads", dup.Key)
	assert.Contains(t, err.Error(), "threads")
}

func TestFlattenCredentials(t *testing.T) {
	target := configs.NewTargetConfigs("postgres", "s")
	target.Credentials = stubCredentials{fields: []configs.Field{
		{Name: "adapter", Value: "postgres"},
		{Name: "user", Value: "a"},
		{Name: "password", Value: secret.New("p")},
	}}

	got, err := configs.Flatten(target)
	require.NoError(t, err)

	assert.Equal(t, "a", got["user"])
	assert.Equal(t, "p", got["password"])
	assert.Equal(t, "s", got["schema"])
	assert.NotContains(t, got, "credentials")
	// the adapter discriminator is internal metadata and must not leak
	assert.NotContains(t, got, "adapter")
}

func TestFlattenDuplicateKeyAcrossNesting(t *testing.T) {
	target := configs.NewTargetConfigs("postgres", "public")
	target.Credentials = stubCredentials{fields: []configs.Field{
		{Name: "user", Value: "a"},
		{Name: "schema", Value: "other"},
	}}

	got, err := configs.Flatten(target)
	assert.Nil(t, got)

	var dup *configs.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "schema", dup.Key)
}

func TestFlattenSecretsNeverWrapped(t *testing.T) {
	target := configs.NewTargetConfigs("postgres", "public")
	target.Extras = map[string]interface{}{
		"password": secret.New("hunter2"),
		"token":    secret.New([]byte("tok")),
	}

	got, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got["password"])
	assert.Equal(t, []byte("tok"), got["token"])
}

func TestFlattenStripsTrailingUnderscores(t *testing.T) {
	target := configs.NewTargetConfigs("postgres", "public")
	target.Extras = map[string]interface{}{"tags_": "nightly"}

	got, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, "nightly", got["tags"])
	assert.NotContains(t, got, "tags_")
}

func TestFlattenSkipsInternalAndNilKeys(t *testing.T) {
	var absent *int
	target := configs.NewTargetConfigs("postgres", "public")
	target.Extras = map[string]interface{}{
		"_internal": "never",
		"missing":   nil,
		"typednil":  absent,
	}

	got, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"type":    "postgres",
		"schema":  "public",
		"threads": 4,
	}, got)
}

func TestFlattenIdempotent(t *testing.T) {
	target := configs.NewTargetConfigs("postgres", "public")
	target.Extras = map[string]interface{}{"keepalives_idle": 0}

	first, err := configs.Flatten(target)
	require.NoError(t, err)
	second, err := configs.Flatten(target)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFlattenRejectsScalarNestedValue(t *testing.T) {
	target := configs.NewTargetConfigs("postgres", "public")
	target.Credentials = stubCredentials{fields: []configs.Field{
		{Name: "extras", Value: "not-a-mapping"},
	}}

	_, err := configs.Flatten(target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extras")
}

func TestFlattenGlobalConfigsEmpty(t *testing.T) {
	got, err := configs.Flatten(&configs.GlobalConfigs{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFlattenGlobalConfigs(t *testing.T) {
	g := &configs.GlobalConfigs{
		FailFast:     configs.Bool(true),
		PrinterWidth: configs.Int(120),
		LogFormat:    configs.String("json"),
		Extras:       map[string]interface{}{"cache_selected_only": true},
	}

	got, err := configs.Flatten(g)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"fail_fast":           true,
		"printer_width":       120,
		"log_format":          "json",
		"cache_selected_only": true,
	}, got)
}

func TestFlattenDoesNotMutateInput(t *testing.T) {
	target := configs.NewTargetConfigs("postgres", "public")
	target.Extras = map[string]interface{}{"password": secret.New("p")}

	_, err := configs.Flatten(target)
	require.NoError(t, err)

	// the extras map still holds the wrapped secret, not the plaintext
	_, isSecret := secret.Reveal(target.Extras["password"])
	assert.True(t, isSecret)
	assert.Equal(t, 4, target.Threads)
}
