// Package bigquery provides the BigQuery warehouse adapter. Importing it
// registers the adapter:
//
//	import _ "github.com/robfreedy/dbtprofiles/pkg/adapter/bigquery"
package bigquery

import (
	"context"
	"os"

	"cloud.google.com/go/bigquery"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/robfreedy/dbtprofiles/pkg/adapter"
	"github.com/robfreedy/dbtprofiles/pkg/configs"
	"github.com/robfreedy/dbtprofiles/pkg/dbterrors"
	"github.com/robfreedy/dbtprofiles/pkg/json"
	"github.com/robfreedy/dbtprofiles/pkg/secret"
)

// Name is the adapter identifier used in target configs.
const Name = "bigquery"

const defaultMethod = "service-account"

func init() {
	adapter.MustRegister(Name, New)
}

// Credentials holds BigQuery connection parameters. Authentication comes
// from a service account keyfile path, an inline keyfile JSON, or, when
// neither is set, application default credentials.
type Credentials struct {
	Adapter     string        `yaml:"adapter"`
	Method      string        `yaml:"method"`
	Project     string        `yaml:"project"`
	Location    string        `yaml:"location"`
	Keyfile     string        `yaml:"keyfile"`
	KeyfileJSON secret.String `yaml:"keyfile_json"`
}

// serviceAccountKey is the subset of a keyfile needed to infer the project.
type serviceAccountKey struct {
	ProjectID string `json:"project_id"`
}

// New builds bigquery credentials from a raw credentials mapping. Keyfile
// material is validated here, at construction, so a bad key fails before any
// profile is rendered.
func New(raw map[string]interface{}) (adapter.Credentials, error) {
	c := &Credentials{
		Method: defaultMethod,
	}
	if err := adapter.DecodeRaw(raw, c); err != nil {
		return nil, err
	}
	c.Adapter = Name

	keyData, err := c.keyfileData()
	if err != nil {
		return nil, err
	}
	if keyData != nil {
		if !json.Valid(keyData) {
			return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "service account keyfile is not valid JSON").
				WithDetail("keyfile", c.Keyfile)
		}
		if _, err := google.JWTConfigFromJSON(keyData, bigquery.Scope); err != nil {
			return nil, dbterrors.Wrap(err, dbterrors.ErrorTypeValidation, "invalid service account keyfile").
				WithDetail("keyfile", c.Keyfile)
		}
		if c.Project == "" {
			var key serviceAccountKey
			if err := json.Unmarshal(keyData, &key); err == nil {
				c.Project = key.ProjectID
			}
		}
	}

	if c.Project == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation,
			"bigquery credentials require a project, either declared or carried by the keyfile")
	}

	return c, nil
}

// FieldSchema excludes the adapter discriminator; everything else flattens.
func (c *Credentials) FieldSchema() configs.FieldSchema {
	return configs.FieldSchema{
		Exclude: []string{"adapter"},
	}
}

// ConfigFields returns the credentials fields in declaration order. Optional
// fields left empty are not carried, so they never reach the output.
func (c *Credentials) ConfigFields() []configs.Field {
	fields := []configs.Field{
		{Name: "adapter", Value: c.Adapter},
		{Name: "method", Value: c.Method},
		{Name: "project", Value: c.Project},
	}
	if c.Location != "" {
		fields = append(fields, configs.Field{Name: "location", Value: c.Location})
	}
	if c.Keyfile != "" {
		fields = append(fields, configs.Field{Name: "keyfile", Value: c.Keyfile})
	}
	if c.KeyfileJSON.Reveal() != "" {
		fields = append(fields, configs.Field{Name: "keyfile_json", Value: c.KeyfileJSON})
	}
	return fields
}

// ClientOptions returns the client options matching the configured
// authentication method.
func (c *Credentials) ClientOptions() []option.ClientOption {
	if inline := c.KeyfileJSON.Reveal(); inline != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(inline))}
	}
	if c.Keyfile != "" {
		return []option.ClientOption{option.WithCredentialsFile(c.Keyfile)}
	}
	return nil
}

// Ping creates a client and runs a trivial query to verify both the
// credentials and the project.
func (c *Credentials) Ping(ctx context.Context) error {
	client, err := bigquery.NewClient(ctx, c.Project, c.ClientOptions()...)
	if err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeConnection, "failed to create bigquery client").
			WithDetail("project", c.Project)
	}
	defer func() { _ = client.Close() }()

	q := client.Query("SELECT 1")
	if c.Location != "" {
		q.Location = c.Location
	}
	if _, err := q.Read(ctx); err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeConnection, "failed to reach bigquery").
			WithDetail("project", c.Project)
	}
	return nil
}

// keyfileData returns the keyfile contents from whichever source is
// configured, or nil when relying on application default credentials.
func (c *Credentials) keyfileData() ([]byte, error) {
	if inline := c.KeyfileJSON.Reveal(); inline != "" {
		return []byte(inline), nil
	}
	if c.Keyfile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.Keyfile) //nolint:gosec // G304: path comes from the credentials file
	if err != nil {
		return nil, dbterrors.Wrap(err, dbterrors.ErrorTypeFile, "failed to read service account keyfile").
			WithDetail("keyfile", c.Keyfile)
	}
	return data, nil
}
