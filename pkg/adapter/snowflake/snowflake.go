// Package snowflake provides the Snowflake warehouse adapter. Importing it
// registers the adapter:
//
//	import _ "github.com/robfreedy/dbtprofiles/pkg/adapter/snowflake"
package snowflake

import (
	"context"
	"database/sql"

	"github.com/snowflakedb/gosnowflake"

	"github.com/robfreedy/dbtprofiles/pkg/adapter"
	"github.com/robfreedy/dbtprofiles/pkg/configs"
	"github.com/robfreedy/dbtprofiles/pkg/dbterrors"
	"github.com/robfreedy/dbtprofiles/pkg/secret"
)

// Name is the adapter identifier used in target configs.
const Name = "snowflake"

func init() {
	adapter.MustRegister(Name, New)
}

// Credentials holds Snowflake connection parameters. Role is optional and
// omitted from the flattened output when unset.
type Credentials struct {
	Adapter   string        `yaml:"adapter"`
	Account   string        `yaml:"account"`
	User      string        `yaml:"user"`
	Password  secret.String `yaml:"password"`
	Database  string        `yaml:"database"`
	Warehouse string        `yaml:"warehouse"`
	Role      string        `yaml:"role"`
}

// New builds snowflake credentials from a raw credentials mapping and
// validates them at construction by deriving a DSN through the driver.
func New(raw map[string]interface{}) (adapter.Credentials, error) {
	c := &Credentials{}
	if err := adapter.DecodeRaw(raw, c); err != nil {
		return nil, err
	}
	c.Adapter = Name

	if c.Account == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "snowflake credentials require an account")
	}
	if c.User == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "snowflake credentials require a user")
	}
	if c.Database == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "snowflake credentials require a database")
	}
	if c.Warehouse == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "snowflake credentials require a warehouse")
	}

	if _, err := c.DSN(); err != nil {
		return nil, err
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
		{Name: "account", Value: c.Account},
		{Name: "user", Value: c.User},
	}
	if c.Password.Reveal() != "" {
		fields = append(fields, configs.Field{Name: "password", Value: c.Password})
	}
	fields = append(fields,
		configs.Field{Name: "database", Value: c.Database},
		configs.Field{Name: "warehouse", Value: c.Warehouse},
	)
	if c.Role != "" {
		fields = append(fields, configs.Field{Name: "role", Value: c.Role})
	}
	return fields
}

// DSN derives the connection string through the snowflake driver.
func (c *Credentials) DSN() (string, error) {
	cfg := &gosnowflake.Config{
		Account:   c.Account,
		User:      c.User,
		Password:  c.Password.Reveal(),
		Database:  c.Database,
		Warehouse: c.Warehouse,
		Role:      c.Role,
	}
	dsn, err := gosnowflake.DSN(cfg)
	if err != nil {
		return "", dbterrors.Wrap(err, dbterrors.ErrorTypeValidation, "invalid snowflake connection parameters").
			WithDetail("account", c.Account)
	}
	return dsn, nil
}

// Ping opens a connection to the warehouse and verifies it answers.
func (c *Credentials) Ping(ctx context.Context) error {
	dsn, err := c.DSN()
	if err != nil {
		return err
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeConnection, "failed to open snowflake connection").
			WithDetail("account", c.Account)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeConnection, "failed to reach snowflake").
			WithDetail("account", c.Account)
	}
	return nil
}
