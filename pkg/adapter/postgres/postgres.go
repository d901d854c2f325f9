// Package postgres provides the PostgreSQL warehouse adapter. Importing it
// registers the adapter:
//
//	import _ "github.com/robfreedy/dbtprofiles/pkg/adapter/postgres"
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/robfreedy/dbtprofiles/pkg/adapter"
	"github.com/robfreedy/dbtprofiles/pkg/configs"
	"github.com/robfreedy/dbtprofiles/pkg/dbterrors"
	"github.com/robfreedy/dbtprofiles/pkg/secret"
)

// Name is the adapter identifier used in target configs.
const Name = "postgres"

const (
	defaultPort    = 5432
	defaultSSLMode = "prefer"
)

func init() {
	adapter.MustRegister(Name, New)
}

// Credentials holds PostgreSQL connection parameters.
type Credentials struct {
	Adapter  string        `yaml:"adapter"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password secret.String `yaml:"password"`
	DBName   string        `yaml:"dbname"`
	SSLMode  string        `yaml:"sslmode"`
}

// New builds postgres credentials from a raw credentials mapping, applying
// defaults and validating the connection parameters at construction time.
func New(raw map[string]interface{}) (adapter.Credentials, error) {
	c := &Credentials{
		Port:    defaultPort,
		SSLMode: defaultSSLMode,
	}
	if err := adapter.DecodeRaw(raw, c); err != nil {
		return nil, err
	}
	c.Adapter = Name

	if c.Host == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "postgres credentials require a host")
	}
	if c.User == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "postgres credentials require a user")
	}
	if c.DBName == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "postgres credentials require a dbname")
	}

	if _, err := pgconn.ParseConfig(c.DSN()); err != nil {
		return nil, dbterrors.Wrap(err, dbterrors.ErrorTypeValidation, "invalid postgres connection parameters")
	}

	return c, nil
}

// FieldSchema excludes the adapter discriminator; everything else flattens.
func (c *Credentials) FieldSchema() configs.FieldSchema {
	return configs.FieldSchema{
		Exclude: []string{"adapter"},
	}
}

// ConfigFields returns the credentials fields in declaration order. An unset
// password is not carried, so it never reaches the output as an empty string.
func (c *Credentials) ConfigFields() []configs.Field {
	fields := []configs.Field{
		{Name: "adapter", Value: c.Adapter},
		{Name: "host", Value: c.Host},
		{Name: "port", Value: c.Port},
		{Name: "user", Value: c.User},
	}
	if c.Password.Reveal() != "" {
		fields = append(fields, configs.Field{Name: "password", Value: c.Password})
	}
	return append(fields,
		configs.Field{Name: "dbname", Value: c.DBName},
		configs.Field{Name: "sslmode", Value: c.SSLMode},
	)
}

// DSN returns the connection string in keyword/value form. An unset password
// is left out rather than emitted as an empty keyword.
func (c *Credentials) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.DBName, c.SSLMode,
	)
	if pw := c.Password.Reveal(); pw != "" {
		dsn += " password=" + pw
	}
	return dsn
}

// Ping opens a connection to the database and verifies it answers.
func (c *Credentials) Ping(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, c.DSN())
	if err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeConnection, "failed to connect to postgres").
			WithDetail("host", c.Host).
			WithDetail("dbname", c.DBName)
	}
	defer func() { _ = conn.Close(ctx) }()

	return conn.Ping(ctx)
}
