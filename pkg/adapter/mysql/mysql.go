// Package mysql provides the MySQL warehouse adapter. Importing it registers
// the adapter:
//
//	import _ "github.com/robfreedy/dbtprofiles/pkg/adapter/mysql"
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/robfreedy/dbtprofiles/pkg/adapter"
	"github.com/robfreedy/dbtprofiles/pkg/configs"
	"github.com/robfreedy/dbtprofiles/pkg/dbterrors"
	"github.com/robfreedy/dbtprofiles/pkg/secret"
)

// Name is the adapter identifier used in target configs.
const Name = "mysql"

const defaultPort = 3306

func init() {
	adapter.MustRegister(Name, New)
}

// Credentials holds MySQL connection parameters.
type Credentials struct {
	Adapter  string        `yaml:"adapter"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password secret.String `yaml:"password"`
	Database string        `yaml:"database"`
}

// New builds mysql credentials from a raw credentials mapping.
func New(raw map[string]interface{}) (adapter.Credentials, error) {
	c := &Credentials{
		Port: defaultPort,
	}
	if err := adapter.DecodeRaw(raw, c); err != nil {
		return nil, err
	}
	c.Adapter = Name

	if c.Host == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "mysql credentials require a host")
	}
	if c.User == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "mysql credentials require a user")
	}
	if c.Database == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "mysql credentials require a database")
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
	return append(fields, configs.Field{Name: "database", Value: c.Database})
}

// DSN derives the connection string through the mysql driver.
func (c *Credentials) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password.Reveal()
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.DBName = c.Database
	return cfg.FormatDSN()
}

// Ping opens a connection to the database and verifies it answers.
func (c *Credentials) Ping(ctx context.Context) error {
	db, err := sql.Open("mysql", c.DSN())
	if err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeConnection, "failed to open mysql connection").
			WithDetail("host", c.Host).
			WithDetail("database", c.Database)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeConnection, "failed to reach mysql").
			WithDetail("host", c.Host).
			WithDetail("database", c.Database)
	}
	return nil
}
