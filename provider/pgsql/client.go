package pgsql

import (
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/inkwell-press/inkwell/utils"
)

const ErrEmptyDSN = utils.Error("pgsql: empty DSN")

type ClientConfig struct {
	DSN             string `json:"dsn"`
	MaxOpenConns    int    `json:"maxOpenConns"`
	MaxIdleConns    int    `json:"maxIdleConns"`
	ConnMaxLifetime int    `json:"connMaxLifetime"` // seconds
}

func NewConfig() *ClientConfig {
	return &ClientConfig{
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}
}

func (c *ClientConfig) Validate() error {
	if len(c.DSN) == 0 {
		return ErrEmptyDSN
	}
	return nil
}

// NewClient opens a postgres connection pool via the pgx stdlib driver.
// The connection is lazy; call Ping to verify reachability.
func NewClient(config *ClientConfig) (*sqlx.DB, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("pgx", config.DSN)
	if err != nil {
		return nil, err
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(config.ConnMaxLifetime) * time.Second)
	}
	return db, nil
}
