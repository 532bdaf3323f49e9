// Package sqlite registers the "sqlite" driver over the pure-Go
// modernc.org/sqlite backend. The database is the file path from the
// connection string (sqlite:path/to.db); ":memory:" works as usual.
package sqlite

import (
	"errors"

	_ "modernc.org/sqlite"

	"dbkit/bridge"
	"dbkit/dbi"
	"dbkit/dialect"
)

func init() {
	dbi.Register(bridge.New("sqlite", "sqlite", dialect.SQLite, buildDSN))
}

func buildDSN(config *dbi.Config) (string, error) {
	if config.Database == "" {
		return "", errors.New("sqlite: connection string names no database file")
	}
	return config.Database, nil
}
