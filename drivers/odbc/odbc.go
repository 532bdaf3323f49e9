// Package odbc registers the "odbc" driver: the dbi interface over any
// database exposing an ODBC driver, through alexbrainman/odbc.
//
// Connection strings name either a configured data source
//
//	odbc://user:pass@?dsn=Warehouse
//
// or a full driver connection string via params, e.g.
//
//	driver=odbc odbc_driver='ODBC Driver 18 for SQL Server' server=db.example.com
//
// Unrecognized params pass straight through as KEY=value pairs, since
// ODBC attribute names are backend-specific.
package odbc

import (
	"sort"
	"strings"

	_ "github.com/alexbrainman/odbc"

	"dbkit/bridge"
	"dbkit/dbi"
	"dbkit/dialect"
)

func init() {
	dbi.Register(bridge.New("odbc", "odbc", dialect.ANSI, buildDSN))
}

func buildDSN(config *dbi.Config) (string, error) {
	attrs := make(map[string]string, len(config.Params)+4)

	if dsn, ok := config.Params["dsn"]; ok {
		attrs["DSN"] = dsn
	}
	if drv, ok := config.Params["odbc_driver"]; ok {
		attrs["Driver"] = drv
	}
	if config.Host != "" {
		attrs["Server"] = config.Host
	}
	if config.Database != "" {
		attrs["Database"] = config.Database
	}
	if config.User != "" {
		attrs["UID"] = config.User
	}
	if config.Password != "" {
		attrs["PWD"] = config.Password
	}
	for k, v := range config.Params {
		if k == "dsn" || k == "odbc_driver" {
			continue
		}
		attrs[k] = v
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quoteAttr(attrs[k]))
		b.WriteByte(';')
	}
	return b.String(), nil
}

// quoteAttr wraps values containing ODBC metacharacters in braces, the
// escaping rule ODBC connection strings use.
func quoteAttr(v string) string {
	if !strings.ContainsAny(v, " ;{}=") {
		return v
	}
	return "{" + strings.ReplaceAll(v, "}", "}}") + "}"
}
