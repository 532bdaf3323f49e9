package dialect

// SQLite differs from ANSI only in its catalog queries.
var SQLite Dialect = sqlite{}

type sqlite struct {
	ansi
}

func (sqlite) Name() string { return "sqlite" }

func (sqlite) TablesSQL() string {
	return "select name from sqlite_master where type = 'table' and name not like 'sqlite_%' order by name"
}

func (sqlite) ExistsTableSQL() string {
	return "select exists (select 1 from sqlite_master where type = 'table' and name = ?)"
}
