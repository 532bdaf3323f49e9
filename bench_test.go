package dbkit

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/georgysavva/scany/sqlscan"
	"github.com/jackc/pgx/v4/pgxpool"
	_ "github.com/lib/pq"

	_ "dbkit/drivers/postgres"
)

// Benchmarks need a postgres with a goods(id, description) table. Set
// DBKIT_TEST_DATABASE (and PGX_TEST_DATABASE / PQ_TEST_DATABASE for the
// comparison runs) to enable them.

type Goods struct {
	ID          int
	Description string
}

const benchSelect = "select id, description from goods where id >= $1 order by id limit 20"

func BenchmarkSelect(b *testing.B) {
	connString := os.Getenv("DBKIT_TEST_DATABASE")
	if connString == "" {
		b.Skip("DBKIT_TEST_DATABASE not set")
	}
	p, err := Start(connString)
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	var arr []Goods
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		async := p.QueryAsync(benchSelect, 10+i%10000)
		if err := async(&arr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSelectPGX(b *testing.B) {
	connString := os.Getenv("PGX_TEST_DATABASE")
	if connString == "" {
		b.Skip("PGX_TEST_DATABASE not set")
	}
	ctx := context.Background()
	db, err := pgxpool.Connect(ctx, connString)
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()

	var arr []Goods
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := pgxscan.Select(ctx, db, &arr, benchSelect, 10+i%10000); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSelectPQ(b *testing.B) {
	connString := os.Getenv("PQ_TEST_DATABASE")
	if connString == "" {
		b.Skip("PQ_TEST_DATABASE not set")
	}
	ctx := context.Background()
	db, err := sql.Open("postgres", connString)
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()

	var arr []Goods
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := sqlscan.Select(ctx, db, &arr, benchSelect, 10+i%10000); err != nil {
			b.Fatal(err)
		}
	}
}
