package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/case-dashboard/internal/domain"
)

// pgxQuerier is satisfied by *pgxpool.Pool
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads cases from the migrated Postgres table
type PostgresSource struct {
	pool    pgxQuerier
	table   string
	decoder *Decoder
}

// NewPostgresSource creates a source over a pgx pool
func NewPostgresSource(pool pgxQuerier, table string, decoder *Decoder) *PostgresSource {
	if table == "" {
		table = "cases"
	}
	return &PostgresSource{pool: pool, table: table, decoder: decoder}
}

// Name implements domain.DataSource
func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

// Load runs the case query
func (s *PostgresSource) Load(ctx context.Context) (domain.Dataset, error) {
	rows, err := s.pool.Query(ctx, selectCasesQuery(s.table, orderByID))
	if err != nil {
		return domain.Dataset{}, wrapUnavailable(s.Name(), fmt.Errorf("querying cases: %w", err))
	}
	defer rows.Close()

	records, err := scanCases(rows, s.decoder)
	if err != nil {
		return domain.Dataset{}, wrapUnavailable(s.Name(), err)
	}
	return domain.NewDataset(records), nil
}
