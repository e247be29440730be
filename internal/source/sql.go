package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/case-dashboard/internal/domain"

	_ "modernc.org/sqlite"
)

// rowScanner is satisfied by *sql.Rows and pgx.Rows
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// Row order columns. The migrated case table has an id; a user supplied
// SQLite table only guarantees rowid.
const (
	orderByID    = "id"
	orderByRowID = "rowid"
)

// selectCasesQuery returns the query reading the four categorical columns
// in source order
func selectCasesQuery(table, orderBy string) string {
	return fmt.Sprintf(
		"SELECT treatment_type, diagnosis, treatment_status, clinician_id FROM %s ORDER BY %s",
		quoteIdentifier(table), orderBy,
	)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// scanCases reads every row; NA tokens stored as text are treated as null
func scanCases(rows rowScanner, decoder *Decoder) ([]domain.CaseRecord, error) {
	records := []domain.CaseRecord{}
	for rows.Next() {
		var cols [4]sql.NullString
		if err := rows.Scan(&cols[0], &cols[1], &cols[2], &cols[3]); err != nil {
			return nil, fmt.Errorf("scanning case row: %w", err)
		}

		var rec domain.CaseRecord
		for i, attr := range domain.Attributes {
			if !cols[i].Valid {
				continue
			}
			value, ok := decoder.Cell(cols[i].String)
			rec.Set(attr, value, ok)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating case rows: %w", err)
	}
	return records, nil
}

// SQLSource reads cases through database/sql
type SQLSource struct {
	db      *sql.DB
	name    string
	table   string
	orderBy string
	decoder *Decoder
}

// NewSQLSource wraps an open database handle. Rows are read in id order.
func NewSQLSource(db *sql.DB, name, table string, decoder *Decoder) *SQLSource {
	if table == "" {
		table = "cases"
	}
	return &SQLSource{db: db, name: name, table: table, orderBy: orderByID, decoder: decoder}
}

// OpenSQLite opens an existing SQLite database file holding the cases table
func OpenSQLite(path, table string, decoder *Decoder) (*SQLSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite database %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	src := NewSQLSource(db, "sqlite:"+path, table, decoder)
	src.orderBy = orderByRowID
	return src, nil
}

// Name implements domain.DataSource
func (s *SQLSource) Name() string {
	return s.name
}

// Load runs the case query
func (s *SQLSource) Load(ctx context.Context) (domain.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, selectCasesQuery(s.table, s.orderBy))
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

// Close releases the database handle
func (s *SQLSource) Close() error {
	return s.db.Close()
}
