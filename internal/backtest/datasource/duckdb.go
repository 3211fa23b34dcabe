// Package datasource loads bar series from data files through an in-memory
// DuckDB instance, and persists run results back out. The engine itself never
// touches this package; data loading and persistence are collaborators around
// the pure simulation loop.
package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantpulse-lab/quantpulse/internal/logger"
	"github.com/quantpulse-lab/quantpulse/internal/types"
	"github.com/quantpulse-lab/quantpulse/pkg/errors"
)

// BarSource reads MarketBar series from CSV or Parquet files via DuckDB.
type BarSource struct {
	db  *sql.DB
	log *logger.Logger
}

// NewBarSource creates an in-memory DuckDB bar source.
func NewBarSource(log *logger.Logger) (*BarSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BarSource{
		db:  db,
		log: log,
	}, nil
}

// Load points the market_data view at the given data file. The reader is
// chosen by file extension: .parquet uses read_parquet, anything else is
// treated as CSV.
func (s *BarSource) Load(path string) error {
	s.log.Debug("Loading market data", zap.String("path", path))

	if _, err := s.db.Exec(`DROP VIEW IF EXISTS market_data;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	reader := "read_csv_auto"
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		reader = "read_parquet"
	}

	// Raw SQL: DuckDB's file readers take the path as a literal.
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT symbol, time, open, high, low, close, volume
		FROM %s('%s');
	`, reader, path)

	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidDataFormat, err, "failed to load market data from %s", path)
	}

	return nil
}

// Count returns the number of bars within the optional time bounds.
func (s *BarSource) Count(start, end optional.Option[time.Time]) (int, error) {
	query, params := boundedQuery("SELECT COUNT(*) FROM market_data", start, end, "")

	var count int
	if err := s.db.QueryRow(query, params...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll returns all bars within the optional time bounds, ordered ascending
// by timestamp.
func (s *BarSource) ReadAll(start, end optional.Option[time.Time]) ([]types.MarketBar, error) {
	query, params := boundedQuery(
		"SELECT symbol, time, open, high, low, close, volume FROM market_data",
		start, end,
		" ORDER BY time ASC",
	)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	var bars []types.MarketBar

	for rows.Next() {
		var bar types.MarketBar

		err := rows.Scan(&bar.Symbol, &bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err)
	}

	return bars, nil
}

// Close releases the underlying database.
func (s *BarSource) Close() error {
	return s.db.Close()
}

// boundedQuery appends optional inclusive time bounds to a base query.
func boundedQuery(base string, start, end optional.Option[time.Time], suffix string) (string, []interface{}) {
	query := base

	var params []interface{}

	paramCount := 0

	if start.IsSome() {
		paramCount++
		query += fmt.Sprintf(" WHERE time >= $%d", paramCount)
		params = append(params, start.Unwrap())
	}

	if end.IsSome() {
		paramCount++
		if paramCount == 1 {
			query += " WHERE"
		} else {
			query += " AND"
		}

		query += fmt.Sprintf(" time <= $%d", paramCount)
		params = append(params, end.Unwrap())
	}

	return query + suffix, params
}
