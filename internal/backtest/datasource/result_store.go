package datasource

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/quantpulse-lab/quantpulse/internal/logger"
	"github.com/quantpulse-lab/quantpulse/internal/types"
	"github.com/quantpulse-lab/quantpulse/pkg/errors"
)

// ResultStore stages a finished run's trades and equity curve in an
// in-memory DuckDB and exports them as Parquet files next to the YAML
// summary. It only ever sees completed results; the engine never writes here.
type ResultStore struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewResultStore creates an in-memory DuckDB result store.
func NewResultStore(log *logger.Logger) (*ResultStore, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	store := &ResultStore{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *ResultStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			run_id TEXT,
			symbol TEXT,
			entry_time TIMESTAMP,
			exit_time TIMESTAMP,
			entry_price DOUBLE,
			exit_price DOUBLE,
			quantity DOUBLE,
			pnl DOUBLE,
			pnl_percent DOUBLE,
			duration_days INTEGER,
			exit_reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestState, "failed to create trades table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS equity_curve (
			run_id TEXT,
			time TIMESTAMP,
			equity DOUBLE,
			drawdown DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestState, "failed to create equity_curve table", err)
	}

	return nil
}

// Append stages a result's trades and equity points keyed by its run ID.
func (s *ResultStore) Append(result types.BacktestResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestState, "failed to begin transaction", err)
	}

	for _, trade := range result.Trades {
		insert := s.sq.
			Insert("trades").
			Columns(
				"id", "run_id", "symbol", "entry_time", "exit_time", "entry_price",
				"exit_price", "quantity", "pnl", "pnl_percent", "duration_days", "exit_reason",
			).
			Values(
				trade.ID, result.RunID, trade.Symbol, trade.EntryTime, trade.ExitTime,
				trade.EntryPrice, trade.ExitPrice, trade.Quantity, trade.PnL,
				trade.PnLPercent, trade.DurationDays, string(trade.ExitReason),
			).
			RunWith(tx)

		if _, err := insert.Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeBacktestState, "failed to insert trade", err)
		}
	}

	for _, point := range result.EquityCurve {
		insert := s.sq.
			Insert("equity_curve").
			Columns("run_id", "time", "equity", "drawdown").
			Values(result.RunID, point.Time, point.Equity, point.Drawdown).
			RunWith(tx)

		if _, err := insert.Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeBacktestState, "failed to insert equity point", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestState, "failed to commit transaction", err)
	}

	return nil
}

// TradeCount returns the number of staged trades.
func (s *ResultStore) TradeCount() (int, error) {
	var count int

	query := s.sq.Select("COUNT(*)").From("trades").RunWith(s.db)
	if err := query.QueryRow().Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count trades", err)
	}

	return count, nil
}

// Write exports the staged trades and equity curve to Parquet files in the
// given directory.
func (s *ResultStore) Write(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create results directory", err)
	}

	tradesPath := filepath.Join(dir, "trades.parquet")
	if _, err := s.db.Exec(fmt.Sprintf(`COPY trades TO '%s' (FORMAT PARQUET)`, tradesPath)); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to export trades to Parquet", err)
	}

	equityPath := filepath.Join(dir, "equity_curve.parquet")
	if _, err := s.db.Exec(fmt.Sprintf(`COPY equity_curve TO '%s' (FORMAT PARQUET)`, equityPath)); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to export equity curve to Parquet", err)
	}

	s.log.Info("Exported backtest results to Parquet files",
		zap.String("trades", tradesPath),
		zap.String("equity_curve", equityPath),
	)

	return nil
}

// Close releases the underlying database.
func (s *ResultStore) Close() error {
	return s.db.Close()
}
