package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jfmyers9/albumlog/internal/album"
	"github.com/jfmyers9/albumlog/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Dialect selects how a SQLStore replaces tables.
type Dialect string

const (
	// DialectSQLite replaces tables inside a single transaction; SQLite
	// DDL is transactional.
	DialectSQLite Dialect = "sqlite"

	// DialectMySQL fills <table>_next in a transaction and swaps it in
	// with one RENAME TABLE, because MySQL DDL commits implicitly.
	DialectMySQL Dialect = "mysql"
)

const (
	nextSuffix = "_next"
	prevSuffix = "_prev"
)

// SQLStore writes the tables to a relational database.
type SQLStore struct {
	db      *sqlx.DB
	dialect Dialect
	logger  zerolog.Logger
}

// OpenSQLite opens (or creates) a SQLite database file. Use ":memory:"
// for a private in-memory database.
func OpenSQLite(ctx context.Context, path string, logger zerolog.Logger) (*SQLStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, album.SinkUnavailable("open sqlite", err)
	}

	// One connection keeps :memory: databases consistent across calls
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, album.SinkUnavailable("set pragma", err)
		}
	}

	return NewSQLStore(db, DialectSQLite, logger), nil
}

// OpenMySQL connects to a MySQL server and verifies the connection.
func OpenMySQL(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*SQLStore, error) {
	db, err := sqlx.Open("mysql", MySQLDSN(cfg))
	if err != nil {
		return nil, album.SinkUnavailable("open mysql", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, album.SinkUnavailable("connect mysql "+net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), err)
	}

	return NewSQLStore(db, DialectMySQL, logger), nil
}

// MySQLDSN builds a driver DSN from connection parameters.
func MySQLDSN(cfg config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// NewSQLStore wraps an open database.
func NewSQLStore(db *sqlx.DB, dialect Dialect, logger zerolog.Logger) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With().Str("sink", string(dialect)).Logger(),
	}
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// WriteCurrent replaces the current_album table.
func (s *SQLStore) WriteCurrent(ctx context.Context, current album.CurrentNormalized) error {
	return s.replace(ctx, &current, nil, false)
}

// WriteHistory replaces the albums table.
func (s *SQLStore) WriteHistory(ctx context.Context, rows []album.HistoryRow) error {
	return s.replace(ctx, nil, rows, true)
}

// ReplaceAll replaces both tables as one unit.
func (s *SQLStore) ReplaceAll(ctx context.Context, current album.CurrentNormalized, rows []album.HistoryRow) error {
	return s.replace(ctx, &current, rows, true)
}

func (s *SQLStore) replace(ctx context.Context, current *album.CurrentNormalized, rows []album.HistoryRow, history bool) error {
	var err error
	switch s.dialect {
	case DialectMySQL:
		err = s.replaceByRename(ctx, current, rows, history)
	default:
		err = s.replaceInTx(ctx, current, rows, history)
	}
	if err != nil {
		return err
	}

	ev := s.logger.Debug()
	if current != nil {
		ev = ev.Str("current", current.Name)
	}
	if history {
		ev = ev.Int("rows", len(rows))
	}
	ev.Msg("replaced tables")
	return nil
}

// replaceInTx drops, recreates and fills the tables in one transaction.
func (s *SQLStore) replaceInTx(ctx context.Context, current *album.CurrentNormalized, rows []album.HistoryRow, history bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return album.SinkUnavailable("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if current != nil {
		if err := recreate(ctx, tx, CurrentTable, createCurrentSQL); err != nil {
			return err
		}
		if err := insertCurrent(ctx, tx, CurrentTable, *current); err != nil {
			return err
		}
	}
	if history {
		if err := recreate(ctx, tx, HistoryTable, createHistorySQL); err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, HistoryTable, rows); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return album.SinkUnavailable("commit", err)
	}
	return nil
}

// replaceByRename fills staging tables and swaps them in with a single
// RENAME TABLE statement, which MySQL applies atomically.
func (s *SQLStore) replaceByRename(ctx context.Context, current *album.CurrentNormalized, rows []album.HistoryRow, history bool) error {
	var tables []string

	if current != nil {
		next := CurrentTable + nextSuffix
		if err := recreate(ctx, s.db, next, createCurrentSQL); err != nil {
			return err
		}
		err := s.fill(ctx, func(tx *sqlx.Tx) error { return insertCurrent(ctx, tx, next, *current) })
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, createCurrentSQL(CurrentTable, true)); err != nil {
			return album.SinkUnavailable("create "+CurrentTable, err)
		}
		tables = append(tables, CurrentTable)
	}

	if history {
		next := HistoryTable + nextSuffix
		if err := recreate(ctx, s.db, next, createHistorySQL); err != nil {
			return err
		}
		err := s.fill(ctx, func(tx *sqlx.Tx) error { return insertHistory(ctx, tx, next, rows) })
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, createHistorySQL(HistoryTable, true)); err != nil {
			return album.SinkUnavailable("create "+HistoryTable, err)
		}
		tables = append(tables, HistoryTable)
	}

	var renames []string
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+t+prevSuffix); err != nil {
			return album.SinkUnavailable("drop "+t+prevSuffix, err)
		}
		renames = append(renames, t+" TO "+t+prevSuffix, t+nextSuffix+" TO "+t)
	}
	if _, err := s.db.ExecContext(ctx, "RENAME TABLE "+strings.Join(renames, ", ")); err != nil {
		return album.SinkUnavailable("swap tables", err)
	}
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+t+prevSuffix); err != nil {
			s.logger.Warn().Err(err).Str("table", t+prevSuffix).Msg("failed to drop previous table")
		}
	}
	return nil
}

func (s *SQLStore) fill(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return album.SinkUnavailable("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return album.SinkUnavailable("commit", err)
	}
	return nil
}

func recreate(ctx context.Context, db sqlx.ExecerContext, table string, create func(string, bool) string) error {
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return album.SinkUnavailable("drop "+table, err)
	}
	if _, err := db.ExecContext(ctx, create(table, false)); err != nil {
		return album.SinkUnavailable("create "+table, err)
	}
	return nil
}

func insertCurrent(ctx context.Context, tx *sqlx.Tx, table string, current album.CurrentNormalized) error {
	if _, err := tx.NamedExecContext(ctx, insertCurrentSQL(table), current); err != nil {
		return album.SinkUnavailable("insert "+table, err)
	}
	return nil
}

func insertHistory(ctx context.Context, tx *sqlx.Tx, table string, rows []album.HistoryRow) error {
	stmt, err := tx.PrepareNamedContext(ctx, insertHistorySQL(table))
	if err != nil {
		return album.SinkUnavailable("prepare insert "+table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return album.SinkUnavailable(fmt.Sprintf("insert %s row %d", table, i), err)
		}
	}
	return nil
}

// ReadAll reads both tables back, history in insertion order.
func (s *SQLStore) ReadAll(ctx context.Context) (album.CurrentNormalized, []album.HistoryRow, error) {
	for _, t := range []string{CurrentTable, HistoryTable} {
		ok, err := s.tableExists(ctx, t)
		if err != nil {
			return album.CurrentNormalized{}, nil, err
		}
		if !ok {
			return album.CurrentNormalized{}, nil, ErrNoData
		}
	}

	var current album.CurrentNormalized
	err := s.db.GetContext(ctx, &current, "SELECT "+currentColumns+" FROM "+CurrentTable+" LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return album.CurrentNormalized{}, nil, ErrNoData
	}
	if err != nil {
		return album.CurrentNormalized{}, nil, album.SinkUnavailable("read "+CurrentTable, err)
	}

	query := "SELECT " + historyColumns + " FROM " + HistoryTable
	if s.dialect == DialectSQLite {
		query += " ORDER BY rowid"
	}
	rows := []album.HistoryRow{}
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return album.CurrentNormalized{}, nil, album.SinkUnavailable("read "+HistoryTable, err)
	}

	return current, rows, nil
}

func (s *SQLStore) tableExists(ctx context.Context, table string) (bool, error) {
	var query string
	switch s.dialect {
	case DialectMySQL:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	default:
		query = "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
	}

	var n int
	if err := s.db.GetContext(ctx, &n, query, table); err != nil {
		return false, album.SinkUnavailable("inspect schema", err)
	}
	return n > 0, nil
}
