// Package sqldb is a small sqlite-backed key/value store opened
// through the instrumented driver, giving the inspection engine real
// query traffic to report on.
package sqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"path"

	"github.com/queryinspect/queryinspect/component/collector"

	"github.com/mattn/go-sqlite3"
)

// SQLDB stores key/value entries in sqlite. Every statement it issues
// goes through the collector-wrapped driver.
type SQLDB struct {
	db *sql.DB

	getStmt *sql.Stmt
	setStmt *sql.Stmt
}

// Open opens (or creates) the store under storagePath. Statements are
// recorded into col via the wrapped sqlite driver.
func Open(storagePath string, col *collector.Collector) (*SQLDB, error) {
	dbPath := path.Join(storagePath, "queryinspect.db")
	if storagePath == ":memory:" {
		dbPath = storagePath
	}
	var d driver.Driver = &sqlite3.SQLiteDriver{}
	db := sql.OpenDB(collector.NewConnector(d, dbPath, col))

	s := &SQLDB{db: db}
	var err error
	if err := s.tryInitTables(); err != nil {
		return nil, err
	}

	s.getStmt, err = db.Prepare(`SELECT value FROM kv_entry WHERE key = ?`)
	if err != nil {
		return nil, err
	}
	s.setStmt, err = db.Prepare(`INSERT OR REPLACE INTO kv_entry (key, value) VALUES (?, ?)`)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLDB) tryInitTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv_entry (key TEXT PRIMARY KEY, value TEXT)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLDB) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.getStmt.QueryRowContext(ctx, key).Scan(&value)
	return value, err
}

func (s *SQLDB) Set(ctx context.Context, key, value string) error {
	_, err := s.setStmt.ExecContext(ctx, key, value)
	return err
}

func (s *SQLDB) Close() error {
	_ = s.getStmt.Close()
	_ = s.setStmt.Close()
	return s.db.Close()
}
