package collector

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
)

// WrapDriver returns a driver that times every statement executed
// through it and records each one into the collector. It is the
// explicit interception point between database/sql and the inspection
// engine; the host registers the wrapped driver under its own name:
//
//	sql.Register("sqlite3-inspected", collector.WrapDriver(&sqlite3.SQLiteDriver{}, col))
func WrapDriver(d driver.Driver, c *Collector) driver.Driver {
	return &wrappedDriver{inner: d, collector: c}
}

// NewConnector ties a wrapped driver to a DSN so the host can use
// sql.OpenDB without registering a global driver name.
func NewConnector(d driver.Driver, dsn string, c *Collector) driver.Connector {
	return &wrappedConnector{
		driver: &wrappedDriver{inner: d, collector: c},
		dsn:    dsn,
	}
}

type wrappedConnector struct {
	driver *wrappedDriver
	dsn    string
}

func (c *wrappedConnector) Connect(context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c *wrappedConnector) Driver() driver.Driver {
	return c.driver
}

type wrappedDriver struct {
	inner     driver.Driver
	collector *Collector
}

func (d *wrappedDriver) Open(name string) (driver.Conn, error) {
	conn, err := d.inner.Open(name)
	if err != nil {
		return nil, err
	}
	return &wrappedConn{inner: conn, collector: d.collector}, nil
}

type wrappedConn struct {
	inner     driver.Conn
	collector *Collector
}

func (c *wrappedConn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.inner.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &wrappedStmt{inner: stmt, query: query, collector: c.collector}, nil
}

func (c *wrappedConn) Close() error {
	return c.inner.Close()
}

func (c *wrappedConn) Begin() (driver.Tx, error) {
	return c.inner.Begin() //nolint:staticcheck // legacy interface passthrough
}

func (c *wrappedConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if tx, ok := c.inner.(driver.ConnBeginTx); ok {
		return tx.BeginTx(ctx, opts)
	}
	return c.inner.Begin() //nolint:staticcheck // legacy interface passthrough
}

func (c *wrappedConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := c.inner.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	start := time.Now()
	res, err := execer.ExecContext(ctx, query, args)
	c.collector.Record(query, time.Since(start))
	return res, err
}

func (c *wrappedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := c.inner.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	start := time.Now()
	rows, err := queryer.QueryContext(ctx, query, args)
	c.collector.Record(query, time.Since(start))
	return rows, err
}

type wrappedStmt struct {
	inner     driver.Stmt
	query     string
	collector *Collector
}

func (s *wrappedStmt) Close() error {
	return s.inner.Close()
}

func (s *wrappedStmt) NumInput() int {
	return s.inner.NumInput()
}

func (s *wrappedStmt) Exec(args []driver.Value) (driver.Result, error) {
	start := time.Now()
	res, err := s.inner.Exec(args) //nolint:staticcheck // legacy interface passthrough
	s.collector.Record(s.query, time.Since(start))
	return res, err
}

func (s *wrappedStmt) Query(args []driver.Value) (driver.Rows, error) {
	start := time.Now()
	rows, err := s.inner.Query(args) //nolint:staticcheck // legacy interface passthrough
	s.collector.Record(s.query, time.Since(start))
	return rows, err
}

func (s *wrappedStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if execer, ok := s.inner.(driver.StmtExecContext); ok {
		start := time.Now()
		res, err := execer.ExecContext(ctx, args)
		s.collector.Record(s.query, time.Since(start))
		return res, err
	}
	values, err := namedValuesToValues(args)
	if err != nil {
		return nil, err
	}
	return s.Exec(values)
}

func (s *wrappedStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if queryer, ok := s.inner.(driver.StmtQueryContext); ok {
		start := time.Now()
		rows, err := queryer.QueryContext(ctx, args)
		s.collector.Record(s.query, time.Since(start))
		return rows, err
	}
	values, err := namedValuesToValues(args)
	if err != nil {
		return nil, err
	}
	return s.Query(values)
}

func namedValuesToValues(named []driver.NamedValue) ([]driver.Value, error) {
	values := make([]driver.Value, len(named))
	for i, nv := range named {
		if nv.Name != "" {
			return nil, errors.Errorf("driver does not support named parameter %q", nv.Name)
		}
		values[i] = nv.Value
	}
	return values, nil
}
