package bench

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

var errConnClosed = errors.New("connection is closed")

// Conn is the single connection a Runner benchmarks against.
type Conn interface {
	Prepare(ctx context.Context, query string) (Stmt, error)
	Close() error
}

type Stmt interface {
	Query(ctx context.Context, args ...any) (Rows, error)
	Close() error
}

// Rows is satisfied by *sql.Rows.
type Rows interface {
	Next() bool
	Err() error
	Close() error
}

// SQLConn pins one connection of a *sql.DB and applies the statement
// preparation policy from ConnConfig.
type SQLConn struct {
	db            *sql.DB
	conn          *sql.Conn
	serverPrepare bool
	cache         bool
	rebind        func(string) string

	mu     sync.Mutex
	stmts  map[string]*sql.Stmt
	closed bool
}

// NewSQLConn takes ownership of db. On error db is closed.
func NewSQLConn(ctx context.Context, db *sql.DB, cfg ConnConfig, rebind func(string) string) (*SQLConn, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, err
	}
	return &SQLConn{
		db:            db,
		conn:          conn,
		serverPrepare: cfg.ServerPrepare(),
		cache:         cfg.CachePrepare(),
		rebind:        rebind,
		stmts:         make(map[string]*sql.Stmt),
	}, nil
}

func (c *SQLConn) Prepare(ctx context.Context, query string) (Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errConnClosed
	}
	if c.rebind != nil {
		query = c.rebind(query)
	}

	// Client side: the text and args go out together on every execution.
	if !c.serverPrepare {
		return clientStmt{conn: c.conn, query: query}, nil
	}

	if c.cache {
		if s, ok := c.stmts[query]; ok {
			return cachedStmt{s}, nil
		}
	}
	s, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	if c.cache {
		c.stmts[query] = s
		return cachedStmt{s}, nil
	}
	return serverStmt{s}, nil
}

// Close releases cached statements, the pinned connection and the pool.
// Calling it again is a no-op.
func (c *SQLConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	for q, s := range c.stmts {
		errs = append(errs, s.Close())
		delete(c.stmts, q)
	}
	errs = append(errs, c.conn.Close(), c.db.Close())
	return errors.Join(errs...)
}

type clientStmt struct {
	conn  *sql.Conn
	query string
}

func (s clientStmt) Query(ctx context.Context, args ...any) (Rows, error) {
	rows, err := s.conn.QueryContext(ctx, s.query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (clientStmt) Close() error { return nil }

type serverStmt struct {
	s *sql.Stmt
}

func (s serverStmt) Query(ctx context.Context, args ...any) (Rows, error) {
	rows, err := s.s.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s serverStmt) Close() error { return s.s.Close() }

// cachedStmt stays open until the owning SQLConn closes.
type cachedStmt struct {
	s *sql.Stmt
}

func (s cachedStmt) Query(ctx context.Context, args ...any) (Rows, error) {
	return serverStmt(s).Query(ctx, args...)
}

func (cachedStmt) Close() error { return nil }
