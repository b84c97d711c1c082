package pg

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sakila-bench/bench"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Handles reports whether rawURL names a PostgreSQL server.
func Handles(rawURL string) bool {
	s := strings.TrimPrefix(rawURL, "jdbc:")
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// ConnString builds the libpq URL for c, defaulting sslmode to disable.
func ConnString(c bench.ConnConfig) (string, error) {
	u, err := url.Parse(strings.TrimPrefix(c.URL, "jdbc:"))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", c.URL, err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", c.URL)
	}

	u.User = url.UserPassword(c.User, c.Password)
	u.Path = "/" + c.Database
	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Config disables pgx's statement and description caches. Without
// server-side prepare, queries go out over the simple protocol.
func Config(c bench.ConnConfig) (*pgx.ConnConfig, error) {
	connStr, err := ConnString(c)
	if err != nil {
		return nil, err
	}
	cfg, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, err
	}
	cfg.StatementCacheCapacity = 0
	cfg.DescriptionCacheCapacity = 0
	if c.ServerPrepare() {
		cfg.DefaultQueryExecMode = pgx.QueryExecModeExec
	} else {
		cfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	return cfg, nil
}

func Connect(ctx context.Context, c bench.ConnConfig) (*bench.SQLConn, error) {
	cfg, err := Config(c)
	if err != nil {
		return nil, &bench.ConnectionError{Driver: "postgres", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := bench.NewSQLConn(ctx, stdlib.OpenDB(*cfg), c, Rebind)
	if err != nil {
		return nil, &bench.ConnectionError{Driver: "postgres", Err: err}
	}
	return conn, nil
}

// Rebind rewrites ? placeholders as $1, $2, ...
func Rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
