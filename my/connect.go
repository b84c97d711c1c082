package my

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"sakila-bench/bench"

	"github.com/go-sql-driver/mysql"
)

const defaultPort = "3306"

// Handles reports whether rawURL names a MySQL server.
func Handles(rawURL string) bool {
	s := strings.TrimPrefix(rawURL, "jdbc:")
	return strings.HasPrefix(s, "mysql://") || strings.HasPrefix(s, "tcp(")
}

// Config translates c into a driver config. With server-side prepare off,
// placeholders are interpolated by the driver so nothing is prepared on
// the server.
func Config(c bench.ConnConfig) (*mysql.Config, error) {
	addr, err := address(c.URL)
	if err != nil {
		return nil, err
	}

	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.InterpolateParams = !c.ServerPrepare()
	cfg.Timeout = 30 * time.Second
	return cfg, nil
}

// DSN is the go-sql-driver form of Config(c).
func DSN(c bench.ConnConfig) (string, error) {
	cfg, err := Config(c)
	if err != nil {
		return "", err
	}
	return cfg.FormatDSN(), nil
}

func Connect(ctx context.Context, c bench.ConnConfig) (*bench.SQLConn, error) {
	cfg, err := Config(c)
	if err != nil {
		return nil, &bench.ConnectionError{Driver: "mysql", Err: err}
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, &bench.ConnectionError{Driver: "mysql", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conn, err := bench.NewSQLConn(ctx, sql.OpenDB(connector), c, nil)
	if err != nil {
		return nil, &bench.ConnectionError{Driver: "mysql", Err: err}
	}
	return conn, nil
}

// address accepts jdbc:mysql://host:port/, mysql://host:port/ and tcp(host:port)/.
func address(rawURL string) (string, error) {
	s := strings.TrimPrefix(rawURL, "jdbc:")

	if rest, ok := strings.CutPrefix(s, "tcp("); ok {
		end := strings.IndexByte(rest, ')')
		if end <= 0 {
			return "", fmt.Errorf("malformed address %q", rawURL)
		}
		return withPort(rest[:end]), nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Scheme != "mysql" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return withPort(u.Host), nil
}

func withPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), defaultPort)
}
