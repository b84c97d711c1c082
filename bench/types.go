package bench

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Behavior flags carried in ConnConfig.ExtraParams.
const (
	ParamServerPrepare = "useServerPrepStmts"
	ParamCachePrepare  = "cachePrepStmts"
)

// RentalQuery looks up one rental with its customer and film.
const RentalQuery = "SELECT r.rental_date, c.first_name, c.last_name, f.title " +
	"FROM rental r " +
	"JOIN customer c ON r.customer_id = c.customer_id " +
	"JOIN inventory i ON r.inventory_id = i.inventory_id " +
	"JOIN film f ON i.film_id = f.film_id " +
	"WHERE r.rental_id = ?"

// ConnConfig is shared by value after resolution. ExtraParams is read-only;
// derive a new config with WithParam instead of writing to it.
type ConnConfig struct {
	URL         string
	Database    string
	User        string
	Password    string
	ExtraParams map[string]string
}

// WithParam returns a copy of c with key set, leaving c untouched.
func (c ConnConfig) WithParam(key, value string) ConnConfig {
	params := make(map[string]string, len(c.ExtraParams)+1)
	for k, v := range c.ExtraParams {
		params[k] = v
	}
	params[key] = value
	c.ExtraParams = params
	return c
}

// ConnString renders <url><database>?<params>. Userinfo embedded in the
// url is dropped so the result is safe to log.
func (c ConnConfig) ConnString() string {
	s := redactURL(c.URL) + c.Database
	if len(c.ExtraParams) == 0 {
		return s
	}
	keys := make([]string, 0, len(c.ExtraParams))
	for k := range c.ExtraParams {
		keys = append(keys, k)
	}
	// server flag first, matching the historical parameter order
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == ParamServerPrepare {
			return true
		}
		if keys[j] == ParamServerPrepare {
			return false
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + c.ExtraParams[k]
	}
	return s + "?" + strings.Join(parts, "&")
}

func redactURL(raw string) string {
	rest, jdbc := strings.CutPrefix(raw, "jdbc:")
	u, err := url.Parse(rest)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	if jdbc {
		return "jdbc:" + u.String()
	}
	return u.String()
}

// ServerPrepare reports whether statements should be prepared on the server.
func (c ConnConfig) ServerPrepare() bool {
	return c.ExtraParams[ParamServerPrepare] == "true"
}

// CachePrepare reports whether prepared statements are reused per query text.
func (c ConnConfig) CachePrepare() bool {
	return c.ExtraParams[ParamCachePrepare] == "true"
}

type BenchParams struct {
	TotalRuns        int
	IterationsPerRun int
	KeySpace         int
	Warmup           int // untimed iterations before each run, 0 = none
}

func DefaultParams() BenchParams {
	return BenchParams{
		TotalRuns:        10,
		IterationsPerRun: 20000,
		KeySpace:         16000,
	}
}

func (p BenchParams) Validate() error {
	switch {
	case p.TotalRuns <= 0:
		return fmt.Errorf("runs must be positive, got %d", p.TotalRuns)
	case p.IterationsPerRun <= 0:
		return fmt.Errorf("iterations must be positive, got %d", p.IterationsPerRun)
	case p.KeySpace <= 0:
		return fmt.Errorf("keyspace must be positive, got %d", p.KeySpace)
	case p.Warmup < 0:
		return fmt.Errorf("warmup must not be negative, got %d", p.Warmup)
	}
	return nil
}

type RunResult struct {
	RunIndex      int
	ElapsedMillis int64
}
