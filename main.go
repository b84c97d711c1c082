package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"sakila-bench/bench"
	"sakila-bench/config"
	"sakila-bench/my"
	"sakila-bench/pg"

	"github.com/coneno/logger"
	"github.com/google/uuid"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := flag.NewFlagSet("sakila-bench", flag.ExitOnError)

	defaults := bench.DefaultParams()
	runs := cmd.Int("runs", defaults.TotalRuns, "Number of timed runs")
	iterations := cmd.Int("iterations", defaults.IterationsPerRun, "Prepare/execute cycles per run")
	keySpace := cmd.Int("keyspace", defaults.KeySpace, "rental_id values cycle through 1..keyspace")
	warmup := cmd.Int("warmup", defaults.Warmup, "Untimed iterations before each run")
	logLevel := cmd.String("log-level", "info", "Log level: debug, info, warning, error")

	cmd.Parse(args)
	logger.SetLevel(parseLogLevel(*logLevel))
	logToStderr()

	if cmd.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sakila-bench [flags] <properties-file>")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "The properties file must define:")
		fmt.Fprintln(os.Stderr, "  user, password, url, database")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Optional keys:")
		fmt.Fprintln(os.Stderr, "  useServerPrepStmts   Prepare statements on the server (default: false)")
		fmt.Fprintln(os.Stderr, "  cachePrepStmts       Reuse prepared statements per query (default: false)")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Flags:")
		cmd.PrintDefaults()
		return 1
	}

	params := bench.BenchParams{
		TotalRuns:        *runs,
		IterationsPerRun: *iterations,
		KeySpace:         *keySpace,
		Warmup:           *warmup,
	}
	if err := params.Validate(); err != nil {
		logger.Error.Printf("invalid parameters: %v", err)
		return 1
	}

	cfg, err := config.Resolve(config.LoadProperties, cmd.Arg(0))
	if err != nil {
		logger.Error.Printf("%v", err)
		return 1
	}

	session := uuid.New()
	ctx := context.Background()

	logger.Info.Printf("session %s: connecting to %s", session, cfg.ConnString())
	conn, err := connectFn(ctx, cfg)
	if err != nil {
		logger.Error.Printf("session %s: %v", session, err)
		return 1
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warning.Printf("session %s: close connection: %v", session, err)
		}
	}()

	logger.Info.Printf("session %s: %d runs x %d iterations, keyspace %d", session,
		params.TotalRuns, params.IterationsPerRun, params.KeySpace)

	runner := bench.NewRunner(conn, params, bench.LinePrinter{W: os.Stdout})
	if err := runner.Run(ctx); err != nil {
		logger.Error.Printf("session %s: %v", session, err)
		return 1
	}

	logger.Info.Printf("session %s: %s", session, runner.State())
	return 0
}

// connectFn is replaced in tests.
var connectFn = connect

// connect picks the driver from the url scheme.
func connect(ctx context.Context, cfg bench.ConnConfig) (bench.Conn, error) {
	var (
		conn *bench.SQLConn
		err  error
	)
	switch {
	case my.Handles(cfg.URL):
		conn, err = my.Connect(ctx, cfg)
	case pg.Handles(cfg.URL):
		conn, err = pg.Connect(ctx, cfg)
	default:
		err = &bench.ConnectionError{Driver: "unknown", Err: fmt.Errorf("no driver for url %q", cfg.URL)}
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// logToStderr keeps stdout for run lines. Loggers silenced by SetLevel
// are left alone.
func logToStderr() {
	for _, l := range []*log.Logger{logger.Debug, logger.Info, logger.Warning, logger.Error} {
		if l.Writer() == io.Writer(os.Stdout) {
			l.SetOutput(os.Stderr)
		}
	}
}

func parseLogLevel(s string) logger.LogLevel {
	switch s {
	case "debug":
		return logger.LEVEL_DEBUG
	case "warning":
		return logger.LEVEL_WARNING
	case "error":
		return logger.LEVEL_ERROR
	default:
		return logger.LEVEL_INFO
	}
}
