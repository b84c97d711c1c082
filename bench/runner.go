package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coneno/logger"
)

type State int

const (
	NotStarted State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Runner executes the timed prepare/execute protocol on one connection.
// It never closes Conn; the caller owns it.
type Runner struct {
	Conn   Conn
	Params BenchParams
	Query  string
	Report Reporter

	now   func() time.Time
	state State
	run   int
}

func NewRunner(conn Conn, params BenchParams, report Reporter) *Runner {
	return &Runner{
		Conn:   conn,
		Params: params,
		Query:  RentalQuery,
		Report: report,
		now:    time.Now,
	}
}

// TargetID maps iteration i onto the 1-based cyclic key range [1, keySpace].
func TargetID(i, keySpace int) int {
	return (i % keySpace) + 1
}

func (r *Runner) State() State { return r.state }

// CurrentRun is the 1-based index of the run in progress or last attempted.
func (r *Runner) CurrentRun() int { return r.run }

// Run executes Params.TotalRuns runs and reports each one after it
// completes. The first failure aborts the session; the failing run is not
// reported.
func (r *Runner) Run(ctx context.Context) error {
	if r.state != NotStarted {
		return fmt.Errorf("runner is %s", r.state)
	}
	if r.Conn == nil {
		return errors.New("runner has no connection")
	}
	if err := r.Params.Validate(); err != nil {
		return err
	}
	if r.now == nil {
		r.now = time.Now
	}

	for j := 0; j < r.Params.TotalRuns; j++ {
		r.state = Running
		r.run = j + 1
		logger.Debug.Printf("run %d/%d: %d iterations", r.run, r.Params.TotalRuns, r.Params.IterationsPerRun)

		for w := 0; w < r.Params.Warmup; w++ {
			if err := r.iterate(ctx, w); err != nil {
				r.state = Failed
				return err
			}
		}

		start := r.now()
		for i := 0; i < r.Params.IterationsPerRun; i++ {
			if err := r.iterate(ctx, i); err != nil {
				r.state = Failed
				return err
			}
		}
		elapsed := r.now().Sub(start).Milliseconds()
		if elapsed < 0 {
			elapsed = 0
		}

		if r.Report != nil {
			if err := r.Report.Report(RunResult{RunIndex: r.run, ElapsedMillis: elapsed}); err != nil {
				r.state = Failed
				return fmt.Errorf("report run %d: %w", r.run, err)
			}
		}
	}

	r.state = Completed
	return nil
}

// iterate runs one prepare/bind/execute cycle. Rows and statement are
// released before it returns, whatever the outcome.
func (r *Runner) iterate(ctx context.Context, i int) (err error) {
	id := TargetID(i, r.Params.KeySpace)
	fail := func(op string, cause error) error {
		return &QueryExecutionError{Run: r.run, Iteration: i, TargetID: id, Op: op, Err: cause}
	}

	stmt, err := r.Conn.Prepare(ctx, r.Query)
	if err != nil {
		return fail("prepare", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil && err == nil {
			err = fail("close statement", cerr)
		}
	}()

	rows, err := stmt.Query(ctx, id)
	if err != nil {
		return fail("query", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fail("close rows", cerr)
		}
	}()

	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return fail("rows", err)
	}
	return nil
}
