package bench

import (
	"fmt"
	"io"
)

// Reporter receives one result per completed run.
type Reporter interface {
	Report(RunResult) error
}

type ReporterFunc func(RunResult) error

func (f ReporterFunc) Report(r RunResult) error { return f(r) }

// LinePrinter writes "<n>번 실행시간: <ms>ms" lines.
type LinePrinter struct {
	W io.Writer
}

func (p LinePrinter) Report(r RunResult) error {
	_, err := fmt.Fprintln(p.W, FmtRun(r))
	return err
}

func FmtRun(r RunResult) string {
	return fmt.Sprintf("%d번 실행시간: %dms", r.RunIndex, r.ElapsedMillis)
}
