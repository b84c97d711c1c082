package bench

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is matched by every ConfigurationError
	ErrConfiguration = errors.New("configuration error")

	// ErrConnection is matched by every ConnectionError
	ErrConnection = errors.New("connection error")

	// ErrQueryExecution is matched by every QueryExecutionError
	ErrQueryExecution = errors.New("query execution error")
)

// ConfigurationError is returned when the configuration source cannot be
// read or lacks required keys.
type ConfigurationError struct {
	Source  string
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("config %s: missing required keys: %s", e.Source, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("config %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error        { return e.Err }
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ConnectionError is returned when the database connection cannot be
// established.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connect: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error        { return e.Err }
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// QueryExecutionError aborts a benchmark session.
type QueryExecutionError struct {
	Run       int // 1-based
	Iteration int // 0-based
	TargetID  int
	Op        string // "prepare", "query" or "rows"
	Err       error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("run %d iteration %d (rental_id=%d): %s: %v", e.Run, e.Iteration, e.TargetID, e.Op, e.Err)
}

func (e *QueryExecutionError) Unwrap() error        { return e.Err }
func (e *QueryExecutionError) Is(target error) bool { return target == ErrQueryExecution }

func IsConfiguration(err error) bool  { return errors.Is(err, ErrConfiguration) }
func IsConnection(err error) bool     { return errors.Is(err, ErrConnection) }
func IsQueryExecution(err error) bool { return errors.Is(err, ErrQueryExecution) }
