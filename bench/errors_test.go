package bench

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		want  string
		check func(error) bool
		not   []func(error) bool
	}{
		{
			name:  "missing keys",
			err:   &ConfigurationError{Source: "jdbc.properties", Missing: []string{"password", "url"}},
			want:  "config jdbc.properties: missing required keys: password, url",
			check: IsConfiguration,
			not:   []func(error) bool{IsConnection, IsQueryExecution},
		},
		{
			name:  "unreadable source",
			err:   &ConfigurationError{Source: "nope.properties", Err: errBoom},
			want:  "config nope.properties: boom",
			check: IsConfiguration,
		},
		{
			name:  "connection",
			err:   &ConnectionError{Driver: "mysql", Err: errBoom},
			want:  "mysql connect: boom",
			check: IsConnection,
			not:   []func(error) bool{IsConfiguration, IsQueryExecution},
		},
		{
			name:  "query",
			err:   &QueryExecutionError{Run: 2, Iteration: 41, TargetID: 42, Op: "query", Err: errBoom},
			want:  "run 2 iteration 41 (rental_id=42): query: boom",
			check: IsQueryExecution,
			not:   []func(error) bool{IsConfiguration, IsConnection},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.err.Error() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, tt.err.Error())
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("Expected wrapped error to keep its kind")
			}
			for _, other := range tt.not {
				if other(wrapped) {
					t.Errorf("error matched an unrelated kind")
				}
			}
		})
	}
}

func TestErrorKinds_Unwrap(t *testing.T) {
	t.Parallel()

	err := &ConnectionError{Driver: "postgres", Err: errBoom}
	if !errors.Is(err, errBoom) {
		t.Error("Expected cause to be reachable through Unwrap")
	}
}
