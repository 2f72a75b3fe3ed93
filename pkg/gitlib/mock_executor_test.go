package gitlib

import (
	"context"
	"strings"
)

// mockExecutor returns canned output keyed by the first git argument and
// records every invocation.
type mockExecutor struct {
	outputs map[string]string
	errs    map[string]error
	calls   [][]string
	dirs    []string
}

func (m *mockExecutor) Run(_ context.Context, dir string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, args)
	m.dirs = append(m.dirs, dir)

	key := strings.Join(args[:min(2, len(args))], " ")

	if err, ok := m.errs[key]; ok {
		return nil, err
	}

	return []byte(m.outputs[key]), nil
}
