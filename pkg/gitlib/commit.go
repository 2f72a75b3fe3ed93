package gitlib

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedLog indicates git log output could not be parsed.
var ErrMalformedLog = errors.New("malformed git log output")

// commitFormat emits "<hash>|<strict ISO author date>" per commit.
const commitFormat = "%H|%aI"

// Commit is one commit hash with its author timestamp.
type Commit struct {
	Hash Hash
	When time.Time
}

// Log lists commits selected by opts, newest first.
func (r *Repository) Log(ctx context.Context, opts LogOptions) ([]Commit, error) {
	out, err := r.exec.Run(ctx, r.path, opts.args(commitFormat)...)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	return ParseLog(out)
}

// ParseLog parses output produced with the "%H|%aI" format.
func ParseLog(out []byte) ([]Commit, error) {
	var commits []Commit

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		hash, date, ok := strings.Cut(line, "|")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedLog, line)
		}

		id, hashErr := ParseHash(hash)
		if hashErr != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedLog, line, hashErr)
		}

		when, parseErr := time.Parse(time.RFC3339, date)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedLog, line, parseErr)
		}

		commits = append(commits, Commit{Hash: id, When: when})
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return nil, fmt.Errorf("scan git log: %w", scanErr)
	}

	return commits, nil
}
