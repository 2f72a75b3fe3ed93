package gitlib

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	// numstatCommitPrefix introduces each commit header in NumStat output.
	numstatCommitPrefix = "commit "
	numstatFormat       = numstatCommitPrefix + "%H"

	// binaryMarker replaces line counts for binary files.
	binaryMarker = "-"

	renameArrow = " => "
)

// FileStat is one numstat row: lines added and removed in one file by one commit.
type FileStat struct {
	Hash    Hash
	Path    string
	Added   int
	Removed int
}

// NumStat lists per-file line deltas for the commits selected by opts.
func (r *Repository) NumStat(ctx context.Context, opts LogOptions) ([]FileStat, error) {
	out, err := r.exec.Run(ctx, r.path, opts.args(numstatFormat, "--numstat")...)
	if err != nil {
		return nil, fmt.Errorf("list numstat: %w", err)
	}

	return ParseNumStat(out)
}

// ParseNumStat parses "git log --numstat --format='commit %H'" output.
// Binary files count zero lines. Renamed paths resolve to the new name.
func ParseNumStat(out []byte) ([]FileStat, error) {
	var (
		stats   []FileStat
		current Hash
	)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if hash, ok := strings.CutPrefix(line, numstatCommitPrefix); ok {
			id, hashErr := ParseHash(hash)
			if hashErr != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrMalformedLog, line, hashErr)
			}

			current = id

			continue
		}

		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedLog, line)
		}

		added, addErr := parseCount(fields[0])
		if addErr != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedLog, line, addErr)
		}

		removed, removeErr := parseCount(fields[1])
		if removeErr != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedLog, line, removeErr)
		}

		stats = append(stats, FileStat{
			Hash:    current,
			Path:    RenameTarget(fields[2]),
			Added:   added,
			Removed: removed,
		})
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return nil, fmt.Errorf("scan git numstat: %w", scanErr)
	}

	return stats, nil
}

func parseCount(field string) (int, error) {
	if field == binaryMarker {
		return 0, nil
	}

	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}

	return n, nil
}

// RenameTarget resolves numstat rename notation to the destination path:
// "old => new" becomes "new" and "dir/{a => b}/f" becomes "dir/b/f".
func RenameTarget(p string) string {
	open := strings.Index(p, "{")
	closing := strings.LastIndex(p, "}")

	if open >= 0 && closing > open {
		inner := p[open+1 : closing]
		if _, dst, ok := strings.Cut(inner, renameArrow); ok {
			joined := p[:open] + dst + p[closing+1:]

			return strings.ReplaceAll(joined, "//", "/")
		}
	}

	if _, dst, ok := strings.Cut(p, renameArrow); ok {
		return dst
	}

	return p
}
