package gitmetrics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for block and time parsing.
var (
	// ErrInvalidTime is returned when a time string cannot be parsed.
	ErrInvalidTime = errors.New("cannot parse time")
	// ErrInvalidBlock is returned when a block has no ID or ends before it starts.
	ErrInvalidBlock = errors.New("invalid block")
)

// ParseTime parses a time string in various formats:
// - Duration before now (e.g. "168h")
// - RFC3339 (e.g. "2024-01-01T00:00:00Z")
// - Date only (e.g. "2024-01-01"), taken as midnight UTC.
func ParseTime(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)

	d, durationErr := time.ParseDuration(value)
	if durationErr == nil {
		return now.Add(-d), nil
	}

	parsed, rfc3339Err := time.Parse(time.RFC3339, value)
	if rfc3339Err == nil {
		return parsed, nil
	}

	parsed, dateOnlyErr := time.Parse(time.DateOnly, value)
	if dateOnlyErr == nil {
		return parsed, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
}

// ParseBlock builds a Block from textual bounds. An empty end leaves the
// block open.
func ParseBlock(id, start, end string, now time.Time) (Block, error) {
	if strings.TrimSpace(id) == "" {
		return Block{}, fmt.Errorf("%w: empty block id", ErrInvalidBlock)
	}

	startTime, err := ParseTime(start, now)
	if err != nil {
		return Block{}, fmt.Errorf("block start: %w", err)
	}

	block := Block{ID: id, StartDate: startTime}

	if strings.TrimSpace(end) == "" {
		return block, nil
	}

	endTime, err := ParseTime(end, now)
	if err != nil {
		return Block{}, fmt.Errorf("block end: %w", err)
	}

	if !endTime.After(startTime) {
		return Block{}, fmt.Errorf("%w: end %s is not after start %s",
			ErrInvalidBlock, endTime.Format(time.RFC3339), startTime.Format(time.RFC3339))
	}

	block.EndDate = &endTime
	block.ExpectedDuration = endTime.Sub(startTime)

	return block, nil
}
