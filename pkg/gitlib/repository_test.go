package gitlib

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRepoPath = "/work/app"

func TestRepository_IsWorkTree(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{outputs: map[string]string{"rev-parse --is-inside-work-tree": "true\n"}}
	repo := OpenRepository(testRepoPath, exec)

	require.NoError(t, repo.IsWorkTree(context.Background()))
	assert.Equal(t, []string{testRepoPath}, exec.dirs)
}

func TestRepository_IsWorkTree_Failure(t *testing.T) {
	t.Parallel()

	failure := &GitError{Args: []string{"rev-parse"}, Stderr: "fatal: not a git repository", Err: ErrCommandFailed}
	exec := &mockExecutor{errs: map[string]error{"rev-parse --is-inside-work-tree": failure}}

	err := OpenRepository(testRepoPath, exec).IsWorkTree(context.Background())

	require.ErrorIs(t, err, ErrNotWorkTree)
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestRepository_IsWorkTree_InsideGitDir(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{outputs: map[string]string{"rev-parse --is-inside-work-tree": "false\n"}}

	err := OpenRepository(testRepoPath, exec).IsWorkTree(context.Background())

	assert.ErrorIs(t, err, ErrNotWorkTree)
}

func TestRepository_UserEmail(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{outputs: map[string]string{"config user.email": "dev@example.com\n"}}

	email, err := OpenRepository(testRepoPath, exec).UserEmail(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", email)
}

func TestRepository_UserEmail_Unset(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{errs: map[string]error{
		"config user.email": &GitError{Args: []string{"config"}, Err: ErrCommandFailed},
	}}

	email, err := OpenRepository(testRepoPath, exec).UserEmail(context.Background())

	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestRepository_UserEmail_OtherFailure(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{errs: map[string]error{
		"config user.email": &GitError{Args: []string{"config"}, Stderr: "fatal: bad config line 3", Err: ErrCommandFailed},
	}}

	_, err := OpenRepository(testRepoPath, exec).UserEmail(context.Background())

	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestLogOptions_Args(t *testing.T) {
	t.Parallel()

	after := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	opts := LogOptions{Branch: "main", Author: "dev@example.com", After: after, Before: before}

	assert.Equal(t, []string{
		"log", "main",
		"--after=2024-03-01T00:00:00Z",
		"--before=2024-03-08T00:00:00Z",
		"--numstat",
		"--format=commit %H",
		"--fixed-strings", "--author=dev@example.com",
		"--",
	}, opts.args(numstatFormat, "--numstat"))

	bare := LogOptions{After: after, Before: before}

	assert.Equal(t, []string{
		"log",
		"--after=2024-03-01T00:00:00Z",
		"--before=2024-03-08T00:00:00Z",
		"--format=%H|%aI",
		"--",
	}, bare.args(commitFormat))
}

func TestRepository_Log(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{outputs: map[string]string{
		"log main": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa|2024-03-02T10:00:00+02:00\n" +
			"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb|2024-03-01T09:30:00Z\n",
	}}

	commits, err := OpenRepository(testRepoPath, exec).Log(context.Background(), LogOptions{Branch: "main"})

	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", commits[0].Hash.String())
	assert.True(t, commits[0].When.Equal(time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)))
}

func TestRepository_Log_CommandFailure(t *testing.T) {
	t.Parallel()

	exec := &mockExecutor{errs: map[string]error{
		"log nope": &GitError{Args: []string{"log"}, Stderr: "fatal: bad revision 'nope'", Err: ErrCommandFailed},
	}}

	_, err := OpenRepository(testRepoPath, exec).Log(context.Background(), LogOptions{Branch: "nope"})

	require.ErrorIs(t, err, ErrCommandFailed)

	var gitErr *GitError
	require.True(t, errors.As(err, &gitErr))
	assert.Contains(t, gitErr.Error(), "bad revision")
}

func TestParseLog_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseLog([]byte("no-separator-here\n"))
	require.ErrorIs(t, err, ErrMalformedLog)

	_, err = ParseLog([]byte(testHashA + "|not-a-date\n"))
	require.ErrorIs(t, err, ErrMalformedLog)

	_, err = ParseLog([]byte("abc|2024-03-01T09:30:00Z\n"))
	require.ErrorIs(t, err, ErrInvalidHash)
}

func TestParseLog_SHA256Names(t *testing.T) {
	t.Parallel()

	first := strings.Repeat("c", 40) + strings.Repeat("1", 24)
	second := strings.Repeat("c", 40) + strings.Repeat("2", 24)

	commits, err := ParseLog([]byte(first + "|2024-03-01T09:30:00Z\n" + second + "|2024-03-01T10:30:00Z\n"))
	require.NoError(t, err)

	require.Len(t, commits, 2)
	assert.Equal(t, first, commits[0].Hash.String())
	assert.NotEqual(t, commits[0].Hash, commits[1].Hash)
}

func TestParseLog_Empty(t *testing.T) {
	t.Parallel()

	commits, err := ParseLog([]byte("\n"))

	require.NoError(t, err)
	assert.Empty(t, commits)
}
