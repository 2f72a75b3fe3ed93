package gitmetrics

import "errors"

// Sentinel errors for per-repository collection failures. Every one of them
// is recoverable: the engine logs it and moves on to the next repository.
var (
	// ErrNoRepositories indicates that no repositories were configured.
	ErrNoRepositories = errors.New("no repositories configured")
	// ErrNotARepository indicates a local path is not inside a working tree.
	ErrNotARepository = errors.New("not a version control repository")
	// ErrVCSCommand indicates the version control binary exited with an error.
	ErrVCSCommand = errors.New("version control command failed")
	// ErrRemoteAuth indicates the hosting API rejected the credentials (401/403).
	ErrRemoteAuth = errors.New("remote authentication failed")
	// ErrRemoteNotFound indicates the remote repository does not exist or is private (404).
	ErrRemoteNotFound = errors.New("remote repository not found or private")
	// ErrRemoteRateLimited indicates the hosting API rate limit was exhausted.
	ErrRemoteRateLimited = errors.New("remote rate limit exceeded")
	// ErrPagingLimitReached indicates commit listing stopped at the page cap
	// and later commits were excluded. Results are partial, not failed.
	ErrPagingLimitReached = errors.New("commit paging limit reached")
)

// reasons maps sentinels to the short text shown next to a skipped repository.
var reasons = []struct {
	err    error
	reason string
}{
	{ErrNotARepository, "not a git repository"},
	{ErrVCSCommand, "git command failed"},
	{ErrRemoteAuth, "authentication failed; check the GitHub token"},
	{ErrRemoteNotFound, "repository not found or private"},
	{ErrRemoteRateLimited, "GitHub rate limit exceeded"},
	{ErrPagingLimitReached, "results truncated at the paging limit"},
}

// FailureReason returns a short user-facing reason for err.
func FailureReason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}

	return err.Error()
}
