// Package remote collects commit activity from the GitHub REST API.
//
// Listing commits is exact. Line and file counts need one request per commit,
// so above a threshold they are estimated from an evenly spaced sample and
// scaled up; such results carry Estimated=true.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"

	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

// Defaults for Options.
const (
	DefaultPageSize   = 100
	DefaultMaxPages   = 50
	DefaultSampleSize = 20
	DefaultTimeout    = 30 * time.Second
	DefaultUserAgent  = "tryflow"
)

// Endpoint labels reported to a RequestRecorder.
const (
	EndpointUser         = "user"
	EndpointListCommits  = "list_commits"
	EndpointCommitDetail = "commit_detail"
)

// RequestRecorder is notified of every API request the collector makes.
type RequestRecorder interface {
	RecordRemoteRequest(ctx context.Context, endpoint string)
}

// Options configures a Collector.
type Options struct {
	// Token authenticates requests. Empty means anonymous access and no
	// author filter.
	Token string
	// BaseURL overrides the API root, for GitHub Enterprise or tests.
	BaseURL   string
	UserAgent string

	PageSize   int
	MaxPages   int
	SampleSize int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	Recorder RequestRecorder
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}

	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}

	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}

	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}

	return o
}

// Collector implements gitmetrics.RemoteCollector.
type Collector struct {
	client *github.Client
	opts   Options
	logger *slog.Logger

	identityMu sync.Mutex
	login      string
}

// NewCollector creates a Collector. A nil logger uses slog.Default.
func NewCollector(opts Options, logger *slog.Logger) (*Collector, error) {
	opts = opts.withDefaults()

	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.Token != "" {
		httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
			Base:   http.DefaultTransport,
		}
	}

	client := github.NewClient(httpClient)
	client.UserAgent = opts.UserAgent

	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}

		client.BaseURL = base
	}

	return &Collector{client: client, opts: opts, logger: logger}, nil
}

// CollectRemote lists the commits in the window, filtered to the token's
// user when one resolves, and fetches per-commit detail for all of them or
// for a sample.
func (c *Collector) CollectRemote(
	ctx context.Context, target gitmetrics.RemoteTarget, window gitmetrics.Window,
) (gitmetrics.RepoMetrics, error) {
	login := c.resolveLogin(ctx)
	if login == "" {
		c.logger.WarnContext(ctx, "no GitHub identity resolved, counting all authors",
			"repo", target.Owner+"/"+target.Repo)
	}

	commits, truncated, err := c.listCommits(ctx, target, login, window)
	if err != nil {
		return gitmetrics.RepoMetrics{}, err
	}

	if truncated {
		c.logger.WarnContext(ctx, "commits beyond the paging cap are excluded",
			"repo", target.Owner+"/"+target.Repo,
			"max_commits", c.opts.MaxPages*c.opts.PageSize,
			"error", gitmetrics.ErrPagingLimitReached)
	}

	return c.summarize(ctx, target, commits, window)
}

// resolveLogin returns the token owner's login, or "" without a token or
// when the lookup fails. A resolved login is kept for the Collector's
// lifetime; a failed lookup is retried on the next collection.
func (c *Collector) resolveLogin(ctx context.Context) string {
	c.identityMu.Lock()
	defer c.identityMu.Unlock()

	if c.opts.Token == "" || c.login != "" {
		return c.login
	}

	c.record(ctx, EndpointUser)

	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		c.logger.DebugContext(ctx, "github identity lookup failed", "error", err)

		return ""
	}

	c.login = user.GetLogin()

	return c.login
}

type listedCommit struct {
	sha  string
	when time.Time
}

func (c *Collector) listCommits(
	ctx context.Context, target gitmetrics.RemoteTarget, login string, window gitmetrics.Window,
) ([]listedCommit, bool, error) {
	opts := &github.CommitsListOptions{
		SHA:         target.Branch,
		Author:      login,
		Since:       window.Start,
		Until:       window.End,
		ListOptions: github.ListOptions{PerPage: c.opts.PageSize},
	}

	var listed []listedCommit

	for page := 1; page <= c.opts.MaxPages; page++ {
		opts.Page = page

		c.record(ctx, EndpointListCommits)

		commits, _, err := c.client.Repositories.ListCommits(ctx, target.Owner, target.Repo, opts)
		if err != nil {
			return nil, false, classify(err, target)
		}

		for _, rc := range commits {
			when := rc.GetCommit().GetAuthor().GetDate().Time
			if !window.Contains(when) {
				continue
			}

			listed = append(listed, listedCommit{sha: rc.GetSHA(), when: when})
		}

		if len(commits) < c.opts.PageSize {
			return listed, false, nil
		}
	}

	return listed, true, nil
}

func (c *Collector) summarize(
	ctx context.Context, target gitmetrics.RemoteTarget, commits []listedCommit, window gitmetrics.Window,
) (gitmetrics.RepoMetrics, error) {
	times := make([]time.Time, len(commits))
	for i, lc := range commits {
		times[i] = lc.when
	}

	rm := gitmetrics.RepoMetrics{
		Commits:          len(commits),
		AvgCommitsPerDay: gitmetrics.AvgCommitsPerDay(len(commits), window),
		FirstCommitTimes: gitmetrics.FirstCommitPerDay(times),
	}

	indices := SampleIndices(len(commits), c.opts.SampleSize)

	var detail detailSum

	for _, idx := range indices {
		c.record(ctx, EndpointCommitDetail)

		rc, _, err := c.client.Repositories.GetCommit(ctx, target.Owner, target.Repo, commits[idx].sha, nil)
		if err != nil {
			return gitmetrics.RepoMetrics{}, classify(err, target)
		}

		detail.add(rc)
	}

	detail.applyTo(&rm, len(commits), len(indices))

	return rm, nil
}

func (c *Collector) record(ctx context.Context, endpoint string) {
	if c.opts.Recorder != nil {
		c.opts.Recorder.RecordRemoteRequest(ctx, endpoint)
	}
}

// classify maps API errors onto the gitmetrics taxonomy.
func classify(err error, target gitmetrics.RemoteTarget) error {
	name := target.Owner + "/" + target.Repo

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %s: resets at %s: %w",
			gitmetrics.ErrRemoteRateLimited, name, rateErr.Rate.Reset.Time.Format(time.RFC3339), err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %s: secondary limit: %w", gitmetrics.ErrRemoteRateLimited, name, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch code := respErr.Response.StatusCode; code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s: HTTP %d, token rejected or lacking access: %w",
				gitmetrics.ErrRemoteAuth, name, code, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s: HTTP %d, check the name or grant the token access: %w",
				gitmetrics.ErrRemoteNotFound, name, code, err)
		}
	}

	return fmt.Errorf("github request for %s: %w", name, err)
}
