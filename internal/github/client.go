// Package github reads and writes repository labels through the GitHub
// REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	gogithub "github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com/"

	// APIVersion is sent as X-GitHub-Api-Version on every request.
	APIVersion = "2022-11-28"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient failures.
	MaxRetries = 3

	// MaxPageSize is the number of labels requested per page.
	MaxPageSize = 100

	// MaxPages bounds pagination against malformed Link headers.
	MaxPages = 100
)

// Options configures a Client.
type Options struct {
	Owner      string
	Repository string

	// Token is a personal access or installation token. Empty means
	// unauthenticated requests.
	Token string

	// BaseURL overrides DefaultAPIEndpoint, e.g. for GitHub Enterprise.
	BaseURL string

	// Transport is the underlying round tripper (default http.DefaultTransport).
	Transport http.RoundTripper

	// Timeout for individual requests (default DefaultTimeout).
	Timeout time.Duration

	// BackOff builds the retry policy for a single call. Defaults to
	// exponential backoff capped at MaxRetries.
	BackOff func() backoff.BackOff
}

// Client reads and writes the labels of a single repository.
type Client struct {
	owner      string
	repo       string
	gh         *gogithub.Client
	newBackOff func() backoff.BackOff
}

// NewClient creates a client for the repository named in opts.
func NewClient(opts Options) (*Client, error) {
	if opts.Owner == "" || opts.Repository == "" {
		return nil, errors.New("owner and repository are required")
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	var rt http.RoundTripper = &apiVersionTransport{base: base}
	if opts.Token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
			Base:   rt,
		}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	gh := gogithub.NewClient(&http.Client{Transport: rt, Timeout: timeout})

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultAPIEndpoint
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	gh.BaseURL = u

	newBackOff := opts.BackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}

	return &Client{
		owner:      opts.Owner,
		repo:       opts.Repository,
		gh:         gh,
		newBackOff: newBackOff,
	}, nil
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxElapsedTime = time.Minute
	return backoff.WithMaxRetries(bo, MaxRetries)
}

// ListLabels returns every label in the repository, following pagination.
func (c *Client) ListLabels(ctx context.Context) ([]model.ExistingLabel, error) {
	var all []model.ExistingLabel
	opts := &gogithub.ListOptions{PerPage: MaxPageSize}

	for page := 1; ; page++ {
		if page > MaxPages {
			return nil, fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
		}

		var labels []*gogithub.Label
		var resp *gogithub.Response
		err := c.retry(ctx, func() error {
			var err error
			labels, resp, err = c.gh.Issues.ListLabels(ctx, c.owner, c.repo, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list labels for %s/%s: %w", c.owner, c.repo, err)
		}

		for _, l := range labels {
			all = append(all, toExisting(l))
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// CreateLabel adds a new label.
func (c *Client) CreateLabel(ctx context.Context, change model.Create) error {
	label := &gogithub.Label{
		Name:        gogithub.String(change.Name),
		Color:       gogithub.String(change.Color),
		Description: gogithub.String(change.Description),
	}
	err := c.retry(ctx, func() error {
		_, _, err := c.gh.Issues.CreateLabel(ctx, c.owner, c.repo, label)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create label %q: %w", change.Name, err)
	}
	return nil
}

// labelPatch is the request body for renaming and updating a label.
type labelPatch struct {
	NewName     string `json:"new_name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// UpdateLabel renames the label identified by change.OriginalName and
// overwrites its color and description.
func (c *Client) UpdateLabel(ctx context.Context, change model.Update) error {
	body := &labelPatch{
		NewName:     change.NewName,
		Color:       change.Color,
		Description: change.Description,
	}
	err := c.retry(ctx, func() error {
		req, err := c.gh.NewRequest(http.MethodPatch, c.labelPath(change.OriginalName), body)
		if err != nil {
			return backoff.Permanent(err)
		}
		_, err = c.gh.Do(ctx, req, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update label %q: %w", change.OriginalName, err)
	}
	return nil
}

// DeleteLabel removes the named label.
func (c *Client) DeleteLabel(ctx context.Context, change model.Delete) error {
	err := c.retry(ctx, func() error {
		req, err := c.gh.NewRequest(http.MethodDelete, c.labelPath(change.Name), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		_, err = c.gh.Do(ctx, req, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete label %q: %w", change.Name, err)
	}
	return nil
}

// labelPath returns the API path of a single label. Label names are free
// text, so every segment is escaped.
func (c *Client) labelPath(name string) string {
	return fmt.Sprintf("repos/%s/%s/labels/%s",
		url.PathEscape(c.owner), url.PathEscape(c.repo), url.PathEscape(name))
}

// retry runs op under the client's backoff policy. Only transient errors
// are retried.
func (c *Client) retry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(c.newBackOff(), ctx))
}

// IsTransient reports whether err is worth retrying: primary or secondary
// rate limiting, or a server-side failure.
func IsTransient(err error) bool {
	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	var respErr *gogithub.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	return false
}

// IsUnauthorized reports whether err is an authentication or permission
// failure.
func IsUnauthorized(err error) bool {
	var respErr *gogithub.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		return code == http.StatusUnauthorized || code == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var respErr *gogithub.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

func toExisting(l *gogithub.Label) model.ExistingLabel {
	return model.ExistingLabel{
		Name:        l.GetName(),
		Color:       l.Color,
		Description: l.Description,
	}
}

// apiVersionTransport pins the REST API version and media type.
type apiVersionTransport struct {
	base http.RoundTripper
}

func (t *apiVersionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-GitHub-Api-Version", APIVersion)
	req.Header.Set("Accept", "application/vnd.github+json")
	return t.base.RoundTrip(req)
}
