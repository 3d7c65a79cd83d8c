package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultUserAgent identifies this tool to the GitHub API.
	DefaultUserAgent = "gh-search"

	defaultTimeout = 30 * time.Second
	mediaTypeV3    = "application/vnd.github.v3+json"
)

// Client defines the GitHub API methods used by this application.
type Client interface {
	// SearchRepositories runs one repository search request. rawQuery is
	// an encoded query string; the returned items are left undecoded.
	SearchRepositories(ctx context.Context, rawQuery string) ([]json.RawMessage, *gh.Response, error)
}

// Options configures NewClient.
type Options struct {
	Token     string
	BaseURL   string // defaults to https://api.github.com/
	UserAgent string
	// Timeout bounds connecting, the TLS handshake and waiting for response
	// headers of each attempt.
	Timeout time.Duration
	Retry   RetryConfig
}

type searchResult struct {
	TotalCount        int               `json:"total_count"`
	IncompleteResults bool              `json:"incomplete_results"`
	Items             []json.RawMessage `json:"items"`
}

// realClient wraps the go-github client to implement Client.
type realClient struct {
	inner *gh.Client
}

// NewClient creates a GitHub API client. Requests go through a RetryTransport;
// when a token is set they carry "Authorization: token <token>".
func NewClient(opts Options) (Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	base.TLSHandshakeTimeout = timeout
	base.ResponseHeaderTimeout = timeout

	var rt http.RoundTripper = NewRetryTransport(base, opts.Retry)
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "token"})
		rt = &oauth2.Transport{Source: ts, Base: rt}
	}

	inner := gh.NewClient(&http.Client{Transport: rt})
	inner.UserAgent = DefaultUserAgent
	if opts.UserAgent != "" {
		inner.UserAgent = opts.UserAgent
	}
	if opts.BaseURL != "" {
		raw := opts.BaseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
		inner.BaseURL = u
	}
	return &realClient{inner: inner}, nil
}

func (c *realClient) SearchRepositories(ctx context.Context, rawQuery string) ([]json.RawMessage, *gh.Response, error) {
	req, err := c.inner.NewRequest(http.MethodGet, "search/repositories?"+rawQuery, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", mediaTypeV3)

	var result searchResult
	resp, err := c.inner.Do(ctx, req, &result)
	if err != nil {
		return nil, resp, err
	}
	return result.Items, resp, nil
}
