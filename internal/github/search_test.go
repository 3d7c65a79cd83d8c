package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v68/github"

	"github.com/stahnma/gh-search/internal/cache"
)

func validRequest() SearchRequest {
	return SearchRequest{Query: "machine learning", Sort: "stars", Order: "desc", PerPage: 30}
}

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SearchRequest)
		wantErr bool
	}{
		{"valid", func(*SearchRequest) {}, false},
		{"empty query", func(r *SearchRequest) { r.Query = "  " }, true},
		{"zero per page", func(r *SearchRequest) { r.PerPage = 0 }, true},
		{"negative stars", func(r *SearchRequest) { r.MinStars = -1 }, true},
		{"bad sort", func(r *SearchRequest) { r.Sort = "name" }, true},
		{"bad order", func(r *SearchRequest) { r.Order = "up" }, true},
		{"empty sort and order", func(r *SearchRequest) { r.Sort, r.Order = "", "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSearchRequest_SearchQuery(t *testing.T) {
	tests := []struct {
		lang  string
		stars int
		want  string
	}{
		{"", 0, "machine learning"},
		{"python", 0, "machine learning language:python"},
		{"", 100, "machine learning stars:>=100"},
		{"go", 5, "machine learning language:go stars:>=5"},
	}

	for _, tt := range tests {
		req := validRequest()
		req.Language = tt.lang
		req.MinStars = tt.stars
		if got := req.SearchQuery(); got != tt.want {
			t.Errorf("SearchQuery() = %q, want %q", got, tt.want)
		}
	}
}

func TestSearchRequest_Encode(t *testing.T) {
	req := validRequest()
	req.Language = "go"

	raw, err := req.Encode(3)
	if err != nil {
		t.Fatal(err)
	}
	v, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"q":        "machine learning language:go",
		"sort":     "stars",
		"order":    "desc",
		"per_page": "30",
		"page":     "3",
	}
	for k, w := range want {
		if got := v.Get(k); got != w {
			t.Errorf("param %s = %q, want %q", k, got, w)
		}
	}
}

func TestFetchPage_DecodesItems(t *testing.T) {
	client := &mockClient{
		searchFn: func(_ context.Context, _ string) ([]json.RawMessage, *gh.Response, error) {
			return []json.RawMessage{makeItem("alice", "one", 10), makeItem("bob", "two", 5)}, emptyResponse(), nil
		},
	}

	p, err := NewFetcher(client, nil).FetchPage(context.Background(), validRequest(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Number != 1 {
		t.Errorf("page number = %d, want 1", p.Number)
	}
	if len(p.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(p.Records))
	}
	if got := p.Records[0].Repo().GetFullName(); got != "alice/one" {
		t.Errorf("first record = %s, want alice/one", got)
	}
	if got := p.Records[1].Repo().GetStargazersCount(); got != 5 {
		t.Errorf("second record stars = %d, want 5", got)
	}
}

func TestFetchPage_Empty(t *testing.T) {
	client := &mockClient{
		searchFn: func(_ context.Context, _ string) ([]json.RawMessage, *gh.Response, error) {
			return nil, emptyResponse(), nil
		},
	}

	p, err := NewFetcher(client, nil).FetchPage(context.Background(), validRequest(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Empty() {
		t.Errorf("expected empty page, got %d records", len(p.Records))
	}
}

func TestFetchPage_InvalidInput(t *testing.T) {
	client := &mockClient{
		searchFn: func(_ context.Context, _ string) ([]json.RawMessage, *gh.Response, error) {
			t.Fatal("client should not be called")
			return nil, nil, nil
		},
	}
	f := NewFetcher(client, nil)

	if _, err := f.FetchPage(context.Background(), validRequest(), 0); err == nil {
		t.Error("expected error for page 0")
	}
	bad := validRequest()
	bad.PerPage = 0
	if _, err := f.FetchPage(context.Background(), bad, 1); err == nil {
		t.Error("expected error for invalid request")
	}
}

func TestFetchPage_Classification(t *testing.T) {
	tests := []struct {
		name string
		resp *gh.Response
		err  error
		want FailureKind
	}{
		{"forbidden", statusResponse(403), errors.New("forbidden"), FailureRateLimited},
		{"rate limit error", statusResponse(429), &gh.RateLimitError{Message: "slow down"}, FailureRateLimited},
		{"abuse error", nil, &gh.AbuseRateLimitError{Message: "abuse"}, FailureRateLimited},
		{"not found", statusResponse(404), errors.New("not found"), FailureTerminal},
		{"server error", statusResponse(502), errors.New("bad gateway"), FailureTerminal},
		{"network", nil, errors.New("connection refused"), FailureTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{
				searchFn: func(_ context.Context, _ string) ([]json.RawMessage, *gh.Response, error) {
					return nil, tt.resp, tt.err
				},
			}
			p, err := NewFetcher(client, nil).FetchPage(context.Background(), validRequest(), 2)
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *FetchError", err)
			}
			if fe.Kind != tt.want {
				t.Errorf("kind = %s, want %s", fe.Kind, tt.want)
			}
			if fe.Page != 2 {
				t.Errorf("page = %d, want 2", fe.Page)
			}
			if IsRateLimited(err) != (tt.want == FailureRateLimited) {
				t.Errorf("IsRateLimited() = %v", IsRateLimited(err))
			}
			if !errors.Is(err, tt.err) {
				t.Error("FetchError should unwrap to the client error")
			}
			if len(p.Records) != 0 {
				t.Errorf("failed page carried %d records", len(p.Records))
			}
		})
	}
}

func TestFetchPage_MalformedItem(t *testing.T) {
	client := &mockClient{
		searchFn: func(_ context.Context, _ string) ([]json.RawMessage, *gh.Response, error) {
			return []json.RawMessage{json.RawMessage(`[1,2]`)}, emptyResponse(), nil
		},
	}

	_, err := NewFetcher(client, nil).FetchPage(context.Background(), validRequest(), 1)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != FailureTerminal {
		t.Errorf("error = %v, want terminal FetchError", err)
	}
}

func TestFetchPage_UsesCache(t *testing.T) {
	client := &mockClient{
		searchFn: func(_ context.Context, _ string) ([]json.RawMessage, *gh.Response, error) {
			return []json.RawMessage{makeItem("alice", "one", 1)}, emptyResponse(), nil
		},
	}
	f := NewFetcher(client, cache.New())

	for i := 0; i < 3; i++ {
		p, err := f.FetchPage(context.Background(), validRequest(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Records) != 1 {
			t.Fatalf("got %d records, want 1", len(p.Records))
		}
	}
	if len(client.calls) != 1 {
		t.Errorf("client called %d times, want 1", len(client.calls))
	}

	if _, err := f.FetchPage(context.Background(), validRequest(), 2); err != nil {
		t.Fatal(err)
	}
	if len(client.calls) != 2 {
		t.Errorf("different page should miss the cache, calls = %d", len(client.calls))
	}
}

func TestFetchPage_FailuresNotCached(t *testing.T) {
	fail := true
	client := &mockClient{
		searchFn: func(_ context.Context, _ string) ([]json.RawMessage, *gh.Response, error) {
			if fail {
				return nil, statusResponse(403), errors.New("forbidden")
			}
			return []json.RawMessage{makeItem("alice", "one", 1)}, emptyResponse(), nil
		},
	}
	f := NewFetcher(client, cache.New())

	if _, err := f.FetchPage(context.Background(), validRequest(), 1); err == nil {
		t.Fatal("expected error")
	}
	fail = false
	p, err := f.FetchPage(context.Background(), validRequest(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Records) != 1 {
		t.Errorf("got %d records, want 1", len(p.Records))
	}
}
