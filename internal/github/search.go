package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"

	"github.com/stahnma/gh-search/internal/cache"
	"github.com/stahnma/gh-search/internal/logging"
	"github.com/stahnma/gh-search/internal/metrics"
	"github.com/stahnma/gh-search/internal/record"
)

// SortKeys are the sort values accepted by the repository search API.
var SortKeys = []string{"stars", "forks", "help-wanted-issues", "updated"}

// SearchRequest describes one repository search. It is passed by value and
// never modified by the fetcher.
type SearchRequest struct {
	Query    string
	Sort     string
	Order    string
	Language string
	MinStars int
	PerPage  int
	Token    string
}

// Validate checks the request invariants.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("search query is required")
	}
	if r.PerPage <= 0 {
		return fmt.Errorf("per page must be positive, got %d", r.PerPage)
	}
	if r.MinStars < 0 {
		return fmt.Errorf("minimum stars must not be negative, got %d", r.MinStars)
	}
	if r.Sort != "" && !slices.Contains(SortKeys, r.Sort) {
		return fmt.Errorf("unknown sort key %q (want one of %s)", r.Sort, strings.Join(SortKeys, ", "))
	}
	if r.Order != "" && r.Order != "asc" && r.Order != "desc" {
		return fmt.Errorf("unknown order %q (want asc or desc)", r.Order)
	}
	return nil
}

// SearchQuery returns the q parameter: the base query plus language and
// star qualifiers.
func (r SearchRequest) SearchQuery() string {
	q := r.Query
	if r.Language != "" {
		q += " language:" + r.Language
	}
	if r.MinStars > 0 {
		q += fmt.Sprintf(" stars:>=%d", r.MinStars)
	}
	return q
}

type searchParams struct {
	Q       string `url:"q"`
	Sort    string `url:"sort,omitempty"`
	Order   string `url:"order,omitempty"`
	PerPage int    `url:"per_page"`
	Page    int    `url:"page"`
}

// Encode returns the encoded query string for page.
func (r SearchRequest) Encode(page int) (string, error) {
	v, err := query.Values(searchParams{
		Q:       r.SearchQuery(),
		Sort:    r.Sort,
		Order:   r.Order,
		PerPage: r.PerPage,
		Page:    page,
	})
	if err != nil {
		return "", err
	}
	return v.Encode(), nil
}

// Fetcher fetches single search pages.
type Fetcher struct {
	client Client
	cache  *cache.Cache
	log    zerolog.Logger
}

// NewFetcher creates a Fetcher. A nil cache disables page caching.
func NewFetcher(client Client, c *cache.Cache) *Fetcher {
	return &Fetcher{client: client, cache: c, log: logging.NewLogger("fetcher")}
}

// FetchPage fetches page (1-based) of req. An empty Page means the results
// are exhausted. Failures are reported as *FetchError.
func (f *Fetcher) FetchPage(ctx context.Context, req SearchRequest, page int) (Page, error) {
	if page < 1 {
		return Page{Number: page}, &FetchError{Kind: FailureTerminal, Page: page, Err: fmt.Errorf("invalid page number %d", page)}
	}
	if err := req.Validate(); err != nil {
		return Page{Number: page}, &FetchError{Kind: FailureTerminal, Page: page, Err: err}
	}
	rawQuery, err := req.Encode(page)
	if err != nil {
		return Page{Number: page}, &FetchError{Kind: FailureTerminal, Page: page, Err: err}
	}

	cacheKey := cache.Key("searchPage", rawQuery)
	if f.cache != nil {
		if data, found := f.cache.GetBytes(cacheKey); found {
			var items []json.RawMessage
			if err := json.Unmarshal(data, &items); err == nil {
				f.log.Debug().Str("key", cacheKey).Msg("Cache hit")
				metrics.Pages.WithLabelValues("cached").Inc()
				return decodePage(page, items)
			}
		}
		f.log.Debug().Str("key", cacheKey).Msg("Cache miss")
	}

	items, resp, err := f.client.SearchRepositories(ctx, rawQuery)
	if err != nil {
		fe := classifyFailure(page, resp, err)
		metrics.Pages.WithLabelValues(string(fe.Kind)).Inc()
		return Page{Number: page}, fe
	}

	p, err := decodePage(page, items)
	if err != nil {
		metrics.Pages.WithLabelValues(string(FailureTerminal)).Inc()
		return p, err
	}
	if p.Empty() {
		metrics.Pages.WithLabelValues("empty").Inc()
	} else {
		metrics.Pages.WithLabelValues("ok").Inc()
	}

	if f.cache != nil {
		if data, err := json.Marshal(items); err == nil {
			f.cache.Set(cacheKey, data)
		}
	}
	f.log.Debug().Int("page", page).Int("items", len(p.Records)).Msg("Fetched page")
	return p, nil
}

func decodePage(page int, items []json.RawMessage) (Page, error) {
	recs := make(record.Collection, 0, len(items))
	for i, raw := range items {
		r, err := record.Decode(raw)
		if err != nil {
			return Page{Number: page}, &FetchError{
				Kind: FailureTerminal,
				Page: page,
				Err:  fmt.Errorf("malformed item %d: %w", i, err),
			}
		}
		recs = append(recs, r)
	}
	return Page{Number: page, Records: recs}, nil
}
