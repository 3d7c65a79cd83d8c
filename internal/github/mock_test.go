package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v68/github"
)

// mockClient implements Client for testing.
type mockClient struct {
	searchFn func(ctx context.Context, rawQuery string) ([]json.RawMessage, *gh.Response, error)
	calls    []string
}

func (m *mockClient) SearchRepositories(ctx context.Context, rawQuery string) ([]json.RawMessage, *gh.Response, error) {
	m.calls = append(m.calls, rawQuery)
	return m.searchFn(ctx, rawQuery)
}

// emptyResponse returns a successful *gh.Response.
func emptyResponse() *gh.Response {
	return &gh.Response{
		Response: &http.Response{StatusCode: 200},
	}
}

// statusResponse returns a *gh.Response carrying the given status code.
func statusResponse(code int) *gh.Response {
	return &gh.Response{
		Response: &http.Response{StatusCode: code},
	}
}

// makeItem builds a raw search item for owner/name.
func makeItem(owner, name string, stars int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"name":%q,"full_name":"%s/%s","owner":{"login":%q},"stargazers_count":%d}`,
		name, owner, name, owner, stars))
}
