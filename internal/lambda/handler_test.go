package lambda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gh "github.com/google/go-github/v68/github"

	"github.com/stahnma/gh-search/internal/cache"
	"github.com/stahnma/gh-search/internal/commands"
	"github.com/stahnma/gh-search/internal/config"
	"github.com/stahnma/gh-search/internal/enrich"
	"github.com/stahnma/gh-search/internal/pagination"
)

type mockClient struct {
	items    int
	rawQuery string
}

func (m *mockClient) SearchRepositories(_ context.Context, rawQuery string) ([]json.RawMessage, *gh.Response, error) {
	m.rawQuery = rawQuery
	resp := &gh.Response{Response: &http.Response{StatusCode: 200}}
	if !strings.Contains(rawQuery, "page=1") {
		return nil, resp, nil
	}
	var items []json.RawMessage
	for i := 0; i < m.items; i++ {
		items = append(items, json.RawMessage(fmt.Sprintf(`{"name":"repo%d","stargazers_count":%d}`, i, i)))
	}
	return items, resp, nil
}

type mockUploader struct {
	input *s3.PutObjectInput
	body  []byte
}

func (m *mockUploader) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.input = in
	m.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func newTestHandler(client *mockClient, up *mockUploader) *Handler {
	pg := pagination.DefaultConfig()
	pg.Wait = func(context.Context, time.Duration) error { return nil }
	app := &commands.App{
		Config:     config.Config{NoCache: true},
		Cache:      cache.New(),
		GHClient:   client,
		Provider:   enrich.Passthrough{},
		Pagination: pg,
	}
	return &Handler{
		App:         app,
		NewUploader: func(context.Context) (Uploader, error) { return up, nil },
		Now:         func() time.Time { return time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC) },
	}
}

func TestHandle_UploadsExport(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("S3_OBJECT_KEY", "exports/%s.csv")
	up := &mockUploader{}
	client := &mockClient{items: 2}

	msg, err := newTestHandler(client, up).Handle(context.Background(), Event{Query: "tools", Format: "csv"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg, "Uploaded 2 repositories") {
		t.Errorf("message = %q", msg)
	}
	if got := aws.ToString(up.input.Key); got != "exports/2024-Mar-05.csv" {
		t.Errorf("key = %s", got)
	}
	if got := aws.ToString(up.input.Bucket); got != "bucket" {
		t.Errorf("bucket = %s", got)
	}
	if !bytes.HasPrefix(up.body, []byte("name,full_name,")) {
		t.Errorf("body is not CSV:\n%s", up.body)
	}
	if !strings.Contains(client.rawQuery, "sort=stars") {
		t.Errorf("defaults not applied: %s", client.rawQuery)
	}
}

func TestHandle_FallbackQuery(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("S3_OBJECT_KEY", "latest.json")
	t.Setenv("SEARCH_QUERY", "from env")
	up := &mockUploader{}
	client := &mockClient{items: 1}

	if _, err := newTestHandler(client, up).Handle(context.Background(), Event{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(client.rawQuery, "q=from+env") {
		t.Errorf("query = %s", client.rawQuery)
	}
	if got := aws.ToString(up.input.Key); got != "latest.json" {
		t.Errorf("key = %s", got)
	}
	if !bytes.HasPrefix(up.body, []byte("[\n")) {
		t.Errorf("default format should be JSON:\n%s", up.body)
	}
}

func TestHandle_NoResults(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("S3_OBJECT_KEY", "out.json")
	up := &mockUploader{}

	msg, err := newTestHandler(&mockClient{}, up).Handle(context.Background(), Event{Query: "nothing"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg, "No results") {
		t.Errorf("message = %q", msg)
	}
	if up.input != nil {
		t.Error("nothing should be uploaded")
	}
}

func TestHandle_MissingEnv(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "")
	t.Setenv("S3_OBJECT_KEY", "")

	if _, err := newTestHandler(&mockClient{}, &mockUploader{}).Handle(context.Background(), Event{Query: "x"}); err == nil {
		t.Error("expected error without S3 settings")
	}
}

func TestHandle_InvalidEvent(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("S3_OBJECT_KEY", "out")
	t.Setenv("SEARCH_QUERY", "")

	h := newTestHandler(&mockClient{}, &mockUploader{})
	if _, err := h.Handle(context.Background(), Event{}); err == nil {
		t.Error("expected error without a query")
	}
	if _, err := h.Handle(context.Background(), Event{Query: "x", Format: "yaml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2025, time.January, 9, 0, 0, 0, 0, time.UTC)
	if got := ObjectKey("a/%s.json", now); got != "a/2025-Jan-09.json" {
		t.Errorf("ObjectKey() = %s", got)
	}
	if got := ObjectKey("fixed.json", now); got != "fixed.json" {
		t.Errorf("ObjectKey() = %s", got)
	}
}
