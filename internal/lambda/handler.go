// Package lambda runs a configured search inside AWS Lambda and uploads the
// export to S3.
package lambda

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/stahnma/gh-search/internal/commands"
	"github.com/stahnma/gh-search/internal/format"
	"github.com/stahnma/gh-search/internal/pagination"
)

// Event is the Lambda invocation payload. Every field is optional.
type Event struct {
	Query      string `json:"query"`
	Language   string `json:"language"`
	MinStars   int    `json:"min_stars"`
	NumResults int    `json:"num_results"`
	Sort       string `json:"sort"`
	Order      string `json:"order"`
	Format     string `json:"format"`
	Translate  bool   `json:"translate"`
}

// Uploader is the subset of the S3 client used by the handler.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Handler serves Lambda invocations.
type Handler struct {
	App         *commands.App
	NewUploader func(ctx context.Context) (Uploader, error)
	Now         func() time.Time
}

// NewHandler returns a Lambda handler function that searches, exports and
// uploads to S3.
func NewHandler(app *commands.App) func(context.Context, Event) (string, error) {
	h := &Handler{App: app, NewUploader: defaultUploader, Now: time.Now}
	return h.Handle
}

func defaultUploader(ctx context.Context) (Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// options fills event defaults.
func (e Event) options() commands.SearchOptions {
	opts := commands.SearchOptions{
		Query:      e.Query,
		NumResults: e.NumResults,
		Sort:       e.Sort,
		Order:      e.Order,
		Language:   e.Language,
		MinStars:   e.MinStars,
		PerPage:    30,
		Translate:  e.Translate,
		Format:     e.Format,
	}
	if opts.Query == "" {
		opts.Query = os.Getenv("SEARCH_QUERY")
	}
	if opts.NumResults <= 0 {
		opts.NumResults = 30
	}
	if opts.Sort == "" {
		opts.Sort = "stars"
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}
	if opts.Format == "" {
		opts.Format = string(format.JSON)
	}
	return opts
}

// ObjectKey expands the date placeholder of an S3_OBJECT_KEY template.
func ObjectKey(template string, now time.Time) string {
	if !strings.Contains(template, "%s") {
		return template
	}
	return fmt.Sprintf(template, now.Format("2006-Jan-02"))
}

// Handle runs one invocation.
func (h *Handler) Handle(ctx context.Context, event Event) (string, error) {
	s3Bucket := os.Getenv("S3_BUCKET_NAME")
	s3ObjectKey := os.Getenv("S3_OBJECT_KEY")
	if s3Bucket == "" || s3ObjectKey == "" {
		return "", fmt.Errorf("S3_BUCKET_NAME and S3_OBJECT_KEY environment variables must be set")
	}

	opts := event.options()
	f, err := format.Parse(opts.Format)
	if err != nil {
		return "", err
	}
	req := opts.Request()
	req.Token = h.App.Config.GitHubToken
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid event: %w", err)
	}

	recs, err := h.App.Collect(ctx, req, opts.NumResults)
	if err != nil {
		if !errors.Is(err, pagination.ErrRateLimitExhausted) {
			return "", fmt.Errorf("searching repositories: %w", err)
		}
		log.Warn().Err(err).Int("collected", len(recs)).Msg("Continuing with partial results")
	}
	if len(recs) == 0 {
		return "No results for query " + req.Query, nil
	}

	var buf bytes.Buffer
	spec := format.Spec{Format: f, Enrich: opts.Translate}
	if err := h.App.Exporter().Render(ctx, &buf, recs, spec); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	key := ObjectKey(s3ObjectKey, h.Now())
	svc, err := h.NewUploader(ctx)
	if err != nil {
		return "", err
	}
	_, err = svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType(f)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	if err := h.App.WriteMetrics(); err != nil {
		log.Warn().Err(err).Msg("Could not write metrics")
	}
	log.Info().Str("bucket", s3Bucket).Str("key", key).Int("records", len(recs)).Msg("Export uploaded")
	return fmt.Sprintf("Uploaded %d repositories to s3://%s/%s", len(recs), s3Bucket, key), nil
}

func contentType(f format.Format) string {
	switch f {
	case format.CSV:
		return "text/csv; charset=utf-8"
	case format.TSV:
		return "text/tab-separated-values; charset=utf-8"
	case format.XML:
		return "application/xml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}
