package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-search/internal/enrich"
	"github.com/stahnma/gh-search/internal/format"
	ghub "github.com/stahnma/gh-search/internal/github"
	"github.com/stahnma/gh-search/internal/pagination"
	"github.com/stahnma/gh-search/internal/record"
)

// SearchOptions holds the search command flags.
type SearchOptions struct {
	Query      string
	Token      string
	NumResults int
	Sort       string
	Order      string
	Language   string
	MinStars   int
	PerPage    int
	Translate  bool
	DisplayNum int
	Format     string
	Output     string
}

// Request converts the options into a search request.
func (o SearchOptions) Request() ghub.SearchRequest {
	return ghub.SearchRequest{
		Query:    strings.TrimSpace(o.Query),
		Sort:     o.Sort,
		Order:    o.Order,
		Language: o.Language,
		MinStars: o.MinStars,
		PerPage:  o.PerPage,
		Token:    o.Token,
	}
}

func (a *App) newSearchCommand() *cobra.Command {
	var opts SearchOptions
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search repositories and export the results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Query == "" && len(args) == 1 {
				opts.Query = args[0]
			}
			return a.runSearch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Query, "query", "", "Search query (e.g. 'machine learning')")
	f.StringVar(&opts.Token, "token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	f.IntVar(&opts.NumResults, "num-results", 30, "Number of results to fetch")
	f.StringVar(&opts.Sort, "sort", "stars", "Sort by: "+strings.Join(ghub.SortKeys, ", "))
	f.StringVar(&opts.Order, "order", "desc", "Order: asc or desc")
	f.StringVar(&opts.Language, "language", "", "Filter by language (e.g. python)")
	f.IntVar(&opts.MinStars, "min-stars", 0, "Minimum stars")
	f.IntVar(&opts.PerPage, "per-page", 30, "Results per page")
	f.BoolVar(&opts.Translate, "translate", false, "Translate non-English descriptions")
	f.IntVar(&opts.DisplayNum, "display-num", 5, "Number of results to display")
	f.StringVar(&opts.Format, "format", "", "Export format: json, csv, tsv or xml (prompts when unset)")
	f.StringVarP(&opts.Output, "output", "o", "", "Output file name without extension")
	return cmd
}

func (a *App) runSearch(cmd *cobra.Command, opts SearchOptions) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	if strings.TrimSpace(opts.Query) == "" {
		opts.Query = prompt(w, in, "Enter your search term (e.g., 'machine learning'): ")
		if opts.Query == "" {
			return errors.New("search query is required")
		}
	}
	if opts.Token != "" {
		a.Config.GitHubToken = opts.Token
	}
	opts.Token = a.Config.GitHubToken
	req := opts.Request()
	if err := req.Validate(); err != nil {
		return err
	}

	var fmtChoice format.Format
	if opts.Format != "" {
		f, err := format.Parse(opts.Format)
		if err != nil {
			return err
		}
		fmtChoice = f
	} else {
		fmtChoice = promptFormat(w, in)
		if opts.Output == "" {
			opts.Output = prompt(w, in, "Enter the filename (without extension) or press Enter to use default: ")
		}
	}
	base := opts.Output
	if base == "" {
		base = format.DefaultBase(req.Query)
	}
	spec := format.Spec{
		Format: fmtChoice,
		Path:   format.Filename(base, fmtChoice),
		Enrich: opts.Translate,
	}

	fmt.Fprintf(w, "\nSearching GitHub for '%s'...\n", req.Query)
	recs, err := a.Collect(ctx, req, opts.NumResults)
	var interrupted error
	switch {
	case err == nil:
	case errors.Is(err, pagination.ErrRateLimitExhausted):
		log.Warn().Err(err).Int("collected", len(recs)).Msg("Continuing with partial results")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		interrupted = err
		log.Warn().Err(err).Int("collected", len(recs)).Msg("Search interrupted, exporting partial results")
	default:
		return fmt.Errorf("searching repositories: %w", err)
	}

	if len(recs) == 0 {
		if interrupted != nil {
			return fmt.Errorf("searching repositories: %w", interrupted)
		}
		fmt.Fprintln(w, "No repositories found. Try a different search term.")
		return nil
	}

	fmt.Fprintf(w, "\nFound %d repositories. Top results:\n", len(recs))
	if err := format.Preview(w, recs, opts.DisplayNum, a.Config.SlackMode); err != nil {
		return err
	}

	exportCtx := ctx
	if interrupted != nil {
		// still write what was collected
		exportCtx = context.WithoutCancel(ctx)
	}
	if err := a.Exporter().Export(exportCtx, recs, spec); err != nil {
		return fmt.Errorf("exporting results: %w", err)
	}
	fmt.Fprintf(w, "Results saved to %s (%s format)\n", spec.Path, spec.Format.Label())
	if interrupted != nil {
		return fmt.Errorf("search interrupted after %d repositories: %w", len(recs), interrupted)
	}
	return nil
}

// Collect runs a paginated search for at most n records.
func (a *App) Collect(ctx context.Context, req ghub.SearchRequest, n int) (record.Collection, error) {
	if err := a.ensureClient(); err != nil {
		return nil, err
	}
	fetcher := ghub.NewFetcher(a.GHClient, a.pageCache())
	return pagination.NewCollector(fetcher, a.Pagination).Collect(ctx, req, n)
}

// Exporter returns an exporter using the app's enrichment provider.
func (a *App) Exporter() *format.Exporter {
	a.ensureProvider()
	return format.NewExporter(a.Provider, enrich.DefaultPolicy())
}

func prompt(w io.Writer, in *bufio.Reader, question string) string {
	fmt.Fprint(w, question)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptFormat(w io.Writer, in *bufio.Reader) format.Format {
	fmt.Fprintln(w, "Select the desired file format:")
	for i, f := range format.Formats {
		fmt.Fprintf(w, "%d. %s\n", i+1, f.Label())
	}
	choice := prompt(w, in, "Enter the number (1, 2, 3 or 4): ")
	f, ok := format.ParseChoice(choice)
	if !ok && choice != "" {
		fmt.Fprintln(w, "Invalid choice. Defaulting to JSON.")
	}
	return f
}
