package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-search/internal/cache"
	"github.com/stahnma/gh-search/internal/config"
	"github.com/stahnma/gh-search/internal/enrich"
	ghub "github.com/stahnma/gh-search/internal/github"
	"github.com/stahnma/gh-search/internal/metrics"
	"github.com/stahnma/gh-search/internal/pagination"
)

// App holds shared application state.
type App struct {
	Config     config.Config
	Cache      *cache.Cache
	GHClient   ghub.Client
	Provider   enrich.Provider
	Pagination pagination.Config
	GitSHA     string
	GitDirty   string
}

// NewApp creates a new App from the given configuration.
func NewApp(cfg config.Config, gitSHA, gitDirty string) (*App, error) {
	c, err := cache.LoadFromFile(cfg.CacheFile)
	if err != nil {
		return nil, fmt.Errorf("loading cache: %w", err)
	}

	pg := pagination.DefaultConfig()
	pg.MaxRateLimitRetries = cfg.RateLimitRetries

	return &App{
		Config:     cfg,
		Cache:      c,
		Pagination: pg,
		GitSHA:     gitSHA,
		GitDirty:   gitDirty,
	}, nil
}

// ensureClient creates the GitHub client if it doesn't exist. Searching
// works without a token, at a lower rate limit.
func (a *App) ensureClient() error {
	if a.GHClient != nil {
		return nil
	}
	client, err := ghub.NewClient(ghub.Options{
		Token:   a.Config.GitHubToken,
		Timeout: a.Config.HTTPTimeout,
	})
	if err != nil {
		return fmt.Errorf("creating GitHub client: %w", err)
	}
	a.GHClient = client
	return nil
}

// ensureProvider sets up language detection and translation.
func (a *App) ensureProvider() {
	if a.Provider != nil {
		return
	}
	var translator enrich.Translator
	if a.Config.TranslateURL != "" {
		translator = enrich.NewCachedTranslator(
			enrich.NewLibreTranslate(a.Config.TranslateURL, a.Config.HTTPTimeout),
			a.pageCache(),
		)
	}
	a.Provider = enrich.NewService(enrich.WhatlangDetector{}, translator)
}

// pageCache returns the cache, or nil when caching is disabled.
func (a *App) pageCache() *cache.Cache {
	if a.Config.NoCache {
		return nil
	}
	return a.Cache
}

// SaveCache saves the cache to disk if caching is enabled.
func (a *App) SaveCache() error {
	if !a.Config.NoCache {
		return a.Cache.SaveToFile(a.Config.CacheFile)
	}
	return nil
}

// WriteMetrics writes the run's metrics when a metrics file is configured.
func (a *App) WriteMetrics() error {
	if a.Config.MetricsFile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// NewRootCommand creates the root cobra command with all subcommands.
func (a *App) NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gh-search",
		Short: "Search GitHub repositories and export the results.",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVar(&a.Config.NoCache, "no-cache", a.Config.NoCache, "Disable caching")
	rootCmd.PersistentFlags().StringVar(&a.Config.MetricsFile, "metrics-file", a.Config.MetricsFile, "Write Prometheus metrics to this file")

	rootCmd.AddCommand(a.newSearchCommand())
	rootCmd.AddCommand(a.newVersionCommand())
	rootCmd.AddCommand(a.newClearCacheCommand())

	return rootCmd
}
