// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/segmentio/ksuid"

	"github.com/naka-gawa/github-trending/internal/config"
	"github.com/naka-gawa/github-trending/internal/domain"
	"github.com/naka-gawa/github-trending/internal/gateway"
	"github.com/naka-gawa/github-trending/internal/logging"
)

// ReportFormatter renders repositories into report markdown.
type ReportFormatter interface {
	Format(repos []domain.Repository, language string, date time.Time) string
}

// ReportWriter persists rendered reports.
type ReportWriter interface {
	EnsureDir() error
	Write(report domain.Report) (string, error)
}

// Collector is the use case for collecting daily trending reports.
// It orchestrates fetching, formatting and writing one report per language.
type Collector struct {
	fetcher   gateway.Fetcher
	formatter ReportFormatter
	store     ReportWriter
	settings  config.FetchSettings
	logger    *logging.Logger
	now       func() time.Time
}

// RunSummary describes the outcome of one collection run.
type RunSummary struct {
	RunID string
	Date  time.Time
	// Written maps a language to the report file written for it.
	Written map[string]string
	// Skipped lists languages for which nothing was found.
	Skipped []string
	// Failed holds languages whose report could not be written.
	Failed map[string]error
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, formatter ReportFormatter, store ReportWriter, settings config.FetchSettings, logger *logging.Logger) *Collector {
	return &Collector{
		fetcher:   fetcher,
		formatter: formatter,
		store:     store,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

// Query builds the search for language from the fetch settings.
func (c *Collector) Query(language string) domain.Query {
	return domain.Query{
		Language:     language,
		LookbackDays: c.settings.LookbackDays,
		MinStars:     c.settings.MinStars,
		PerPage:      c.settings.PerPage,
	}
}

// CollectLanguageRepos fetches and formats today's report for language.
// A nil report with a nil error means there is nothing to write.
func (c *Collector) CollectLanguageRepos(ctx context.Context, language string) (*domain.Report, error) {
	return c.collect(ctx, language, c.now())
}

func (c *Collector) collect(ctx context.Context, language string, date time.Time) (*domain.Report, error) {
	c.logger.Infof("Collecting trending %s repositories", language)

	fetchCtx := ctx
	if c.settings.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		defer cancel()
	}

	repos, err := c.fetcher.SearchTrending(fetchCtx, c.Query(language))
	if err != nil {
		// Only the caller giving up stops the run; any other failure degrades to an empty result.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Errorf("Failed to fetch %s repositories: %v", language, err)
		repos = nil
	}
	if len(repos) == 0 {
		c.logger.Warnf("No trending %s repositories found", language)
		return nil, nil
	}

	return &domain.Report{
		Language:     language,
		Date:         date,
		Repositories: repos,
		Markdown:     c.formatter.Format(repos, language, date),
	}, nil
}

// Run collects every configured language in order and writes one report per language.
// Only a missing output directory or cancellation aborts the run; a language that
// cannot be written is recorded in the summary and the run moves on.
func (c *Collector) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:   ksuid.New().String(),
		Date:    c.now(),
		Written: make(map[string]string),
		Failed:  make(map[string]error),
	}
	c.logger.Infof("Run %s: collecting %v", summary.RunID, c.settings.Languages)

	if err := c.store.EnsureDir(); err != nil {
		return nil, err
	}

	for _, language := range c.settings.Languages {
		report, err := c.collect(ctx, language, summary.Date)
		if err != nil {
			return summary, eris.Wrapf(err, "run %s interrupted at %s", summary.RunID, language)
		}
		if report == nil {
			summary.Skipped = append(summary.Skipped, language)
			continue
		}

		path, err := c.store.Write(*report)
		if err != nil {
			c.logger.Errorf("Failed to write %s report: %v", language, err)
			summary.Failed[language] = err
			continue
		}
		summary.Written[language] = path
		c.logger.Infof("Generated %s report: %s", language, path)
	}

	c.logger.Infof("Run %s complete: %d written, %d skipped, %d failed",
		summary.RunID, len(summary.Written), len(summary.Skipped), len(summary.Failed))
	return summary, nil
}
