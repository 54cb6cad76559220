// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/rotisserie/eris"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/github-trending/internal/config"
	"github.com/naka-gawa/github-trending/internal/domain"
	"github.com/naka-gawa/github-trending/internal/logging"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	SearchTrending(ctx context.Context, query domain.Query) ([]domain.Repository, error)
	GetRepoDetails(ctx context.Context, owner, repo string) (*domain.Repository, error)
	FetchRateLimit(ctx context.Context) (*domain.RateLimit, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *logging.Logger
	policy        retryPolicy
	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) error
}

// rateLimitQuery asks GraphQL for the caller's current quota.
type rateLimitQuery struct {
	RateLimit struct {
		Limit     int
		Remaining int
		Used      int
		ResetAt   githubv4.DateTime
	}
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// A single HTTP client is shared by every call so connections are pooled across a run.
func NewGitHubGateway(s config.GitHubSettings, logger *logging.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, eris.Wrap(err, "failed to create rate limit waiter")
	}
	var transport http.RoundTripper = rateLimitWaiter
	if s.Token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.Token}),
		}
	}
	httpClient := &http.Client{Transport: transport, Timeout: 30 * time.Second}

	restClient := github.NewClient(httpClient)
	baseURL, err := url.Parse(s.BaseURL + "/")
	if err != nil {
		return nil, eris.Wrapf(err, "invalid GitHub base URL %q", s.BaseURL)
	}
	restClient.BaseURL = baseURL

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewEnterpriseClient(s.GraphQLURL, httpClient),
		logger:        logger,
		policy:        newRetryPolicy(s),
		now:           time.Now,
		sleep:         sleepContext,
	}, nil
}

// SearchTrending fetches one page of repositories matching query, sorted by stars descending.
// An empty slice with a nil error means the search matched nothing.
func (g *GitHubGateway) SearchTrending(ctx context.Context, query domain.Query) ([]domain.Repository, error) {
	q := query.String(g.now())
	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: query.PerPage},
	}
	g.logger.Infof("Searching repositories: %s", q)

	var result *github.RepositoriesSearchResult
	err := g.call(ctx, "search repositories", func(ctx context.Context) (*github.Response, error) {
		var resp *github.Response
		var err error
		result, resp, err = g.restClient.Search.Repositories(ctx, q, opts)
		return resp, err
	})
	if err != nil {
		return nil, eris.Wrapf(err, "failed to search %s repositories", query.Language)
	}

	repos := make([]domain.Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, toDomain(r))
	}
	g.logger.Infof("Found %d %s repositories (total matches: %d)", len(repos), query.Language, result.GetTotal())
	return repos, nil
}

// GetRepoDetails fetches a single repository.
func (g *GitHubGateway) GetRepoDetails(ctx context.Context, owner, repo string) (*domain.Repository, error) {
	var result *github.Repository
	err := g.call(ctx, "get repository", func(ctx context.Context) (*github.Response, error) {
		var resp *github.Response
		var err error
		result, resp, err = g.restClient.Repositories.Get(ctx, owner, repo)
		return resp, err
	})
	if err != nil {
		return nil, eris.Wrapf(err, "failed to get repository %s/%s", owner, repo)
	}
	r := toDomain(result)
	return &r, nil
}

// FetchRateLimit reports the remaining API quota using the GraphQL API.
func (g *GitHubGateway) FetchRateLimit(ctx context.Context) (*domain.RateLimit, error) {
	var q rateLimitQuery
	err := g.call(ctx, "fetch rate limit", func(ctx context.Context) (*github.Response, error) {
		return nil, g.graphqlClient.Query(ctx, &q, nil)
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to execute GraphQL query for rate limit")
	}
	return &domain.RateLimit{
		Limit:     q.RateLimit.Limit,
		Remaining: q.RateLimit.Remaining,
		Used:      q.RateLimit.Used,
		ResetAt:   q.RateLimit.ResetAt.Time,
	}, nil
}

func toDomain(r *github.Repository) domain.Repository {
	return domain.Repository{
		Owner:       r.GetOwner().GetLogin(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		URL:         r.GetHTMLURL(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Language:    r.GetLanguage(),
		Description: r.GetDescription(),
		Topics:      r.Topics,
		CreatedAt:   r.GetCreatedAt().Time,
	}
}
