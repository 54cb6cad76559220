package config

import (
	"strings"
	"time"
)

// Settings is the typed view of a Tree with every default applied.
// Components receive the section they need through their constructors.
type Settings struct {
	GitHub  GitHubSettings
	Fetch   FetchSettings
	Output  OutputSettings
	Logging LoggingSettings
	Server  ServerSettings
}

// GitHubSettings configures the API endpoints, the token and the retry policy.
type GitHubSettings struct {
	BaseURL    string
	GraphQLURL string
	Token      string
	// MaxRetries caps the total attempts for transient failures.
	MaxRetries  int
	BackoffBase time.Duration
	// MaxRateLimitWaits caps the sleep-then-retry cycles on rate limiting.
	MaxRateLimitWaits int
}

// FetchSettings describes what a collection run searches for.
type FetchSettings struct {
	LookbackDays int
	MinStars     int
	PerPage      int
	Languages    []string
	Timeout      time.Duration
}

// OutputSettings locates the report directory and the report template.
type OutputSettings struct {
	Dir         string
	TemplateDir string
}

// LoggingSettings configures the log file, its rotation size, retention and level.
type LoggingSettings struct {
	File      string
	Rotation  string
	Retention string
	Level     string
}

// ServerSettings configures the report server.
type ServerSettings struct {
	Addr            string
	PublicURL       string
	DefaultLanguage string
}

// NewSettings resolves every recognised key of t against its default.
func NewSettings(t *Tree) Settings {
	baseURL := strings.TrimSuffix(t.String("github.base_url", "https://api.github.com"), "/")
	languages := t.Strings("fetch.languages", []string{"python"})

	return Settings{
		GitHub: GitHubSettings{
			BaseURL:           baseURL,
			GraphQLURL:        t.String("github.graphql_url", baseURL+"/graphql"),
			Token:             resolved(t.String("github.api_token", "")),
			MaxRetries:        positive(t.Int("github.rate_limit.max_retries", 3), 1),
			BackoffBase:       time.Duration(positive(t.Int("github.rate_limit.backoff_base_ms", 1000), 1)) * time.Millisecond,
			MaxRateLimitWaits: nonNegative(t.Int("github.rate_limit.max_waits", 5)),
		},
		Fetch: FetchSettings{
			LookbackDays: nonNegative(t.Int("fetch.time_range", 1)),
			MinStars:     nonNegative(t.Int("fetch.min_stars", 100)),
			PerPage:      positive(t.Int("fetch.max_repos_per_language", 10), 10),
			Languages:    languages,
			Timeout:      time.Duration(nonNegative(t.Int("fetch.timeout_seconds", 300))) * time.Second,
		},
		Output: OutputSettings{
			Dir:         t.String("output.output_dir", "data/daily"),
			TemplateDir: t.String("output.template_dir", "templates"),
		},
		Logging: LoggingSettings{
			File:      t.String("logging.file", "data/logs/collector.log"),
			Rotation:  t.String("logging.rotation", "10 MB"),
			Retention: t.String("logging.retention", "30 days"),
			Level:     t.String("logging.level", "INFO"),
		},
		Server: ServerSettings{
			Addr:            t.String("server.addr", "127.0.0.1:5000"),
			PublicURL:       strings.TrimSuffix(t.String("server.public_url", "http://127.0.0.1:5000"), "/"),
			DefaultLanguage: t.String("server.default_language", languages[0]),
		},
	}
}

// resolved drops a value that is still an unexpanded $VAR or ${VAR} reference.
func resolved(v string) string {
	if v != "" && envPattern.FindString(v) == v {
		return ""
	}
	return v
}

func positive(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
