// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout used for report dates and the search API's created qualifier.
const DateLayout = "2006-01-02"

// Repository holds the fields of a GitHub repository that a trending report needs.
// It is the core domain entity of this application.
type Repository struct {
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	URL         string    `json:"html_url"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Language    string    `json:"language,omitempty"`
	Description string    `json:"description,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasDescription reports whether the repository carries a description.
func (r Repository) HasDescription() bool {
	return r.Description != ""
}

// Query describes one trending search for a single language.
type Query struct {
	Language     string
	LookbackDays int
	MinStars     int
	PerPage      int
}

// String builds the search qualifiers relative to now.
func (q Query) String(now time.Time) string {
	since := now.AddDate(0, 0, -q.LookbackDays).Format(DateLayout)
	language := q.Language
	if strings.ContainsAny(language, " \t") {
		language = `"` + language + `"`
	}
	return fmt.Sprintf("language:%s created:>=%s stars:>=%d", language, since, q.MinStars)
}

// Report is one rendered daily report for a language.
type Report struct {
	Language     string
	Date         time.Time
	Repositories []Repository
	Markdown     string
}

// FileName returns the name a report is persisted under: {YYYY-MM-DD}_{language}.md.
func (r Report) FileName() string {
	return ReportFileName(r.Date, r.Language)
}

// ReportFileName returns the file name for the report of language on date.
func ReportFileName(date time.Time, language string) string {
	return fmt.Sprintf("%s_%s.md", date.Format(DateLayout), LanguageSlug(language))
}

var slugReplacer = strings.NewReplacer("+", "p", "#", "sharp", " ", "-", "\t", "-")

// LanguageSlug turns a language name into the file name segment of its reports,
// e.g. "C++" -> "cpp", "C#" -> "csharp", "Jupyter Notebook" -> "jupyter-notebook".
// The result only holds characters from [a-z0-9_-].
func LanguageSlug(language string) string {
	slug := slugReplacer.Replace(strings.ToLower(strings.TrimSpace(language)))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, slug)
}

// RateLimit is the API quota reported by GitHub.
type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Used      int       `json:"used"`
	ResetAt   time.Time `json:"reset_at"`
}
