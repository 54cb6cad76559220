// Package formatter renders trending repositories as a markdown report.
package formatter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rotisserie/eris"

	"github.com/naka-gawa/github-trending/internal/domain"
	"github.com/naka-gawa/github-trending/internal/logging"
)

// TemplateName is the file looked up in the template directory.
const TemplateName = "daily_report.md"

// NoDescription replaces a missing repository description.
const NoDescription = "No description provided."

// ReportData is what the report template is executed with.
type ReportData struct {
	Repos       []domain.Repository
	Language    string
	Date        string
	Total       int
	GeneratedAt string
	Stars       StarStats
}

// StarStats summarises the star counts of a report.
type StarStats struct {
	Total  int
	Mean   float64
	Median float64
}

var funcs = template.FuncMap{
	"describe": describe,
	"join":     strings.Join,
}

// Formatter renders reports from the template directory, falling back to Basic.
type Formatter struct {
	templateDir string
	logger      *logging.Logger
	now         func() time.Time
}

// NewFormatter creates a Formatter reading templates from templateDir.
func NewFormatter(templateDir string, logger *logging.Logger) *Formatter {
	return &Formatter{templateDir: templateDir, logger: logger, now: time.Now}
}

// Format renders the report of language for date. It never fails: any template
// problem is logged and the fixed layout from Basic is returned instead.
func (f *Formatter) Format(repos []domain.Repository, language string, date time.Time) string {
	data := ReportData{
		Repos:       repos,
		Language:    language,
		Date:        date.Format(domain.DateLayout),
		Total:       len(repos),
		GeneratedAt: f.now().Format("2006-01-02 15:04:05"),
		Stars:       starStats(repos),
	}

	out, err := f.render(data)
	if err != nil {
		f.logger.Errorf("Failed to render markdown template, using basic layout: %v", err)
		return Basic(repos, language, date)
	}
	return out
}

func (f *Formatter) render(data ReportData) (string, error) {
	path := filepath.Join(f.templateDir, TemplateName)
	tmpl, err := template.New(TemplateName).Funcs(funcs).Option("missingkey=error").ParseFiles(path)
	if err != nil {
		return "", eris.Wrapf(err, "failed to parse template %s", path)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", eris.Wrapf(err, "failed to execute template %s", path)
	}
	return buf.String(), nil
}

// Basic renders the fixed fallback layout. It only relies on fields every fetched
// repository has, so it cannot fail.
func Basic(repos []domain.Repository, language string, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# GitHub %s Trending Report (%s)\n\n", language, date.Format(domain.DateLayout))
	fmt.Fprintf(&b, "Collected %d trending repositories today.\n\n", len(repos))
	b.WriteString("## Repositories\n")
	for _, r := range repos {
		fmt.Fprintf(&b, "\n### [%s](%s)\n\n", r.FullName, r.URL)
		fmt.Fprintf(&b, "⭐ Stars: %d\n\n", r.Stars)
		b.WriteString(describe(r))
		b.WriteString("\n")
	}
	return b.String()
}

func describe(r domain.Repository) string {
	if !r.HasDescription() {
		return NoDescription
	}
	return r.Description
}

func starStats(repos []domain.Repository) StarStats {
	if len(repos) == 0 {
		return StarStats{}
	}
	data := make(stats.Float64Data, 0, len(repos))
	for _, r := range repos {
		data = append(data, float64(r.Stars))
	}
	sum, _ := stats.Sum(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	return StarStats{Total: int(sum), Mean: mean, Median: median}
}
