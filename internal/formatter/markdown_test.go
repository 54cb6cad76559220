package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-trending/internal/domain"
	"github.com/naka-gawa/github-trending/internal/logging"
)

var reportDay = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

func testRepos() []domain.Repository {
	return []domain.Repository{
		{FullName: "octo/alpha", URL: "https://github.com/octo/alpha", Stars: 500, Description: "First", Language: "Python", Topics: []string{"ml", "cli"}},
		{FullName: "octo/beta", URL: "https://github.com/octo/beta", Stars: 150},
	}
}

func newTestFormatter(dir string) *Formatter {
	f := NewFormatter(dir, logging.Discard())
	f.now = func() time.Time { return reportDay }
	return f
}

func TestBasic(t *testing.T) {
	out := Basic(testRepos(), "python", reportDay)

	assert.True(t, strings.HasPrefix(out, "# GitHub python Trending Report (2024-01-01)\n"))
	assert.Contains(t, out, "Collected 2 trending repositories today.")
	assert.Contains(t, out, "### [octo/alpha](https://github.com/octo/alpha)\n\n⭐ Stars: 500\n\nFirst\n")
	assert.Contains(t, out, "### [octo/beta](https://github.com/octo/beta)\n\n⭐ Stars: 150\n\n"+NoDescription+"\n")
	assert.Less(t, strings.Index(out, "octo/alpha"), strings.Index(out, "octo/beta"), "order is preserved")
}

func TestBasic_Empty(t *testing.T) {
	out := Basic(nil, "go", reportDay)
	assert.Contains(t, out, "Collected 0 trending repositories today.")
}

func TestFormatter_Format(t *testing.T) {
	testCases := []struct {
		name     string
		template string // empty means no template file
		contains []string
	}{
		{
			name:     "renders the template with report data",
			template: "{{ .Language }}|{{ .Date }}|{{ .Total }}|{{ .Stars.Total }}|{{ .Stars.Median }}{{ range .Repos }}|{{ .FullName }}:{{ describe . }}{{ end }}",
			contains: []string{"python|2024-01-01|2|650|325|octo/alpha:First|octo/beta:" + NoDescription},
		},
		{
			name:     "falls back when the template is missing",
			contains: []string{"# GitHub python Trending Report (2024-01-01)", "### [octo/alpha]"},
		},
		{
			name:     "falls back when the template does not parse",
			template: "{{ range .Repos }",
			contains: []string{"Collected 2 trending repositories today."},
		},
		{
			name:     "falls back when execution fails",
			template: "{{ .Missing.Field }}",
			contains: []string{"### [octo/beta](https://github.com/octo/beta)"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if tc.template != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateName), []byte(tc.template), 0644))
			}
			out := newTestFormatter(dir).Format(testRepos(), "python", reportDay)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestFormatter_ShippedTemplate(t *testing.T) {
	out := newTestFormatter(filepath.Join("..", "..", "templates")).Format(testRepos(), "python", reportDay)

	assert.Contains(t, out, "# GitHub python Trending Report (2024-01-01)")
	assert.Contains(t, out, "Collected 2 trending repositories today.")
	assert.Contains(t, out, "| 650 | 325.0 | 325.0 |")
	assert.Contains(t, out, "## [octo/alpha](https://github.com/octo/alpha)")
	assert.Contains(t, out, "Topics: ml, cli")
	assert.Contains(t, out, NoDescription)
	assert.Contains(t, out, "Generated at: 2024-01-01 09:30:00")
	assert.NotContains(t, out, "### [", "the template output is not the fallback layout")
}

func TestFormatter_Format_UsesReportDate(t *testing.T) {
	f := newTestFormatter(filepath.Join("..", "..", "templates"))
	f.now = func() time.Time { return time.Date(2024, 1, 2, 0, 5, 0, 0, time.UTC) }

	out := f.Format(testRepos(), "python", reportDay)
	assert.True(t, strings.HasPrefix(out, "# GitHub python Trending Report (2024-01-01)\n"))
	assert.Contains(t, out, "Generated at: 2024-01-02 00:05:00")

	out = NewFormatter(t.TempDir(), logging.Discard()).Format(testRepos(), "python", reportDay)
	assert.True(t, strings.HasPrefix(out, "# GitHub python Trending Report (2024-01-01)\n"), "the fallback uses the report date too")
}

func TestStarStats(t *testing.T) {
	assert.Equal(t, StarStats{}, starStats(nil))
	assert.Equal(t, StarStats{Total: 600, Mean: 200, Median: 150}, starStats([]domain.Repository{{Stars: 400}, {Stars: 150}, {Stars: 50}}))
}
