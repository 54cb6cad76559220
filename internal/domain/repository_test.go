package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuery_String(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		query    Query
		expected string
	}{
		{
			name:     "one day lookback",
			query:    Query{Language: "python", LookbackDays: 1, MinStars: 100},
			expected: "language:python created:>=2024-03-09 stars:>=100",
		},
		{
			name:     "week lookback crosses month boundary",
			query:    Query{Language: "go", LookbackDays: 10, MinStars: 5},
			expected: "language:go created:>=2024-02-29 stars:>=5",
		},
		{
			name:     "language with a space is quoted",
			query:    Query{Language: "Jupyter Notebook", LookbackDays: 1, MinStars: 100},
			expected: `language:"Jupyter Notebook" created:>=2024-03-09 stars:>=100`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.query.String(now))
		})
	}
}

func TestReport_FileName(t *testing.T) {
	report := Report{Language: "python", Date: time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)}
	assert.Equal(t, "2024-01-01_python.md", report.FileName())
}

func TestLanguageSlug(t *testing.T) {
	testCases := []struct {
		language string
		expected string
	}{
		{language: "python", expected: "python"},
		{language: "Go", expected: "go"},
		{language: "c++", expected: "cpp"},
		{language: "C#", expected: "csharp"},
		{language: "F#", expected: "fsharp"},
		{language: "Jupyter Notebook", expected: "jupyter-notebook"},
		{language: "Objective-C", expected: "objective-c"},
		{language: "../etc", expected: "etc"},
		{language: "Ren'Py", expected: "renpy"},
	}
	for _, tc := range testCases {
		t.Run(tc.language, func(t *testing.T) {
			assert.Equal(t, tc.expected, LanguageSlug(tc.language))
		})
	}

	report := Report{Language: "C++", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2024-01-01_cpp.md", report.FileName())
}

func TestRepository_HasDescription(t *testing.T) {
	assert.False(t, Repository{}.HasDescription())
	assert.True(t, Repository{Description: "fast"}.HasDescription())
}
