// Package storage persists rendered reports as dated markdown files.
package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/naka-gawa/github-trending/internal/domain"
)

// ErrReportNotFound is returned when a named report does not exist.
var ErrReportNotFound = eris.New("report not found")

// ReportStore reads and writes report files in a single directory.
type ReportStore struct {
	dir string
}

// NewReportStore creates a store rooted at dir. The directory is created lazily.
func NewReportStore(dir string) *ReportStore {
	return &ReportStore{dir: dir}
}

// Dir returns the directory reports live in.
func (s *ReportStore) Dir() string {
	return s.dir
}

// Path returns the location of the report called name.
func (s *ReportStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// EnsureDir creates the report directory if needed.
func (s *ReportStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return eris.Wrapf(err, "failed to create output directory %s", s.dir)
	}
	return nil
}

// Write saves the report under its file name, replacing an earlier one for the same day.
func (s *ReportStore) Write(report domain.Report) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}
	path := s.Path(report.FileName())
	if err := os.WriteFile(path, []byte(report.Markdown), 0644); err != nil {
		return "", eris.Wrapf(err, "failed to write report %s", path)
	}
	return path, nil
}

// Read returns the content of the report called name.
func (s *ReportStore) Read(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", eris.Wrapf(ErrReportNotFound, "failed to read %s", name)
		}
		return "", eris.Wrapf(err, "failed to read report %s", name)
	}
	return string(data), nil
}

// Exists reports whether a regular file called name is present.
func (s *ReportStore) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// List returns the markdown files in the directory, newest name first.
// A missing directory yields os.ErrNotExist so callers can tell it apart from an empty one.
func (s *ReportStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, eris.Wrapf(err, "failed to list reports in %s", s.dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Latest returns the newest report name for language.
func (s *ReportStore) Latest(language string) (string, error) {
	names, err := s.List()
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	suffix := "_" + domain.LanguageSlug(language) + ".md"
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			return name, nil
		}
	}
	return "", eris.Wrapf(ErrReportNotFound, "no %s report available", language)
}
