package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/naka-gawa/github-trending/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

var reportNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// LatestUpdateResponse is the body of a successful /latest-update call.
type LatestUpdateResponse struct {
	Content     string `json:"content"`
	ViewURL     string `json:"view_url"`
	GeneratedAt string `json:"generated_at"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// FileListResponse is the body of /list-markdown-files.
type FileListResponse struct {
	Files   []string `json:"files"`
	Message string   `json:"message,omitempty"`
}

// LatestUpdate runs a collection and returns the default language's newest report.
// Concurrent callers share a single run.
func (s *Server) LatestUpdate(c echo.Context) error {
	if c.Request().Method == http.MethodOptions {
		return c.NoContent(http.StatusOK)
	}

	// Detached from the request so one disconnecting caller does not fail the shared run.
	runCtx := context.WithoutCancel(c.Request().Context())
	_, err, shared := s.runs.Do("collect", func() (any, error) {
		return s.runner.Run(runCtx)
	})
	if err != nil {
		s.logger.Errorf("Collection run failed, serving the newest existing report: %v", err)
	}
	if shared {
		s.logger.Debugf("Joined an in-flight collection run")
	}

	name, content, err := s.latestReport()
	if err != nil {
		s.logger.Errorf("Failed to load the latest report: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:  fmt.Sprintf("failed to generate report: %v", err),
			Status: http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusOK, LatestUpdateResponse{
		Content:     content,
		ViewURL:     s.viewURL(name),
		GeneratedAt: s.now().Format(timestampLayout),
	})
}

func (s *Server) latestReport() (string, string, error) {
	language := s.settings.DefaultLanguage
	name := domain.ReportFileName(s.now(), language)
	content, err := s.reports.Read(name)
	if err == nil {
		return name, content, nil
	}

	s.logger.Warnf("Today's %s report is unavailable (%v), falling back to the newest one", language, err)
	name, err = s.reports.Latest(language)
	if err != nil {
		return "", "", err
	}
	content, err = s.reports.Read(name)
	if err != nil {
		return "", "", err
	}
	return name, content, nil
}

func (s *Server) viewURL(name string) string {
	return s.settings.PublicURL + "/view-markdown?filename=" + url.QueryEscape(name)
}

// ViewMarkdown renders one report as an HTML page.
func (s *Server) ViewMarkdown(c echo.Context) error {
	filename := c.QueryParam("filename")
	if filename == "" {
		return c.String(http.StatusBadRequest, "missing filename parameter")
	}
	if err := s.validator.Var(filename, "reportname"); err != nil {
		return c.String(http.StatusBadRequest, "invalid filename")
	}
	if !s.reports.Exists(filename) {
		return c.String(http.StatusNotFound, fmt.Sprintf("file %s does not exist", filename))
	}

	content, err := s.reports.Read(filename)
	if err != nil {
		s.logger.Errorf("Failed to read %s: %v", filename, err)
		return c.String(http.StatusInternalServerError, "failed to read report")
	}

	page, err := renderPage(content, s.now())
	if err != nil {
		s.logger.Errorf("Failed to render %s: %v", filename, err)
		return c.String(http.StatusInternalServerError, "failed to render report")
	}
	return c.HTML(http.StatusOK, page)
}

// ListMarkdownFiles lists the available reports, newest first.
func (s *Server) ListMarkdownFiles(c echo.Context) error {
	files, err := s.reports.List()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.JSON(http.StatusOK, FileListResponse{Files: []string{}, Message: "no reports available"})
		}
		s.logger.Errorf("Failed to list reports: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:  "failed to list reports",
			Status: http.StatusInternalServerError,
		})
	}
	return c.JSON(http.StatusOK, FileListResponse{Files: files})
}

func validReportName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return reportNamePattern.MatchString(name) && !strings.Contains(name, "..")
}
