// Package client talks to a running report server.
package client

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
)

const maxDigestProjects = 3

var projectPattern = regexp.MustCompile(`^#{2,3} \[(.*?)\]`)

// Update is the body returned by /latest-update.
type Update struct {
	Content     string `json:"content"`
	ViewURL     string `json:"view_url"`
	GeneratedAt string `json:"generated_at"`
}

type apiError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Client is a report server client.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetHeader("Accept", "application/json").
			// A request triggers a full collection run on the server.
			SetTimeout(10 * time.Minute),
	}
}

// LatestUpdate asks the server to collect and return its newest report.
func (c *Client) LatestUpdate(ctx context.Context) (*Update, error) {
	var (
		update Update
		failed apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&update).
		SetError(&failed).
		Get("/latest-update")
	if err != nil {
		return nil, eris.Wrap(err, "failed to request latest update")
	}
	if resp.IsError() {
		if failed.Error != "" {
			return nil, eris.Errorf("server returned %d: %s", resp.StatusCode(), failed.Error)
		}
		return nil, eris.Errorf("server returned %d", resp.StatusCode())
	}
	return &update, nil
}

// Digest is the short notification form of a report.
type Digest struct {
	Title     string
	Summary   string
	Projects  []string
	UpdatedAt string
	ViewURL   string
}

// NewDigest pulls the headline facts out of an update's markdown.
func NewDigest(u *Update) Digest {
	d := Digest{Title: "GitHub Trending Report", ViewURL: u.ViewURL}
	for _, line := range strings.Split(u.Content, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "# "):
			d.Title = strings.TrimPrefix(line, "# ")
		case strings.HasPrefix(line, "Collected "):
			d.Summary = line
		case strings.HasPrefix(line, "Generated at:"):
			d.UpdatedAt = strings.TrimSpace(strings.TrimPrefix(line, "Generated at:"))
		default:
			if m := projectPattern.FindStringSubmatch(line); m != nil && len(d.Projects) < maxDigestProjects {
				d.Projects = append(d.Projects, m[1])
			}
		}
	}
	return d
}

// String renders the digest as notification text.
func (d Digest) String() string {
	var b strings.Builder
	b.WriteString(d.Title)
	if d.Summary != "" {
		b.WriteString("\n\n" + d.Summary)
	}
	if len(d.Projects) > 0 {
		b.WriteString("\n\nTop projects:\n" + strings.Join(d.Projects, "\n"))
	}
	if d.UpdatedAt != "" {
		b.WriteString("\n\nUpdated: " + d.UpdatedAt)
	}
	if d.ViewURL != "" {
		b.WriteString("\n\n" + d.ViewURL)
	}
	return b.String()
}
