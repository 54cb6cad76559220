package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `# GitHub python Trending Report (2024-01-01)

Collected 4 trending repositories today.

## [octo/one](https://github.com/octo/one)
## [octo/two](https://github.com/octo/two)
### [octo/three](https://github.com/octo/three)
## [octo/four](https://github.com/octo/four)

Generated at: 2024-01-01 08:00:00
`

func TestClient_LatestUpdate(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		expectedErr string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"content": "# Title", "view_url": "http://127.0.0.1:5000/view-markdown?filename=a.md", "generated_at": "2024-01-01 08:00:00"}`,
		},
		{
			name:        "server error body",
			status:      http.StatusInternalServerError,
			body:        `{"error": "failed to generate report: report not found", "status": 500}`,
			expectedErr: "failed to generate report",
		},
		{
			name:        "unexpected status",
			status:      http.StatusBadGateway,
			body:        `{}`,
			expectedErr: "server returned 502",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/latest-update", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			update, err := New(server.URL+"/").LatestUpdate(context.Background())
			if tc.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "# Title", update.Content)
			assert.Equal(t, "http://127.0.0.1:5000/view-markdown?filename=a.md", update.ViewURL)
			assert.Equal(t, "2024-01-01 08:00:00", update.GeneratedAt)
		})
	}
}

func TestNewDigest(t *testing.T) {
	d := NewDigest(&Update{Content: sampleReport, ViewURL: "http://view"})

	assert.Equal(t, "GitHub python Trending Report (2024-01-01)", d.Title)
	assert.Equal(t, "Collected 4 trending repositories today.", d.Summary)
	assert.Equal(t, []string{"octo/one", "octo/two", "octo/three"}, d.Projects)
	assert.Equal(t, "2024-01-01 08:00:00", d.UpdatedAt)
	assert.Equal(t, "http://view", d.ViewURL)
	assert.Equal(t, "GitHub python Trending Report (2024-01-01)\n\n"+
		"Collected 4 trending repositories today.\n\n"+
		"Top projects:\nocto/one\nocto/two\nocto/three\n\n"+
		"Updated: 2024-01-01 08:00:00\n\n"+
		"http://view", d.String())
}

func TestNewDigest_Empty(t *testing.T) {
	d := NewDigest(&Update{})
	assert.Equal(t, "GitHub Trending Report", d.Title)
	assert.Empty(t, d.Projects)
	assert.Equal(t, "GitHub Trending Report", d.String())
}
