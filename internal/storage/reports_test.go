package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-trending/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
}

func TestReportStore_WriteOverwritesSameDay(t *testing.T) {
	store := NewReportStore(filepath.Join(t.TempDir(), "data", "daily"))

	path, err := store.Write(domain.Report{Language: "python", Date: day(1), Markdown: "first run"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), "2024-01-01_python.md"), path)

	_, err = store.Write(domain.Report{Language: "python", Date: day(1), Markdown: "second run"})
	require.NoError(t, err)

	content, err := store.Read("2024-01-01_python.md")
	require.NoError(t, err)
	assert.Equal(t, "second run", content)
}

func TestReportStore_ListAndLatest(t *testing.T) {
	store := NewReportStore(t.TempDir())
	for _, r := range []domain.Report{
		{Language: "python", Date: day(1)},
		{Language: "python", Date: day(3)},
		{Language: "go", Date: day(2)},
	} {
		_, err := store.Write(r)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(store.Path("notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(store.Path("archive.md"), 0755))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03_python.md", "2024-01-02_go.md", "2024-01-01_python.md"}, names)

	latest, err := store.Latest("python")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03_python.md", latest)

	_, err = store.Latest("rust")
	assert.True(t, eris.Is(err, ErrReportNotFound))

	assert.True(t, store.Exists("2024-01-02_go.md"))
	assert.False(t, store.Exists("archive.md"))
}

func TestReportStore_MissingDirectory(t *testing.T) {
	store := NewReportStore(filepath.Join(t.TempDir(), "absent"))

	_, err := store.List()
	assert.True(t, os.IsNotExist(err))

	_, err = store.Read("2024-01-01_python.md")
	assert.True(t, eris.Is(err, ErrReportNotFound))

	_, err = store.Latest("python")
	assert.True(t, eris.Is(err, ErrReportNotFound))
}

func TestReportStore_WriteFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	store := NewReportStore(filepath.Join(blocker, "daily"))
	_, err := store.Write(domain.Report{Language: "python", Date: day(1)})
	assert.Error(t, err)
}
