package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/naka-gawa/github-trending/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn)

	logger.Debugf("debug %d", 1)
	logger.Infof("info %d", 2)
	logger.Warnf("warn %d", 3)
	logger.Errorf("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, LevelWarn, ParseLevel("Warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 10, parseQuantity("10 MB", "mb", 1))
	assert.Equal(t, 30, parseQuantity("30 days", "day", 1))
	assert.Equal(t, 5, parseQuantity("5", "day", 1))
	assert.Equal(t, 1, parseQuantity("1 week", "day", 1))
	assert.Equal(t, 1, parseQuantity("", "mb", 1))
	assert.Equal(t, 1, parseQuantity("-3 MB", "mb", 1))
}

func TestSetup_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "collector.log")

	logger, closer, err := Setup(config.LoggingSettings{File: path, Level: "INFO"}, false)
	require.NoError(t, err)

	logger.Infof("collected %s", "python")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] collected python")
}

func TestSetup_NoSinks(t *testing.T) {
	logger, closer, err := Setup(config.LoggingSettings{}, false)
	require.NoError(t, err)
	logger.Errorf("dropped")
	assert.NoError(t, closer.Close())
}
