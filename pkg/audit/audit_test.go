package audit_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shopapi/pkg/audit"
)

func readTodayLog(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func TestLoggerWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := audit.New(dir)
	assert.NoError(t, err)

	logger.Record(audit.Entry{
		Level:     audit.LevelInfo,
		Message:   "User created successfully - Email: ada@example.com",
		Method:    "POST",
		URL:       "/auth/signup",
		Status:    201,
		RequestID: "req-1",
		Headers:   map[string][]string{"Content-Type": {"application/json"}},
		Payload:   `{"email":"ada@example.com"}`,
	})
	logger.Flush()

	content := readTodayLog(t, dir)
	assert.Contains(t, content, "[INFO]")
	assert.Contains(t, content, "Method: POST")
	assert.Contains(t, content, "URL: /auth/signup")
	assert.Contains(t, content, "Status: 201")
	assert.Contains(t, content, "RequestID: req-1")
	assert.Contains(t, content, "Content-Type: application/json")
	assert.Contains(t, content, `Payload: {"email":"ada@example.com"}`)
	assert.Contains(t, content, "Response: User created successfully - Email: ada@example.com")
}

func TestLoggerPlaceholders(t *testing.T) {
	dir := t.TempDir()
	logger, err := audit.New(dir)
	assert.NoError(t, err)

	logger.Record(audit.Entry{
		Level:   audit.LevelWarn,
		Message: "Incoming request",
		Method:  "GET",
		URL:     "/products",
	})
	logger.Flush()

	content := readTodayLog(t, dir)
	assert.Contains(t, content, "[WARN]")
	assert.Contains(t, content, "Status: UNKNOWN")
	assert.Contains(t, content, "Payload: N/A")
	assert.NotContains(t, content, "RequestID:")
	assert.NotContains(t, content, "Headers:")
}

func TestLoggerAppendsEntries(t *testing.T) {
	dir := t.TempDir()
	logger, err := audit.New(dir)
	assert.NoError(t, err)

	for i := 0; i < 5; i++ {
		logger.Record(audit.Entry{
			Level:   audit.LevelInfo,
			Message: "entry",
			Method:  "GET",
			URL:     "/health",
			Status:  200,
		})
	}
	logger.Flush()

	content := readTodayLog(t, dir)
	assert.Equal(t, 5, strings.Count(content, "Response: entry"))
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	_, err := audit.New(dir)
	assert.NoError(t, err)

	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}
