package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetDebugLogger(t *testing.T) {
	t.Helper()

	globalDebugLogger.mu.Lock()
	prevFile := globalDebugLogger.file
	prevBuffer := append([]byte(nil), globalDebugLogger.buffer...)
	prevDiscard := globalDebugLogger.discard
	globalDebugLogger.file = nil
	globalDebugLogger.buffer = nil
	globalDebugLogger.discard = false
	globalDebugLogger.mu.Unlock()

	t.Cleanup(func() {
		globalDebugLogger.mu.Lock()
		if globalDebugLogger.file != nil {
			_ = globalDebugLogger.file.Close()
		}
		globalDebugLogger.file = prevFile
		globalDebugLogger.buffer = prevBuffer
		globalDebugLogger.discard = prevDiscard
		globalDebugLogger.mu.Unlock()
	})
}

func TestBufferedMessagesFlushToFile(t *testing.T) {
	resetDebugLogger(t)

	Printf("before %d", 1)
	Warnf("skipped %s", "/tmp/project")

	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, SetFile(path))
	Println("after")
	require.NoError(t, Close())

	data, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "before 1")
	assert.Contains(t, content, "warning: skipped /tmp/project")
	assert.Contains(t, content, "after")
}

func TestEmptyPathDiscards(t *testing.T) {
	resetDebugLogger(t)

	Printf("buffered")
	require.NoError(t, SetFile(""))
	Printf("dropped")

	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()
	assert.True(t, globalDebugLogger.discard)
	assert.Empty(t, globalDebugLogger.buffer)
}

func TestSetFileFailureDiscardsLogs(t *testing.T) {
	resetDebugLogger(t)

	logPath := filepath.Join(t.TempDir(), "missing", "nested", "debug.log")
	require.Error(t, SetFile(logPath))

	Printf("should be discarded")

	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()
	assert.True(t, globalDebugLogger.discard)
	assert.Empty(t, globalDebugLogger.buffer)
}

func TestCloseWithoutFile(t *testing.T) {
	resetDebugLogger(t)
	assert.NoError(t, Close())
}
