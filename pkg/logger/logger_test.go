package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(LogConfig{Level: "debug", Filename: path, MaxSize: 1})
	require.NoError(t, err)

	l.Info("alert created", zap.Int64("id", 7))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"alert created"`)
	assert.Contains(t, string(data), `"id":7`)
}

func TestInitReplacesProcessLogger(t *testing.T) {
	prev := L()
	defer Init(prev)

	l := zap.NewExample()
	Init(l)
	assert.Same(t, l, L())
}
