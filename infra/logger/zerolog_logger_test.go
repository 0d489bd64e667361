package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
	l.Infow("info", map[string]any{"k": 1})
	l.Warnw("warn", nil)
}

func TestSetup_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "homeenergy.log")
	closer, err := Setup(Options{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = Setup(Options{})
	})

	New("history").Infow("dataset loaded", map[string]any{"records": 3})
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `"component":"history"`), out)
	assert.True(t, strings.Contains(out, `"records":3`), out)
}

func TestSetup_InvalidLevel(t *testing.T) {
	if _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
