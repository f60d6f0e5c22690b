// Package testutil provides testing utilities for habitable
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// KOIHeader is the column header used by test catalogs.
const KOIHeader = "koi_disposition,koi_insol,koi_prad,kepler_name"

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// ObservedLogger returns a logger whose entries at or above level can be inspected.
func ObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// WriteFile writes content to name inside a per-test temporary directory
// and returns the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteGzipFile is WriteFile with the content gzip-compressed.
func WriteGzipFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatalf("compress %s: %v", path, err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("flush %s: %v", path, err)
	}
	return path
}

