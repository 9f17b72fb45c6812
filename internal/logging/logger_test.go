package logging

import (
	"path/filepath"
	"testing"
)

func TestNewBuildsLoggerForBothModes(t *testing.T) {
	t.Parallel()

	for _, development := range []bool{true, false} {
		logger, err := New(Options{Development: development, Level: "debug"})
		if err != nil {
			t.Fatalf("New(development=%v) error = %v", development, err)
		}
		logger.Debug("probe")
		_ = logger.Sync()
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{Level: "shouty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWithFileSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kitscout.log")
	logger, err := New(Options{FilePath: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()
}
