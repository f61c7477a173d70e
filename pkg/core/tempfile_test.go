package core

import (
	"errors"
	"os"
	"testing"
)

func TestWithTempFile_RemovedOnSuccess(t *testing.T) {
	var seen string
	err := WithTempFile(t.TempDir(), "nauman-*.env", func(path string) error {
		seen = path
		if _, statErr := os.Stat(path); statErr != nil {
			t.Fatalf("temp file not created: %v", statErr)
		}
		return os.WriteFile(path, []byte("FOO=bar\n"), 0644)
	})
	if err != nil {
		t.Fatalf("WithTempFile()=%v", err)
	}

	if _, statErr := os.Stat(seen); !os.IsNotExist(statErr) {
		t.Errorf("temp file %s still exists after return", seen)
	}
}

func TestWithTempFile_RemovedOnError(t *testing.T) {
	sentinel := errors.New("boom")
	var seen string

	err := WithTempFile(t.TempDir(), "nauman-*.env", func(path string) error {
		seen = path
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithTempFile()=%v, want %v", err, sentinel)
	}

	if _, statErr := os.Stat(seen); !os.IsNotExist(statErr) {
		t.Errorf("temp file %s still exists after error", seen)
	}
}

func TestWithTempFile_RemovedOnPanic(t *testing.T) {
	var seen string

	func() {
		defer func() { _ = recover() }()
		_ = WithTempFile(t.TempDir(), "nauman-*.env", func(path string) error {
			seen = path
			panic("step blew up")
		})
	}()

	if _, statErr := os.Stat(seen); !os.IsNotExist(statErr) {
		t.Errorf("temp file %s still exists after panic", seen)
	}
}

func TestWithTempFile_BadDir(t *testing.T) {
	err := WithTempFile("/nonexistent/dir", "nauman-*.env", func(string) error {
		t.Fatal("fn called despite create failure")
		return nil
	})
	if err == nil {
		t.Fatal("WithTempFile() succeeded with bad dir")
	}
}
