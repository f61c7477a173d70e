package executor

import "testing"

func TestResolveCwd(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		override string
		expected string
	}{
		{"no override", "/run", "", "/run"},
		{"absolute override", "/run", "/elsewhere", "/elsewhere"},
		{"relative override", "/run", "sub/dir", "/run/sub/dir"},
		{"dot override", "/run", ".", "/run"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveCwd(tt.current, tt.override); got != tt.expected {
				t.Errorf("ResolveCwd(%q, %q)=%q, want %q", tt.current, tt.override, got, tt.expected)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if StateRunning.String() != "running" || StateFailed.String() != "failed" {
		t.Errorf("state names: %q, %q", StateRunning, StateFailed)
	}
}
