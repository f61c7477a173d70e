package shell

import (
	"reflect"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Kind
		wantErr  bool
	}{
		{"empty defaults", "", DefaultKind, false},
		{"sh", "sh", KindSh, false},
		{"bash", "bash", KindBash, false},
		{"zsh", "zsh", KindZsh, false},
		{"pwsh", "pwsh", KindPwsh, false},
		{"unknown", "tcsh", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKind(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q)=%v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseKind(%q)=%q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolve_PathOverride(t *testing.T) {
	prog, args, err := Resolve(KindBash, "/opt/bash", "echo hi")
	if err != nil {
		t.Fatalf("Resolve()=%v", err)
	}
	if prog != "/opt/bash" {
		t.Errorf("program=%q, want /opt/bash", prog)
	}
	if want := []string{"-c", "echo hi"}; !reflect.DeepEqual(args, want) {
		t.Errorf("args=%v, want %v", args, want)
	}
}

func TestResolve_ArgvPerKind(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		expected []string
	}{
		{"sh family", KindSh, []string{"-c", "true"}},
		{"pwsh", KindPwsh, []string{"-NoProfile", "-Command", "true"}},
		{"cmd", KindCmd, []string{"/C", "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, args, err := Resolve(tt.kind, "/bin/fake", "true")
			if err != nil {
				t.Fatalf("Resolve()=%v", err)
			}
			if !reflect.DeepEqual(args, tt.expected) {
				t.Errorf("args=%v, want %v", args, tt.expected)
			}
		})
	}
}

func TestResolve_LookupFailure(t *testing.T) {
	if _, _, err := Resolve(Kind("definitely-not-a-shell"), "", "true"); err == nil {
		t.Fatal("Resolve() succeeded for a missing executable")
	}
}
