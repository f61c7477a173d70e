package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/EgorDm/nauman/pkg/core"
	"github.com/EgorDm/nauman/pkg/flow"
)

func dur(d time.Duration) *time.Duration { return &d }

func sampleFlow() (*flow.Flow, []flow.TaskResult) {
	f := flow.New("job", "Job", core.Env{}, "")
	f.Append("a", &flow.Task{Name: "A", Run: "true"}, "")
	f.Append("h", &flow.Task{Name: "H", Run: "true", IsHook: true}, "a")
	f.Append("b", &flow.Task{Name: "B", Run: "false"}, "")
	f.Append("c", &flow.Task{Name: "C", Run: "true"}, "")

	results := []flow.TaskResult{
		{ID: "a", ExitCode: 0, Duration: dur(120 * time.Millisecond)},
		{ID: "h", Focus: "a", ExitCode: 2, Duration: dur(5 * time.Millisecond)},
		{ID: "b", ExitCode: 1, Duration: dur(2 * time.Second)},
		{ID: "c", ExitCode: 0, Aborted: true},
	}
	return f, results
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		result flow.TaskResult
		want   Status
	}{
		{"passed", flow.TaskResult{ExitCode: 0}, StatusPassed},
		{"failed", flow.TaskResult{ExitCode: 3}, StatusFailed},
		{"skipped", flow.TaskResult{ExitCode: 0, Aborted: true}, StatusSkipped},
		{"skipped beats exit code", flow.TaskResult{ExitCode: 1, Aborted: true}, StatusSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.result); got != tt.want {
				t.Errorf("StatusOf(%+v)=%v, want %v", tt.result, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	f, results := sampleFlow()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)

	r := Build(f, results, true, start, end)

	if r.Status != StatusFailed {
		t.Errorf("Status=%v, want failed", r.Status)
	}
	if r.JobID != "job" || r.JobName != "Job" {
		t.Errorf("job identity=%s/%s", r.JobID, r.JobName)
	}
	if r.Duration != 3000 {
		t.Errorf("Duration=%d, want 3000", r.Duration)
	}

	want := Summary{Total: 4, Passed: 1, Failed: 2, Skipped: 1}
	if r.Summary != want {
		t.Errorf("Summary=%+v, want %+v", r.Summary, want)
	}

	if len(r.Tasks) != 4 {
		t.Fatalf("len(Tasks)=%d, want 4", len(r.Tasks))
	}
	hook := r.Tasks[1]
	if !hook.Hook || hook.Name != "H" || hook.Status != StatusFailed {
		t.Errorf("hook entry=%+v", hook)
	}
	skipped := r.Tasks[3]
	if skipped.Status != StatusSkipped || skipped.Duration != nil {
		t.Errorf("skipped entry=%+v, want skipped with no duration", skipped)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	f, results := sampleFlow()
	r := Build(f, results, true, time.Now(), time.Now())

	dir := t.TempDir()
	if err := Write(dir, r); err != nil {
		t.Fatalf("Write()=%v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded RunReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.Version != Version || decoded.Summary != r.Summary {
		t.Errorf("decoded=%+v", decoded)
	}
}

func TestWrite_MissingDir(t *testing.T) {
	if err := Write("/nonexistent/dir", &RunReport{}); err == nil {
		t.Error("Write() succeeded into a missing directory")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0ms"},
		{999, "999ms"},
		{1000, "1.0s"},
		{1500, "1.5s"},
		{59999, "60.0s"},
		{60000, "1m 0s"},
		{125000, "2m 5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.ms); got != tt.want {
			t.Errorf("formatDuration(%d)=%q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short stays", "Build", 42, "Build"},
		{"exact stays", "abcde", 5, "abcde"},
		{"long ascii", "abcdefghij", 8, "abcde..."},
		{"multibyte boundary", "ünïcödé-nämé-thät-ïs-löng", 10, "ünïcödé..."},
		{"cjk", "構築タスクの名前がとても長い場合", 8, "構築タスク..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d)=%q, want %q", tt.in, tt.max, got, tt.want)
			}
			for _, r := range got {
				if r == '�' {
					t.Errorf("truncate(%q, %d) produced a replacement rune", tt.in, tt.max)
				}
			}
		})
	}
}

// The printers render to stdout; verify they handle every status without
// panicking.
func TestPrinters(t *testing.T) {
	DisableColors()
	f, results := sampleFlow()

	position := 0
	for _, s := range f.Steps() {
		position++
		PrintTaskStart(position, f.Len(), s.Task, !results[position-1].Aborted)
		PrintTaskEnd(s.Task, results[position-1])
	}
	PrintSummary(Build(f, results, true, time.Now(), time.Now().Add(time.Second)))
}
