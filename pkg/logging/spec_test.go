package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/EgorDm/nauman/pkg/config"
)

func boolPtr(b bool) *bool { return &b }

func TestSpecFromConfig_ConsoleExpandsPerStream(t *testing.T) {
	spec, err := SpecFromConfig(
		[]config.LogConfig{{Type: config.LogConsole, Internal: true}},
		t.TempDir(), 1, "build", NewFileRegistry(),
	)
	if err != nil {
		t.Fatalf("SpecFromConfig()=%v", err)
	}

	if len(spec.Pipes) != 2 {
		t.Fatalf("len(Pipes)=%d, want 2", len(spec.Pipes))
	}
	if !spec.Pipes[0].Stdout || spec.Pipes[0].Stderr {
		t.Errorf("first pipe streams=%+v, want stdout only", spec.Pipes[0])
	}
	if spec.Pipes[1].Stdout || !spec.Pipes[1].Stderr {
		t.Errorf("second pipe streams=%+v, want stderr only", spec.Pipes[1])
	}
	// Audit events land on the stdout side only, never twice.
	if !spec.Pipes[0].Internal || spec.Pipes[1].Internal {
		t.Errorf("internal flags=%v,%v, want true,false",
			spec.Pipes[0].Internal, spec.Pipes[1].Internal)
	}
}

func TestSpecFromConfig_FileRegistryShared(t *testing.T) {
	dir := t.TempDir()
	files := NewFileRegistry()
	cfgs := []config.LogConfig{{Type: config.LogFile, Name: "job.log"}}

	specA, err := SpecFromConfig(cfgs, dir, 1, "a", files)
	if err != nil {
		t.Fatalf("SpecFromConfig()=%v", err)
	}
	specB, err := SpecFromConfig(cfgs, dir, 2, "b", files)
	if err != nil {
		t.Fatalf("SpecFromConfig()=%v", err)
	}

	if specA.Pipes[0].Sink != specB.Pipes[0].Sink {
		t.Error("job log sink not shared across tasks")
	}
	defer files.CloseAll()
}

func TestSpecFromConfig_SplitFilePerTask(t *testing.T) {
	dir := t.TempDir()
	files := NewFileRegistry()
	defer files.CloseAll()
	cfgs := []config.LogConfig{{Type: config.LogFile, Split: true}}

	if _, err := SpecFromConfig(cfgs, dir, 1, "build", files); err != nil {
		t.Fatalf("SpecFromConfig()=%v", err)
	}
	if _, err := SpecFromConfig(cfgs, dir, 2, "deploy", files); err != nil {
		t.Fatalf("SpecFromConfig()=%v", err)
	}
	files.FlushAll()

	for _, name := range []string{"001-build.log", "002-deploy.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("split file %s missing: %v", name, err)
		}
	}
}

func TestSpecFromConfig_StreamToggles(t *testing.T) {
	dir := t.TempDir()
	files := NewFileRegistry()
	defer files.CloseAll()

	spec, err := SpecFromConfig([]config.LogConfig{{
		Type:   config.LogFile,
		Name:   "errors.log",
		Stdout: boolPtr(false),
	}}, dir, 1, "x", files)
	if err != nil {
		t.Fatalf("SpecFromConfig()=%v", err)
	}
	if spec.Pipes[0].Stdout || !spec.Pipes[0].Stderr {
		t.Errorf("pipe=%+v, want stderr only", spec.Pipes[0])
	}
}

func TestSpec_DualAndInternal(t *testing.T) {
	sink := &recordSink{}
	spec := Spec{Pipes: []Pipe{
		{Sink: sink, Stdout: true, Stderr: true, Internal: true},
		{Sink: NewNullSink(), Stdout: true},
	}}

	dual := spec.Dual()
	if err := dual.WriteStream(StreamStdout, []byte("o")); err != nil {
		t.Fatalf("WriteStream()=%v", err)
	}
	if err := dual.WriteStream(StreamStderr, []byte("e")); err != nil {
		t.Fatalf("WriteStream()=%v", err)
	}
	if len(sink.calls) != 2 {
		t.Errorf("sink received %d calls, want both streams", len(sink.calls))
	}

	internal := spec.Internal()
	if _, err := internal.Write([]byte("audit")); err != nil {
		t.Fatalf("internal Write()=%v", err)
	}
	if len(sink.calls) != 3 {
		t.Errorf("sink received %d calls, want audit write included", len(sink.calls))
	}
}
