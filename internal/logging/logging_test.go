package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupDisabled(t *testing.T) {
	l, err := Setup(t.TempDir(), true, true)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if l != nil {
		t.Fatal("expected nil logger when logging is disabled")
	}
	// A nil logger must be safe to use.
	l.Info("ignored %d", 1)
	l.Debug("ignored")
	if l.FilePath() != "" || l.Verbose() {
		t.Error("nil logger should report no path and no verbosity")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil logger: %v", err)
	}
}

func TestSetupWritesPrefixedLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := Setup(dir, false, false)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	if !strings.HasPrefix(filepath.Base(l.FilePath()), "mixit_run_") {
		t.Errorf("unexpected log file name %s", l.FilePath())
	}

	l.Info("planned %d clips", 3)
	l.Debug("hidden debug line")
	l.Warn("probe failed for %s", "a.mp4")
	l.Error("boom")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(l.FilePath())
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"[INFO] mixit starting", "[INFO] planned 3 clips", "[WARN] probe failed for a.mp4", "[ERROR] boom"} {
		if !strings.Contains(text, want) {
			t.Errorf("log missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "hidden debug line") {
		t.Error("debug line written without verbose")
	}
}

func TestSetupVerbose(t *testing.T) {
	l, err := Setup(t.TempDir(), true, false)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	if !l.Verbose() {
		t.Error("expected verbose logger")
	}
	l.Debug("raw line %q", "frame=1")
	data, _ := os.ReadFile(l.FilePath())
	if !strings.Contains(string(data), `[DEBUG] raw line "frame=1"`) {
		t.Errorf("debug line missing:\n%s", data)
	}
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := Global()
	t.Cleanup(func() { SetGlobal(prev) })

	Init(LevelWarn, &buf)
	Info("dropped")
	Warn("kept", "path", "/a.mp3")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "path=/a.mp3") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	if l.Logger == nil {
		t.Error("discard logger should wrap a slog logger")
	}
}

func TestSectionAndWriteAfterClose(t *testing.T) {
	l, err := Setup(t.TempDir(), false, false)
	if err != nil {
		t.Fatal(err)
	}
	l.Section("job 1 of 2: morning")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	l.Info("after close")
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	data, err := os.ReadFile(l.FilePath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "===== JOB 1 OF 2: MORNING =====") {
		t.Errorf("section banner missing:\n%s", data)
	}
	if strings.Contains(string(data), "after close") {
		t.Error("write after Close should be dropped")
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := Global()
	t.Cleanup(func() { SetGlobal(prev) })

	Init(LevelDebug, &buf)
	Global().Component("ffmpeg").Info("starting", "args", 4)

	if out := buf.String(); !strings.Contains(out, "component=ffmpeg") || !strings.Contains(out, "args=4") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSetGlobalNilDiscards(t *testing.T) {
	prev := Global()
	t.Cleanup(func() { SetGlobal(prev) })

	SetGlobal(nil)
	Error("dropped")
	if Global() == nil {
		t.Fatal("Global must never return nil")
	}
}
