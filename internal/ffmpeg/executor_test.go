package ffmpeg

import (
	"context"
	stderrors "errors"
	"iter"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/five82/mixit/internal/errors"
	"github.com/five82/mixit/internal/manifest"
)

// fakeProcess replays canned stderr lines. With hang set it blocks after the
// last line until killed.
type fakeProcess struct {
	lines    []string
	exitCode int
	hang     bool

	killed   chan struct{}
	killOnce sync.Once
}

func newFakeProcess(exitCode int, hang bool, lines ...string) *fakeProcess {
	return &fakeProcess{lines: lines, exitCode: exitCode, hang: hang, killed: make(chan struct{})}
}

func (p *fakeProcess) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range p.lines {
			select {
			case <-p.killed:
				return
			default:
			}
			if !yield(l) {
				return
			}
		}
		if p.hang {
			<-p.killed
		}
	}
}

func (p *fakeProcess) Wait() (int, error) {
	select {
	case <-p.killed:
		return -1, nil
	default:
		return p.exitCode, nil
	}
}

func (p *fakeProcess) Kill() error {
	p.killOnce.Do(func() { close(p.killed) })
	return nil
}

type fakeSpawner struct {
	proc     *fakeProcess
	err      error
	binary   string
	args     []string
	manifest map[string]string
}

func (s *fakeSpawner) Spawn(_ context.Context, binary string, args []string) (Process, error) {
	s.binary = binary
	s.args = args
	s.manifest = make(map[string]string)
	for i, a := range args {
		if a == "-i" && strings.HasSuffix(args[i+1], ".txt") {
			data, err := os.ReadFile(args[i+1])
			if err == nil {
				s.manifest[args[i+1]] = string(data)
			}
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.proc, nil
}

func testGraph(t *testing.T) *CommandGraph {
	t.Helper()
	g, err := BuildGraph(GraphRequest{
		Video:      playlist("v", 40, 40),
		Audio:      playlist("a", 60),
		Target:     100,
		Policy:     BlendFastConcat,
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Container:  "mp4",
		Manifests:  manifest.NewSet(t.TempDir(), "run"),
	})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	return g
}

func assertManifestsRemoved(t *testing.T, g *CommandGraph) {
	t.Helper()
	for _, f := range g.Manifests.Files() {
		if _, err := os.Stat(f); !os.IsNotExist(err) {
			t.Errorf("manifest %s still exists", f)
		}
	}
}

func TestRunSuccess(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	proc := newFakeProcess(0, false,
		"Input #0, concat, from 'list':",
		"frame=1 time=00:00:25.00 speed=10x",
		"frame=2 time=00:00:50.00 speed=10x",
		"frame=3 time=00:01:40.00 speed=10x",
	)
	spawner := &fakeSpawner{proc: proc}
	g := testGraph(t)

	var lines []string
	var fractions []float64
	result, err := NewRunner("ffmpeg-test", WithSpawner(spawner)).Run(context.Background(), g, 100, Callbacks{
		OnLine:     func(l string) { lines = append(lines, l) },
		OnProgress: func(s ProgressState) { fractions = append(fractions, s.Fraction) },
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if spawner.binary != "ffmpeg-test" || !slices.Equal(spawner.args, g.Args()) {
		t.Errorf("spawned %s %v", spawner.binary, spawner.args)
	}
	if len(spawner.manifest) != 2 {
		t.Errorf("expected both manifests on disk at spawn time, saw %v", spawner.manifest)
	}
	for _, contents := range spawner.manifest {
		if !strings.HasPrefix(contents, "file '") {
			t.Errorf("unexpected manifest contents %q", contents)
		}
	}
	if len(lines) != 4 || !slices.Equal(result.Lines, lines) {
		t.Errorf("lines = %v, result lines = %v", lines, result.Lines)
	}
	want := []float64{0.25, 0.5, 1, 1}
	if !slices.Equal(fractions, want) {
		t.Errorf("fractions = %v, want %v", fractions, want)
	}
	if result.ExitCode != 0 || result.OutputPath != g.OutputPath {
		t.Errorf("result = %+v", result)
	}
	assertManifestsRemoved(t, g)
}

func TestRunNonzeroExit(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	proc := newFakeProcess(1, false,
		"frame=1 time=00:00:10.00",
		"[concat @ 0x1] DTS out of order",
		"Conversion failed!",
	)
	g := testGraph(t)
	result, err := NewRunner("ffmpeg", WithSpawner(&fakeSpawner{proc: proc})).Run(context.Background(), g, 100, Callbacks{})
	if !errors.IsMixFailed(err) {
		t.Fatalf("expected mix failure, got %v", err)
	}
	if !strings.Contains(err.Error(), errors.MixFailedHint) {
		t.Errorf("error missing codec hint: %v", err)
	}
	var cmdErr *errors.CommandError
	if !stderrors.As(err, &cmdErr) || !strings.Contains(cmdErr.Stderr, "Conversion failed!") {
		t.Errorf("expected stderr tail in command error, got %v", err)
	}
	if result == nil || len(result.Lines) != 3 || result.ExitCode != 1 {
		t.Errorf("raw lines should remain available, got %+v", result)
	}
	assertManifestsRemoved(t, g)
}

func TestRunSpawnFailure(t *testing.T) {
	g := testGraph(t)
	spawner := &fakeSpawner{err: stderrors.New("exec: not found")}
	_, err := NewRunner("ffmpeg", WithSpawner(spawner)).Run(context.Background(), g, 100, Callbacks{})
	if !errors.IsKind(err, errors.KindCommand) {
		t.Fatalf("expected command error, got %v", err)
	}
	assertManifestsRemoved(t, g)
}

func TestRunCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proc := newFakeProcess(0, true, "frame=1 time=00:00:01.00")
	g := testGraph(t)
	result, err := NewRunner("ffmpeg", WithSpawner(&fakeSpawner{proc: proc})).Run(ctx, g, 100, Callbacks{
		OnLine: func(string) { cancel() },
	})
	if !errors.IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("cancellation should wrap context.Canceled: %v", err)
	}
	if len(result.Lines) != 1 {
		t.Errorf("expected the line read before cancel, got %v", result.Lines)
	}
	assertManifestsRemoved(t, g)
}

func TestRunAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	spawner := &fakeSpawner{proc: newFakeProcess(0, false)}
	_, err := NewRunner("ffmpeg", WithSpawner(spawner)).Run(ctx, testGraph(t), 100, Callbacks{})
	if !errors.IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if spawner.binary != "" {
		t.Error("process should not be spawned for a cancelled context")
	}
}

func TestRunIdleTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	proc := newFakeProcess(0, true, "frame=1 time=00:00:01.00")
	g := testGraph(t)
	runner := NewRunner("ffmpeg", WithSpawner(&fakeSpawner{proc: proc}), WithIdleTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := runner.Run(context.Background(), g, 100, Callbacks{})
	if !errors.IsKind(err, errors.KindIdleTimeout) {
		t.Fatalf("expected idle timeout, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("idle timeout took too long: %s", time.Since(start))
	}
	assertManifestsRemoved(t, g)
}

func TestRunManifestWriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := BuildGraph(GraphRequest{
		Video:      playlist("v", 10),
		Target:     5,
		Policy:     BlendNone,
		OutputPath: "/out/x.mp4",
		Container:  "mp4",
		Manifests:  manifest.NewSet(blocker, "bad"),
	})
	if err != nil {
		t.Fatal(err)
	}
	spawner := &fakeSpawner{proc: newFakeProcess(0, false)}
	_, err = NewRunner("ffmpeg", WithSpawner(spawner)).Run(context.Background(), g, 5, Callbacks{})
	if !errors.IsKind(err, errors.KindIO) {
		t.Fatalf("expected IO error, got %v", err)
	}
	if spawner.binary != "" {
		t.Error("process should not start when manifests cannot be written")
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs require a unix shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestExecSpawnerSplitsCarriageReturns(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bin := writeScript(t, `printf 'header\n' >&2
printf 'frame=1 time=00:00:02.00\rframe=2 time=00:00:04.00\r' >&2
printf '\n\nlast line' >&2
exit 0
`)
	var fractions []float64
	result, err := NewRunner(bin).Run(context.Background(), testGraph(t), 4, Callbacks{
		OnProgress: func(s ProgressState) { fractions = append(fractions, s.Fraction) },
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	wantLines := []string{"header", "frame=1 time=00:00:02.00", "frame=2 time=00:00:04.00", "last line"}
	if !slices.Equal(result.Lines, wantLines) {
		t.Errorf("Lines = %q, want %q", result.Lines, wantLines)
	}
	if !slices.Equal(fractions, []float64{0.5, 1, 1}) {
		t.Errorf("fractions = %v", fractions)
	}
}

func TestExecSpawnerExitCode(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bin := writeScript(t, "echo 'Unknown encoder' >&2\nexit 3\n")
	result, err := NewRunner(bin).Run(context.Background(), testGraph(t), 10, Callbacks{})
	if !errors.IsMixFailed(err) {
		t.Fatalf("expected mix failure, got %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestExecSpawnerCancelKillsProcessGroup(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bin := writeScript(t, "printf 'time=00:00:01.00\\n' >&2\nsleep 30\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	_, err := NewRunner(bin).Run(ctx, testGraph(t), 10, Callbacks{
		OnProgress: func(ProgressState) { cancel() },
	})
	if !errors.IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("cancel did not stop the process promptly: %s", elapsed)
	}
}

func TestSplitLines(t *testing.T) {
	input := "a\r\nb\rc\n\n  d  \r"
	var got []string
	for line := range splitLines(strings.NewReader(input)) {
		got = append(got, line)
	}
	if !slices.Equal(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("splitLines = %q", got)
	}

	// Stops early when the consumer does.
	got = got[:0]
	for line := range splitLines(strings.NewReader("1\n2\n3\n")) {
		got = append(got, line)
		break
	}
	if !slices.Equal(got, []string{"1"}) {
		t.Errorf("early stop = %q", got)
	}
}
