package mixit

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/five82/mixit/internal/errors"
)

const ffprobeStub = "#!/bin/sh\necho 40\n"

// ffmpegStub reports progress and creates its last argument, the output.
const ffmpegStub = `#!/bin/sh
for last; do :; done
printf 'frame=1 time=00:00:30.00 speed=20x\r' >&2
printf 'frame=2 time=00:01:00.00 speed=20x\r' >&2
: > "$last"
exit 0
`

type env struct {
	videoDir string
	musicDir string
	ffmpeg   string
	ffprobe  string
}

func newEnv(t *testing.T, ffmpegScript string) env {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs require a unix shell")
	}
	root := t.TempDir()
	e := env{
		videoDir: filepath.Join(root, "videos"),
		musicDir: filepath.Join(root, "music"),
		ffmpeg:   filepath.Join(root, "bin", "ffmpeg"),
		ffprobe:  filepath.Join(root, "bin", "ffprobe"),
	}
	for _, dir := range []string{e.videoDir, e.musicDir, filepath.Dir(e.ffmpeg)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"a.mp4", "b.MOV"} {
		if err := os.WriteFile(filepath.Join(e.videoDir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(e.musicDir, "song.mp3"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(e.ffmpeg, []byte(ffmpegScript), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(e.ffprobe, []byte(ffprobeStub), 0o755); err != nil {
		t.Fatal(err)
	}
	return e
}

func (e env) mixer(t *testing.T) *Mixer {
	t.Helper()
	m, err := New(WithTools(e.ffmpeg, e.ffprobe), WithSeed(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNewMissingTools(t *testing.T) {
	dir := t.TempDir()
	_, err := New(WithTools(filepath.Join(dir, "ffmpeg"), filepath.Join(dir, "ffprobe")))
	if !errors.IsKind(err, errors.KindToolNotFound) {
		t.Fatalf("expected tool-not-found, got %v", err)
	}
}

func TestSubmitEventSequence(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	e := newEnv(t, ffmpegStub)
	m := e.mixer(t)

	var lines, progress, done int
	var last float64
	var doneEvent DoneEvent
	for ev := range m.Submit(context.Background(), Job{
		VideoDir: e.videoDir,
		MusicDir: e.musicDir,
		Duration: 2 * time.Minute,
		Format:   "webm",
	}) {
		if done > 0 {
			t.Fatalf("event %s after DoneEvent", ev.Type())
		}
		switch ev := ev.(type) {
		case LineEvent:
			lines++
		case ProgressEvent:
			progress++
			if ev.Fraction < last {
				t.Errorf("progress went backwards: %v < %v", ev.Fraction, last)
			}
			last = ev.Fraction
		case DoneEvent:
			done++
			doneEvent = ev
		}
	}

	if doneEvent.Err != nil {
		t.Fatalf("job failed: %v", doneEvent.Err)
	}
	if done != 1 || lines != 2 || progress != 3 || last != 1 {
		t.Errorf("done=%d lines=%d progress=%d last=%v", done, lines, progress, last)
	}
	if filepath.Ext(doneEvent.OutputPath) != ".mkv" || doneEvent.Substitution == "" {
		t.Errorf("expected webm substitution, got %s %q", doneEvent.OutputPath, doneEvent.Substitution)
	}
	if filepath.Dir(doneEvent.OutputPath) != e.videoDir {
		t.Errorf("output should default to the video folder, got %s", doneEvent.OutputPath)
	}
	if _, err := os.Stat(doneEvent.OutputPath); err != nil {
		t.Errorf("output not created: %v", err)
	}
}

func TestMixInvalidDuration(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	e := newEnv(t, ffmpegStub)
	_, err := e.mixer(t).Mix(context.Background(), Job{VideoDir: e.videoDir}, nil)
	if !errors.IsKind(err, errors.KindInvalidDuration) {
		t.Fatalf("expected invalid duration, got %v", err)
	}
}

func TestMixFailureCarriesHint(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	e := newEnv(t, "#!/bin/sh\necho 'Conversion failed!' >&2\nexit 1\n")
	var warnings []string
	_, err := e.mixer(t).Mix(context.Background(), Job{
		VideoDir: e.videoDir,
		Duration: time.Minute,
		Output:   "out.mp4",
	}, func(ev Event) error {
		if w, ok := ev.(WarningEvent); ok {
			warnings = append(warnings, w.Message)
		}
		return nil
	})
	if !errors.IsMixFailed(err) {
		t.Fatalf("expected mix failure, got %v", err)
	}
	if !strings.Contains(err.Error(), errors.MixFailedHint) {
		t.Errorf("missing hint: %v", err)
	}
	// No music folder: the original audio is kept and the caller is told.
	if len(warnings) != 1 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestMixHandlerErrorCancels(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	e := newEnv(t, "#!/bin/sh\nprintf 'time=00:00:01.00\\n' >&2\nsleep 30\n")
	stop := stderrors.New("stop")

	start := time.Now()
	_, err := e.mixer(t).Mix(context.Background(), Job{
		VideoDir: e.videoDir,
		MusicDir: e.musicDir,
		Duration: time.Minute,
	}, func(ev Event) error {
		if ev.Type() == EventTypeProgress {
			return stop
		}
		return nil
	})
	if !stderrors.Is(err, stop) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Errorf("job was not cancelled promptly")
	}
}

func TestPlanPreview(t *testing.T) {
	e := newEnv(t, ffmpegStub)
	info, err := e.mixer(t).Plan(context.Background(), Job{
		VideoDir: e.videoDir,
		MusicDir: e.musicDir,
		Duration: 5 * time.Minute,
		Blend:    BlendCrossfade,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	// 300s + 60s buffer over 40s clips.
	if len(info.VideoClips) != 9 || info.VideoSeconds != 360 {
		t.Errorf("video plan = %d clips, %vs", len(info.VideoClips), info.VideoSeconds)
	}
	// A single eligible track is used alone.
	if len(info.AudioTracks) != 1 || info.Stages != 0 {
		t.Errorf("audio plan = %v, stages %d", info.AudioTracks, info.Stages)
	}
	if !strings.Contains(info.Command, "-c:a aac") {
		t.Errorf("crossfade command should re-encode audio: %s", info.Command)
	}
}

func TestPlanDefaultsToFastConcat(t *testing.T) {
	e := newEnv(t, ffmpegStub)
	info, err := e.mixer(t).Plan(context.Background(), Job{
		VideoDir: e.videoDir,
		MusicDir: e.musicDir,
		Duration: time.Minute,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if info.Blend != BlendFastConcat {
		t.Errorf("blend = %v, want fast concat", info.Blend)
	}
	if len(info.AudioTracks) != 1 {
		t.Errorf("music folder was ignored: %v", info.AudioTracks)
	}
	if !strings.Contains(info.Command, "-map 1:a") || strings.Contains(info.Command, "-map 0:a?") {
		t.Errorf("command should take audio from the music track: %s", info.Command)
	}
}

func TestSubmitCancelWithoutDraining(t *testing.T) {
	ignore := goleak.IgnoreCurrent()

	// More stderr lines than the event buffer holds, then hang.
	e := newEnv(t, "#!/bin/sh\ni=0\nwhile [ $i -lt 200 ]; do echo \"line $i\" >&2; i=$((i+1)); done\nsleep 30\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := e.mixer(t).Submit(ctx, Job{
		VideoDir: e.videoDir,
		MusicDir: e.musicDir,
		Duration: time.Minute,
	})

	deadline := time.Now().Add(10 * time.Second)
	for len(events) < cap(events) {
		if time.Now().After(deadline) {
			t.Fatalf("event buffer never filled: %d/%d", len(events), cap(events))
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	// Nobody reads until the job goroutine is gone.
	if err := goleak.Find(ignore); err != nil {
		t.Fatalf("job blocked on a full channel: %v", err)
	}

	var done []DoneEvent
	for ev := range events {
		if d, ok := ev.(DoneEvent); ok {
			done = append(done, d)
		}
	}
	if len(done) != 1 {
		t.Fatalf("got %d DoneEvents, want 1", len(done))
	}
	if !errors.IsCancelled(done[0].Err) {
		t.Errorf("expected cancellation, got %v", done[0].Err)
	}
}

func TestParseBlend(t *testing.T) {
	for in, want := range map[string]Blend{"": BlendFastConcat, "crossfade": BlendCrossfade, "none": BlendNone} {
		got, err := ParseBlend(in)
		if err != nil || got != want {
			t.Errorf("ParseBlend(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseBlend("loud"); err == nil {
		t.Error("expected error for unknown blend")
	}
}

func TestFindVideos(t *testing.T) {
	e := newEnv(t, ffmpegStub)
	if got := FindVideos(e.videoDir); len(got) != 2 {
		t.Errorf("FindVideos = %v", got)
	}
}
