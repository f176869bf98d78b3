package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
)

// Process is a running ffmpeg instance.
type Process interface {
	// Lines yields stderr split on '\r' or '\n', skipping blank lines. The
	// sequence ends when the stream closes and can be ranged over only once.
	Lines() iter.Seq[string]
	// Wait blocks until the process exits and returns its exit code.
	Wait() (int, error)
	// Kill terminates the process and anything it spawned.
	Kill() error
}

// Spawner starts processes. Tests substitute an in-memory implementation.
type Spawner interface {
	Spawn(ctx context.Context, binary string, args []string) (Process, error)
}

// ExecSpawner starts real processes with os/exec.
type ExecSpawner struct{}

// Spawn starts binary in its own process group with stderr piped.
func (ExecSpawner) Spawn(_ context.Context, binary string, args []string) (Process, error) {
	cmd := exec.Command(binary, args...)
	setProcessGroup(cmd)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd, stderr: stderr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stderr io.ReadCloser

	consumed atomic.Bool
	killOnce sync.Once
	killErr  error
}

func (p *execProcess) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !p.consumed.CompareAndSwap(false, true) {
			return
		}
		for line := range splitLines(p.stderr) {
			if !yield(line) {
				return
			}
		}
	}
}

func (p *execProcess) Wait() (int, error) {
	// Wait closes the pipe, so drain whatever the caller did not read.
	_, _ = io.Copy(io.Discard, p.stderr)

	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (p *execProcess) Kill() error {
	p.killOnce.Do(func() {
		p.killErr = killProcessGroup(p.cmd)
	})
	return p.killErr
}

// splitLines reads r byte by byte and yields every '\r' or '\n' terminated
// line. ffmpeg rewrites its stats line with '\r', so a line-oriented
// scanner alone would hold progress back until the run ends.
func splitLines(r io.Reader) iter.Seq[string] {
	return func(yield func(string) bool) {
		reader := bufio.NewReader(r)
		var lineBuf strings.Builder

		emit := func() bool {
			line := strings.TrimSpace(lineBuf.String())
			lineBuf.Reset()
			if line == "" {
				return true
			}
			return yield(line)
		}

		for {
			b, err := reader.ReadByte()
			if err != nil {
				emit()
				return
			}

			// Progress lines end with \r or \n
			if b == '\r' || b == '\n' {
				if !emit() {
					return
				}
			} else {
				lineBuf.WriteByte(b)
			}
		}
	}
}
