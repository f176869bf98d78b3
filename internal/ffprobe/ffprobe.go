// Package ffprobe measures media durations with ffprobe.
package ffprobe

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/five82/mixit/internal/errors"
	"github.com/five82/mixit/internal/logging"
	"github.com/five82/mixit/internal/media"
)

// Prober reports a file's duration in seconds. Implementations never fail:
// an unreadable file reports 0.
type Prober interface {
	Duration(ctx context.Context, path string) float64
}

// DiagnosticFunc receives the reason a probe fell back to 0.
type DiagnosticFunc func(path string, err error)

// DurationProber runs ffprobe once per file.
type DurationProber struct {
	binary     string
	diagnostic DiagnosticFunc
}

// Option configures a DurationProber.
type Option func(*DurationProber)

// WithDiagnostic installs a hook that is called for every failed probe.
func WithDiagnostic(fn DiagnosticFunc) Option {
	return func(p *DurationProber) {
		p.diagnostic = fn
	}
}

// NewDurationProber creates a prober that invokes binary. An empty binary
// means "ffprobe" on PATH.
func NewDurationProber(binary string, opts ...Option) *DurationProber {
	if binary == "" {
		binary = "ffprobe"
	}
	p := &DurationProber{binary: binary}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Duration probes path and returns its container duration in seconds, or 0
// when the probe fails for any reason.
func (p *DurationProber) Duration(ctx context.Context, path string) float64 {
	d, err := p.probe(ctx, path)
	if err != nil {
		logging.Global().Component("ffprobe").Warn("duration probe failed", "path", path, "error", err)
		if p.diagnostic != nil {
			p.diagnostic(path, err)
		}
		return 0
	}
	return d
}

func (p *DurationProber) probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return 0, errors.WrapExecError(p.binary, err, strings.TrimSpace(stderr.String()))
	}
	return parseDuration(output)
}

// parseDuration parses ffprobe's single-value output.
func parseDuration(output []byte) (float64, error) {
	text := strings.TrimSpace(string(output))
	if text == "" {
		return 0, errors.NewFFprobeParseError("empty duration output")
	}
	// Some containers print one duration per program; the first is the format's.
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	d, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errors.NewFFprobeParseError(fmt.Sprintf("non-numeric duration %q", text))
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, errors.NewFFprobeParseError(fmt.Sprintf("invalid duration %q", text))
	}
	return d, nil
}

// ProbeAll probes paths with at most workers concurrent ffprobe processes and
// returns assets in input order. It fails only when ctx is cancelled.
func ProbeAll(ctx context.Context, p Prober, paths []string, kind media.Kind, workers int) ([]media.Asset, error) {
	assets := make([]media.Asset, len(paths))
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			assets[i] = media.Asset{
				Path:     path,
				Kind:     kind,
				Duration: p.Duration(gctx, path),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

// CachedProber memoizes durations per path. It is safe for concurrent use.
type CachedProber struct {
	inner Prober

	mu    sync.Mutex
	cache map[string]float64
}

// NewCachedProber wraps inner with a per-path cache.
func NewCachedProber(inner Prober) *CachedProber {
	return &CachedProber{inner: inner, cache: make(map[string]float64)}
}

// Duration returns the cached duration, probing on first use. A probe
// interrupted by cancellation is not cached.
func (c *CachedProber) Duration(ctx context.Context, path string) float64 {
	c.mu.Lock()
	d, ok := c.cache[path]
	c.mu.Unlock()
	if ok {
		return d
	}

	d = c.inner.Duration(ctx, path)
	if ctx.Err() != nil {
		return d
	}

	c.mu.Lock()
	c.cache[path] = d
	c.mu.Unlock()
	return d
}

// Len returns the number of cached entries.
func (c *CachedProber) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
