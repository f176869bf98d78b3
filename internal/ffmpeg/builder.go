// Package ffmpeg composes and runs the single ffmpeg invocation that
// assembles a mix.
package ffmpeg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/five82/mixit/internal/errors"
	"github.com/five82/mixit/internal/manifest"
	"github.com/five82/mixit/internal/media"
	"github.com/five82/mixit/internal/util"
)

// BlendPolicy selects how the soundtrack is assembled.
type BlendPolicy int

// The zero value is BlendFastConcat.
const (
	// BlendFastConcat stream-copies concatenated tracks.
	BlendFastConcat BlendPolicy = iota
	// BlendCrossfade overlaps consecutive tracks and re-encodes audio.
	BlendCrossfade
	// BlendNone keeps the clips' own audio and truncates to the target.
	BlendNone
)

// String returns the policy name.
func (p BlendPolicy) String() string {
	switch p {
	case BlendNone:
		return "none"
	case BlendFastConcat:
		return "fast"
	case BlendCrossfade:
		return "crossfade"
	default:
		return "unknown"
	}
}

// ParseBlendPolicy parses a policy name. An empty string selects fast concat.
func ParseBlendPolicy(s string) (BlendPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fast", "concat", "fastconcat", "copy":
		return BlendFastConcat, nil
	case "crossfade", "smart", "xfade":
		return BlendCrossfade, nil
	case "none", "original":
		return BlendNone, nil
	default:
		return BlendFastConcat, errors.NewConfigError(fmt.Sprintf("unknown blend policy %q (valid: none, fast, crossfade)", s))
	}
}

// Crossfade parameterizes every acrossfade stage.
type Crossfade struct {
	Window float64
	Curve  string
}

// DefaultCrossfade returns a 3 second triangular fade.
func DefaultCrossfade() Crossfade {
	return Crossfade{Window: 3.0, Curve: "tri"}
}

// AudioEncoding is used whenever the audio path is re-encoded.
type AudioEncoding struct {
	Codec   string
	Bitrate string
}

// DefaultAudioEncoding returns AAC at 192 kbps.
func DefaultAudioEncoding() AudioEncoding {
	return AudioEncoding{Codec: "aac", Bitrate: "192k"}
}

// Input is one ffmpeg input.
type Input struct {
	Path string
	// Concat reads Path as a concat demuxer manifest.
	Concat bool
}

func (in Input) args() []string {
	if in.Concat {
		return []string{"-f", "concat", "-safe", "0", "-i", in.Path}
	}
	return []string{"-i", in.Path}
}

// CommandGraph is a fully composed ffmpeg invocation. It is built once and
// consumed by a single Run.
type CommandGraph struct {
	Inputs        []Input
	FilterComplex string
	Maps          []string
	Codecs        []string
	// Duration truncates the output when positive.
	Duration float64
	Shortest bool

	OutputPath   string
	Container    string
	Substitution *Substitution

	Policy BlendPolicy
	// Stages is the number of acrossfade filters in FilterComplex.
	Stages int

	// Manifests are written before the process starts and removed after it
	// ends.
	Manifests *manifest.Set
}

// Args returns the argument list, excluding the binary.
func (g *CommandGraph) Args() []string {
	args := []string{"-hide_banner", "-nostdin", "-y"}
	for _, in := range g.Inputs {
		args = append(args, in.args()...)
	}
	if g.FilterComplex != "" {
		args = append(args, "-filter_complex", g.FilterComplex)
	}
	for _, m := range g.Maps {
		args = append(args, "-map", m)
	}
	args = append(args, g.Codecs...)
	if g.Duration > 0 {
		args = append(args, "-t", formatSeconds(g.Duration))
	}
	if g.Shortest {
		args = append(args, "-shortest")
	}
	return append(args, g.OutputPath)
}

// CommandLine renders the invocation for logs.
func (g *CommandGraph) CommandLine(binary string) string {
	args := g.Args()
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, binary)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t'\"[];") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// GraphRequest carries everything BuildGraph needs.
type GraphRequest struct {
	Video      media.Playlist
	Audio      media.Playlist
	Target     float64
	Policy     BlendPolicy
	Crossfade  Crossfade
	Encoding   AudioEncoding
	OutputPath string
	Container  string
	// Manifests receives the concat lists. A nil set is allocated in the
	// system temp directory.
	Manifests *manifest.Set
}

// BuildGraph composes the ffmpeg invocation for a planned mix. Input 0 is
// always the video manifest, stream-copied.
func BuildGraph(req GraphRequest) (*CommandGraph, error) {
	if req.Video.Empty() {
		return nil, errors.NewFFmpegError("video playlist is empty")
	}
	if req.Target <= 0 {
		return nil, errors.NewInvalidDurationError(req.Target)
	}
	if req.Policy != BlendNone && req.Audio.Empty() {
		return nil, errors.NewFFmpegError(fmt.Sprintf("%s blend requires at least one audio track", req.Policy))
	}

	container, sub, err := ResolveContainer(req.Container)
	if err != nil {
		return nil, err
	}

	set := req.Manifests
	if set == nil {
		set = manifest.NewSet(os.TempDir(), "")
	}
	enc := req.Encoding
	if enc.Codec == "" || enc.Bitrate == "" {
		enc = DefaultAudioEncoding()
	}

	g := &CommandGraph{
		OutputPath:   util.ReplaceExtension(req.OutputPath, container),
		Container:    container,
		Substitution: sub,
		Policy:       req.Policy,
		Manifests:    set,
	}
	g.Inputs = append(g.Inputs, Input{Path: set.Add(manifest.RoleVideo, req.Video.Paths()), Concat: true})

	switch req.Policy {
	case BlendNone:
		g.Maps = []string{"0:v", "0:a?"}
		g.Codecs = []string{"-c", "copy"}
		g.Duration = req.Target

	case BlendFastConcat:
		g.Inputs = append(g.Inputs, Input{Path: set.Add(manifest.RoleAudio, req.Audio.Paths()), Concat: true})
		g.Maps = []string{"0:v", "1:a"}
		g.Codecs = []string{"-c", "copy"}
		g.Shortest = true

	case BlendCrossfade:
		fade := req.Crossfade
		if fade.Window <= 0 || fade.Curve == "" {
			fade = DefaultCrossfade()
		}
		chain := NewCrossfadeChain(fade)
		for i, p := range req.Audio.Paths() {
			g.Inputs = append(g.Inputs, Input{Path: p})
			chain.AddInput(i + 1)
		}
		if chain.IsEmpty() {
			g.Maps = []string{"0:v", "1:a"}
		} else {
			filter, out := chain.Build()
			g.FilterComplex = filter
			g.Stages = chain.Stages()
			g.Maps = []string{"0:v", out}
		}
		g.Codecs = []string{"-c:v", "copy", "-c:a", enc.Codec, "-b:a", enc.Bitrate}
		g.Shortest = true

	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown blend policy %d", req.Policy))
	}

	return g, nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
