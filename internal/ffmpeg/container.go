package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/five82/mixit/internal/errors"
)

// copyContainers maps a requested container to the one actually written
// when video is stream-copied. webm only admits VP8/VP9/AV1 video and
// Vorbis/Opus audio, so copied sources go to Matroska instead.
var copyContainers = map[string]string{
	"mp4":  "mp4",
	"mkv":  "mkv",
	"mov":  "mov",
	"webm": "mkv",
}

// Substitution records a container swap made to keep video in copy mode.
type Substitution struct {
	Requested string
	Actual    string
}

func (s Substitution) String() string {
	return fmt.Sprintf("%s output written as %s to keep video stream-copied", s.Requested, s.Actual)
}

// ResolveContainer returns the container to write for requested. The
// substitution is non-nil when the two differ. Unknown containers are a
// configuration error.
func ResolveContainer(requested string) (string, *Substitution, error) {
	tag := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(requested)), ".")
	actual, ok := copyContainers[tag]
	if !ok {
		return "", nil, errors.NewConfigError(fmt.Sprintf("unsupported output container %q (supported: mp4, mkv, mov, webm)", requested))
	}
	if actual != tag {
		return actual, &Substitution{Requested: tag, Actual: actual}, nil
	}
	return actual, nil, nil
}
