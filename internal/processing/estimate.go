package processing

import (
	"time"

	"github.com/five82/mixit/internal/ffmpeg"
)

// Rough wall-clock cost per hour of output. Stream copy is I/O bound;
// crossfading re-encodes the audio path.
const (
	copySecondsPerHour      = 5.0
	crossfadeSecondsPerHour = 30.0
)

// EstimateRuntime guesses how long a mix of target seconds will take.
func EstimateRuntime(target float64, policy ffmpeg.BlendPolicy) time.Duration {
	if target <= 0 {
		return 0
	}
	perHour := copySecondsPerHour
	if policy == ffmpeg.BlendCrossfade {
		perHour = crossfadeSecondsPerHour
	}
	secs := target / 3600 * perHour
	return time.Duration(secs * float64(time.Second)).Round(time.Second)
}
