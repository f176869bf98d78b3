package ffmpeg

import (
	"testing"

	"github.com/five82/mixit/internal/errors"
)

func TestResolveContainer(t *testing.T) {
	tests := []struct {
		requested   string
		actual      string
		substituted bool
	}{
		{"mp4", "mp4", false},
		{"mkv", "mkv", false},
		{"mov", "mov", false},
		{"webm", "mkv", true},
		{".WEBM", "mkv", true},
		{" MP4 ", "mp4", false},
	}
	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			actual, sub, err := ResolveContainer(tt.requested)
			if err != nil {
				t.Fatalf("ResolveContainer(%q) error: %v", tt.requested, err)
			}
			if actual != tt.actual {
				t.Errorf("actual = %q, want %q", actual, tt.actual)
			}
			if (sub != nil) != tt.substituted {
				t.Errorf("substitution = %+v, want substituted=%v", sub, tt.substituted)
			}
		})
	}
}

func TestResolveContainerRejectsUnknown(t *testing.T) {
	for _, c := range []string{"", "avi", "flv", "gif"} {
		if _, _, err := ResolveContainer(c); !errors.IsKind(err, errors.KindConfig) {
			t.Errorf("ResolveContainer(%q) error = %v, want config error", c, err)
		}
	}
}

func TestSubstitutionString(t *testing.T) {
	s := Substitution{Requested: "webm", Actual: "mkv"}
	if s.String() != "webm output written as mkv to keep video stream-copied" {
		t.Errorf("String() = %q", s.String())
	}
}
