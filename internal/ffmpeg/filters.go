package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// CrossfadeChain builds a left-to-right acrossfade filter graph over audio
// inputs. Each stage fades the previous stage's output into the next input.
type CrossfadeChain struct {
	fade   Crossfade
	inputs []int
}

// NewCrossfadeChain creates an empty chain using fade for every stage.
func NewCrossfadeChain(fade Crossfade) *CrossfadeChain {
	return &CrossfadeChain{fade: fade}
}

// AddInput appends an ffmpeg input index to the chain.
func (c *CrossfadeChain) AddInput(index int) *CrossfadeChain {
	c.inputs = append(c.inputs, index)
	return c
}

// Stages returns the number of acrossfade filters the chain produces.
func (c *CrossfadeChain) Stages() int {
	return max(len(c.inputs)-1, 0)
}

// IsEmpty returns true if the chain has no stages.
func (c *CrossfadeChain) IsEmpty() bool {
	return c.Stages() == 0
}

// Build returns the filter_complex string and the label of the final
// stage's output. Both are empty when fewer than two inputs were added.
func (c *CrossfadeChain) Build() (string, string) {
	if c.IsEmpty() {
		return "", ""
	}

	window := strconv.FormatFloat(c.fade.Window, 'f', -1, 64)
	parts := make([]string, 0, c.Stages())
	last := fmt.Sprintf("[%d:a]", c.inputs[0])
	for i := 1; i < len(c.inputs); i++ {
		out := fmt.Sprintf("[a%d]", i)
		parts = append(parts, fmt.Sprintf("%s[%d:a]acrossfade=d=%s:c1=%s:c2=%s%s",
			last, c.inputs[i], window, c.fade.Curve, c.fade.Curve, out))
		last = out
	}
	return strings.Join(parts, ";"), last
}
