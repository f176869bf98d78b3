package ffmpeg

import "testing"

func TestCrossfadeChain(t *testing.T) {
	tests := []struct {
		name   string
		inputs []int
		filter string
		out    string
		stages int
	}{
		{"empty", nil, "", "", 0},
		{"single", []int{1}, "", "", 0},
		{"pair", []int{1, 2}, "[1:a][2:a]acrossfade=d=3:c1=tri:c2=tri[a1]", "[a1]", 1},
		{
			"three",
			[]int{1, 2, 3},
			"[1:a][2:a]acrossfade=d=3:c1=tri:c2=tri[a1];[a1][3:a]acrossfade=d=3:c1=tri:c2=tri[a2]",
			"[a2]",
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewCrossfadeChain(DefaultCrossfade())
			for _, in := range tt.inputs {
				chain.AddInput(in)
			}
			filter, out := chain.Build()
			if filter != tt.filter || out != tt.out {
				t.Errorf("Build() = (%q, %q), want (%q, %q)", filter, out, tt.filter, tt.out)
			}
			if chain.Stages() != tt.stages {
				t.Errorf("Stages() = %d, want %d", chain.Stages(), tt.stages)
			}
		})
	}
}

func TestCrossfadeChainFractionalWindow(t *testing.T) {
	filter, _ := NewCrossfadeChain(Crossfade{Window: 1.25, Curve: "exp"}).AddInput(1).AddInput(2).Build()
	if filter != "[1:a][2:a]acrossfade=d=1.25:c1=exp:c2=exp[a1]" {
		t.Errorf("filter = %q", filter)
	}
}
