package planner

import (
	"errors"
	"slices"
	"testing"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input   string
		want    Order
		wantErr bool
	}{
		{"", OrderRandom, false},
		{"Random", OrderRandom, false},
		{"A-Z", OrderAlphabetical, false},
		{"alphabetical", OrderAlphabetical, false},
		{"manual", OrderManual, false},
		{"chronological", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOrder(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrder(%q) error = %v", tt.input, err)
			}
			if err != nil && !errors.Is(err, ErrUnknownOrder) {
				t.Errorf("expected ErrUnknownOrder, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseOrder(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestApplyOrderAlphabetical(t *testing.T) {
	p := New(NewRand(1))
	paths := []string{"/m/beta.mp3", "/z/Alpha.mp3", "/m/track10.mp3", "/a/track2.mp3", "/m/charlie.mp3"}
	got := p.ApplyOrder(paths, OrderAlphabetical, nil)
	want := []string{"/z/Alpha.mp3", "/m/beta.mp3", "/m/charlie.mp3", "/a/track2.mp3", "/m/track10.mp3"}
	if !slices.Equal(got, want) {
		t.Errorf("ApplyOrder(alphabetical) = %v, want %v", got, want)
	}
	if paths[0] != "/m/beta.mp3" {
		t.Error("ApplyOrder mutated its input")
	}
}

func TestApplyOrderManual(t *testing.T) {
	p := New(NewRand(1))
	paths := []string{"/m/a.mp3", "/m/b.mp3", "/m/c.mp3"}

	got := p.ApplyOrder(paths, OrderManual, []string{"c.mp3", "  ", "missing.mp3", "a.mp3"})
	want := []string{"/m/c.mp3", "/m/a.mp3"}
	if !slices.Equal(got, want) {
		t.Errorf("ApplyOrder(manual) = %v, want %v", got, want)
	}

	got = p.ApplyOrder(paths, OrderManual, []string{"nothing.mp3"})
	if !slices.Equal(got, paths) {
		t.Errorf("unmatched manual list should keep input order, got %v", got)
	}
}

func TestApplyOrderRandomIsPermutation(t *testing.T) {
	paths := []string{"a", "b", "c", "d", "e", "f"}
	got := New(NewRand(4)).ApplyOrder(paths, OrderRandom, nil)

	sorted := slices.Clone(got)
	slices.Sort(sorted)
	if !slices.Equal(sorted, paths) {
		t.Errorf("random order is not a permutation: %v", got)
	}
	again := New(NewRand(4)).ApplyOrder(paths, OrderRandom, nil)
	if !slices.Equal(got, again) {
		t.Error("same seed produced different orders")
	}
}
