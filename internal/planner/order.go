package planner

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Order is the policy for arranging the audio pool before selection.
type Order string

const (
	OrderRandom       Order = "random"
	OrderAlphabetical Order = "alphabetical"
	OrderManual       Order = "manual"
)

// ParseOrder parses a string into an Order. An empty string means random.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random", "shuffle":
		return OrderRandom, nil
	case "alphabetical", "a-z", "az", "alpha":
		return OrderAlphabetical, nil
	case "manual":
		return OrderManual, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: random, alphabetical, manual", ErrUnknownOrder, s)
	}
}

// String returns the string representation of the order.
func (o Order) String() string {
	return string(o)
}

// ApplyOrder returns a reordered copy of paths.
//
// OrderAlphabetical sorts by basename, case-insensitively. OrderManual keeps
// only the paths whose basename appears in manual, in that sequence; names
// that match nothing are ignored, and if nothing matches the input order is
// kept.
func (p *Planner) ApplyOrder(paths []string, order Order, manual []string) []string {
	out := slices.Clone(paths)
	switch order {
	case OrderAlphabetical:
		sortByBasename(out)
	case OrderManual:
		if ordered := manualOrder(out, manual); len(ordered) > 0 {
			out = ordered
		}
	default:
		p.rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}

func sortByBasename(paths []string) {
	c := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	slices.SortStableFunc(paths, func(a, b string) int {
		return c.CompareString(filepath.Base(a), filepath.Base(b))
	})
}

func manualOrder(paths, manual []string) []string {
	byName := make(map[string]string, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if _, dup := byName[name]; !dup {
			byName[name] = p
		}
	}

	var ordered []string
	for _, line := range manual {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if p, ok := byName[name]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
