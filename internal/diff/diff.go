// Package diff computes set differences between canonical manifests.
package diff

import (
	"sort"
	"strings"
)

// Set is an unordered collection of canonical paths.
type Set map[string]struct{}

// NewSet builds a Set from items. Duplicates collapse.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts item into the set.
func (s Set) Add(item string) { s[item] = struct{}{} }

// Has reports whether item is in the set.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Result holds the two asymmetric differences of a comparison.
// Both slices are sorted and never nil.
type Result struct {
	OnlyInLeft  []string `json:"only_in_left"`
	OnlyInRight []string `json:"only_in_right"`
}

// Identical reports whether neither side has entries missing from the other.
func (r Result) Identical() bool {
	return len(r.OnlyInLeft) == 0 && len(r.OnlyInRight) == 0
}

// Swap returns the result seen from the other side.
func (r Result) Swap() Result {
	return Result{OnlyInLeft: r.OnlyInRight, OnlyInRight: r.OnlyInLeft}
}

// Filter reports whether a path should be dropped from a result.
type Filter func(path string) bool

// Compute returns left minus right and right minus left, sorted.
// Paths matching filter are dropped from both lists; filter may be nil.
func Compute(left, right Set, filter Filter) Result {
	return Result{
		OnlyInLeft:  minus(left, right, filter),
		OnlyInRight: minus(right, left, filter),
	}
}

func minus(a, b Set, filter Filter) []string {
	out := []string{}
	for item := range a {
		if b.Has(item) {
			continue
		}
		if filter != nil && filter(item) {
			continue
		}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// PrefixFilter drops paths starting with any of prefixes.
// It returns nil when prefixes is empty.
func PrefixFilter(prefixes ...string) Filter {
	var kept []string
	for _, p := range prefixes {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return func(path string) bool {
		for _, p := range kept {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}
