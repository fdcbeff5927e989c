// Package search implements synonym-aware term expansion for the marketplace
// search. A free-text query is expanded into a bounded, deduplicated set of
// equivalent terms (transliteration/synonym variants) that the repository
// layer turns into one substring-match clause per term.
//
// The package is deliberately small and dependency-free, but engineered with
// production-grade ergonomics:
//
//   - No logging in the library (callers decide how/what to log)
//   - The dictionary sits behind the Expander interface so it can be swapped
//     or extended without touching the algorithm
//   - Deterministic output order (insertion order) for stable tests
//   - A hard cap on the expanded set bounds worst-case query cost
//
// Expansion is a single fan-out, not a transitive closure: if "a" maps to
// "b" and "b" maps to "c", expanding "a" yields {a, b} only. That asymmetry
// is a property of the authored dictionary and is preserved faithfully.
package search

import (
	"sort"
	"strings"
)

// Dictionary maps a normalized (lowercase, trimmed) term to its synonym set.
// Values are used as authored; the mapping need not be symmetric.
type Dictionary map[string][]string

// Expander turns a raw query string into a bounded slice of search terms.
type Expander interface {
	// Expand normalizes raw and returns the deduplicated expansion, capped at
	// the configured maximum. An empty or blank input yields an empty slice,
	// which callers must treat as "skip filtering entirely".
	Expand(raw string) []string
}

// DefaultMaxTerms caps the expanded set handed to the query builder. Excess
// terms are dropped, not rotated or prioritized; this is a documented
// limitation, not an optimization.
const DefaultMaxTerms = 10

// Option customizes an Expander built by NewExpander.
type Option func(*expander)

// WithMaxTerms overrides the expansion cap. Values < 1 are ignored.
func WithMaxTerms(n int) Option {
	return func(e *expander) {
		if n >= 1 {
			e.maxTerms = n
		}
	}
}

type expander struct {
	dict       Dictionary
	phraseKeys []string // multi-word keys, sorted for deterministic scanning
	maxTerms   int
}

// NewExpander builds an Expander over dict. The dictionary is read once at
// construction and must not be mutated afterwards.
func NewExpander(dict Dictionary, opts ...Option) Expander {
	e := &expander{dict: dict, maxTerms: DefaultMaxTerms}
	for k := range dict {
		if strings.Contains(k, " ") {
			e.phraseKeys = append(e.phraseKeys, k)
		}
	}
	sort.Strings(e.phraseKeys)
	for _, o := range opts {
		o(e)
	}
	return e
}

// Expand implements the Expander interface.
func (e *expander) Expand(raw string) []string {
	clean := strings.ToLower(strings.TrimSpace(raw))
	if clean == "" {
		return []string{}
	}

	out := make([]string, 0, e.maxTerms)
	seen := make(map[string]struct{}, e.maxTerms)
	add := func(t string) {
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	// The full normalized input first, then each token with its direct
	// synonyms in dictionary order.
	add(clean)
	for _, token := range strings.Fields(clean) {
		add(token)
		for _, syn := range e.dict[token] {
			add(syn)
		}
	}

	// Phrase-level synonyms: multi-word keys matched as substrings of the
	// whole input (e.g. "green chili" inside "fresh green chili").
	for _, key := range e.phraseKeys {
		if strings.Contains(clean, key) {
			for _, syn := range e.dict[key] {
				add(syn)
			}
		}
	}

	if len(out) > e.maxTerms {
		out = out[:e.maxTerms]
	}
	return out
}
