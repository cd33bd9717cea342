package resolve

import (
	"sort"
	"strings"

	"github.com/asaply/orderflow/internal/merchant"
)

const (
	// similarityFloor is the minimum normalized Levenshtein similarity for a
	// candidate to surface as a suggestion. Below it, fuzzy matching stays
	// silent rather than guessing.
	similarityFloor = 0.45
	maxSuggestions  = 2
)

// Resolution is the transient outcome of resolving one raw item name. Key is
// the full item.* selector key, empty when unresolved; Suggestions carry the
// closest catalog names when fuzzy matching found near-misses.
type Resolution struct {
	Key         string
	Suggestions []string
}

// Resolved reports whether a selector key was found.
func (r Resolution) Resolved() bool {
	return r.Key != ""
}

// Canonical returns the canonical item token behind the resolved key.
func (r Resolution) Canonical() string {
	return merchant.CanonicalFromItemKey(r.Key)
}

// ResolveItem resolves a free-text item name to a configured selector key.
// The ladder runs strictest-first and stops at the first hit:
//
//  1. normalize.items entry whose target has an item selector
//  2. direct item selector under the lower-cased raw name
//  3. menu catalog scan, matching canonical names and aliases case-insensitively
//  4. Levenshtein similarity ranking over all candidate names, floor 0.45
//
// Every rung is a total function; an unresolvable name yields an empty Key,
// never an error.
func ResolveItem(cfg *merchant.Config, rawName string) Resolution {
	name := strings.ToLower(strings.TrimSpace(rawName))
	if name == "" {
		return Resolution{}
	}

	if mapped := cfg.Normalize.Items[name]; mapped != "" {
		if _, ok := cfg.Lookup(merchant.ItemKey(mapped)); ok {
			return Resolution{Key: merchant.ItemKey(mapped)}
		}
	}

	if _, ok := cfg.Lookup(merchant.ItemKey(name)); ok {
		return Resolution{Key: merchant.ItemKey(name)}
	}

	for _, entry := range cfg.Menu.Items {
		canonical := strings.ToLower(strings.TrimSpace(entry.Name))
		key := merchant.ItemKey(canonical)
		if _, ok := cfg.Lookup(key); !ok {
			continue
		}
		if canonical == name {
			return Resolution{Key: key}
		}
		for _, alias := range entry.Aliases {
			if strings.ToLower(strings.TrimSpace(alias)) == name {
				return Resolution{Key: key}
			}
		}
	}

	return Resolution{Suggestions: suggestClosest(cfg, name, maxSuggestions)}
}

// suggestClosest ranks every candidate item name by similarity to name and
// returns the top entries at or above the floor.
func suggestClosest(cfg *merchant.Config, name string, limit int) []string {
	candidates := candidateItems(cfg)
	if len(candidates) == 0 {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, scored{name: candidate, score: similarity(name, candidate)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})

	var suggestions []string
	for _, entry := range ranked {
		if len(suggestions) >= limit {
			break
		}
		if entry.score < similarityFloor {
			break
		}
		suggestions = append(suggestions, entry.name)
	}
	return suggestions
}

// candidateItems unions the canonical names behind item.* selector keys with
// the menu catalog names, deduplicated.
func candidateItems(cfg *merchant.Config) []string {
	seen := make(map[string]struct{})
	var candidates []string
	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		candidates = append(candidates, name)
	}

	for _, name := range cfg.ItemSelectorNames() {
		add(name)
	}
	for _, entry := range cfg.Menu.Items {
		add(entry.Name)
	}
	return candidates
}

// similarity is 1 - levenshtein/maxLen over lower-cased trimmed inputs, in
// [0, 1]. Blank input on either side scores zero.
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	distance := levenshtein(a, b)
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(distance)/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	previous := make([]int, len(rb)+1)
	current := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		previous[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		current[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			current[j] = min3(previous[j]+1, current[j-1]+1, previous[j-1]+cost)
		}
		previous, current = current, previous
	}
	return previous[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
