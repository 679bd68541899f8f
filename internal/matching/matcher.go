// Package matching links provider-scoped model slugs to Artificial Analysis slugs.
//
// Each provider slug is tried against the candidate set with three rules, in
// order, and the first rule that hits wins:
//
//  1. exact:     aa_slug == provider_slug
//  2. suffix:    aa_slug ends with provider_slug
//  3. substring: aa_slug contains provider_slug
//
// All comparisons are case-insensitive. Within a rule, candidates are visited in
// lexicographic order of their lowercased form (ties broken by the original
// string), so the winner never depends on how the candidates were loaded.
package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/vn6295337/intelligent-model-selector/internal/models"
)

// Rule identifies which matching rule produced a hit
type Rule int

const (
	RuleNone Rule = iota
	RuleExact
	RuleSuffix
	RuleSubstring
)

func (r Rule) String() string {
	switch r {
	case RuleExact:
		return "exact"
	case RuleSuffix:
		return "suffix"
	case RuleSubstring:
		return "substring"
	default:
		return "none"
	}
}

// Match is a resolved slug together with the rule that found it
type Match struct {
	AASlug string
	Rule   Rule
}

type candidate struct {
	slug  string
	lower string
}

// Matcher resolves provider slugs against a fixed candidate set
type Matcher struct {
	candidates []candidate
	exact      map[string]string
}

// NewMatcher builds a matcher over aaSlugs. Duplicates and empty slugs are dropped.
func NewMatcher(aaSlugs []string) *Matcher {
	seen := make(map[string]struct{}, len(aaSlugs))
	candidates := make([]candidate, 0, len(aaSlugs))
	for _, slug := range aaSlugs {
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		candidates = append(candidates, candidate{slug: slug, lower: strings.ToLower(slug)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].lower != candidates[j].lower {
			return candidates[i].lower < candidates[j].lower
		}
		return candidates[i].slug < candidates[j].slug
	})

	// first candidate in order wins for case-insensitive duplicates
	exact := make(map[string]string, len(candidates))
	for _, c := range candidates {
		if _, ok := exact[c.lower]; !ok {
			exact[c.lower] = c.slug
		}
	}

	return &Matcher{candidates: candidates, exact: exact}
}

// Len returns the number of distinct candidates
func (m *Matcher) Len() int {
	return len(m.candidates)
}

// Match resolves one provider slug. ok is false when no rule fires.
func (m *Matcher) Match(providerSlug string) (Match, bool) {
	needle := strings.ToLower(providerSlug)
	if needle == "" {
		return Match{}, false
	}

	if slug, ok := m.exact[needle]; ok {
		return Match{AASlug: slug, Rule: RuleExact}, true
	}

	for _, c := range m.candidates {
		if strings.HasSuffix(c.lower, needle) {
			return Match{AASlug: c.slug, Rule: RuleSuffix}, true
		}
	}

	for _, c := range m.candidates {
		if strings.Contains(c.lower, needle) {
			return Match{AASlug: c.slug, Rule: RuleSubstring}, true
		}
	}

	return Match{}, false
}

// Result is the outcome of matching a batch of provider models
type Result struct {
	Mappings   []models.MappingRecord
	Unmatched  []models.ProviderModel
	RuleCounts map[Rule]int
}

// MatchAll resolves every pair. now is called once per hit and stamps both
// timestamps of the mapping. Unmatched pairs are collected, never an error.
func (m *Matcher) MatchAll(pairs []models.ProviderModel, now func() time.Time) Result {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	result := Result{
		Mappings:   make([]models.MappingRecord, 0, len(pairs)),
		RuleCounts: make(map[Rule]int),
	}

	for _, pair := range pairs {
		match, ok := m.Match(pair.ProviderSlug)
		if !ok {
			result.Unmatched = append(result.Unmatched, pair)
			continue
		}

		ts := now()
		result.Mappings = append(result.Mappings, models.MappingRecord{
			ProviderSlug:      pair.ProviderSlug,
			AASlug:            match.AASlug,
			InferenceProvider: pair.InferenceProvider,
			CreatedAt:         ts,
			UpdatedAt:         ts,
		})
		result.RuleCounts[match.Rule]++
	}

	return result
}
