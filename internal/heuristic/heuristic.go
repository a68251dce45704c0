// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package heuristic derives extraction fields from narrative text with a
// fixed catalog of regular expressions. It makes no external calls and has
// no failure modes: an unmatched field is returned as types.NoMatch.
package heuristic

import (
	"fmt"
	"regexp"

	"github.com/pdiddy/crime-extract/pkg/types"
)

// Rule pairs an entry-method label with the pattern that selects it.
type Rule = types.EntryRule

// compiledRule holds a pre-compiled Rule.
type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// Extractor applies the entry-method catalog plus the vehicle and suspect
// patterns. The zero value is not usable; call NewExtractor.
type Extractor struct {
	rules []compiledRule
}

// NewExtractor compiles rules in order. With no rules the default catalog
// is used. It fails on the first rule ValidateRules rejects.
func NewExtractor(rules ...Rule) (*Extractor, error) {
	if len(rules) == 0 {
		return defaultExtractor, nil
	}
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		compiled[i] = compiledRule{Rule: r, re: regexp.MustCompile(r.Regex)}
	}
	return &Extractor{rules: compiled}, nil
}

// Default returns the extractor for the built-in catalog.
func Default() *Extractor {
	return defaultExtractor
}

// ValidateRules reports the first rule with an empty label or a pattern
// that does not compile.
func ValidateRules(rules []Rule) error {
	for i, r := range rules {
		if r.Label == "" {
			return fmt.Errorf("entry rule %d: empty label", i)
		}
		if _, err := regexp.Compile(r.Regex); err != nil {
			return fmt.Errorf("entry rule %d (%s): %w", i, r.Label, err)
		}
	}
	return nil
}

// Extract runs every heuristic over narrative. Calling it twice on the same
// text yields the same Fields.
func (e *Extractor) Extract(narrative string) types.Fields {
	return types.Fields{
		MethodOfEntry: e.EntryMethod(narrative),
		Suspects:      Suspects(narrative),
		Vehicle:       VehicleInfo(narrative),
	}
}

// EntryMethod returns the label of the first rule whose pattern matches, or
// types.NoMatch. Catalog order is a priority list.
func (e *Extractor) EntryMethod(narrative string) string {
	for _, r := range e.rules {
		if r.re.MatchString(narrative) {
			return r.Label
		}
	}
	return types.NoMatch
}

// Rules returns the catalog in evaluation order.
func (e *Extractor) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.Rule
	}
	return out
}
