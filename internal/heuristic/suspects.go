// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package heuristic

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/crime-extract/pkg/types"
)

// MaxDescriptorLen bounds a suspect descriptor in characters.
const MaxDescriptorLen = 100

var (
	// suspectMarkerRe matches S1, S2, Suspect 1, Subject #2, Susp 1.
	suspectMarkerRe = regexp.MustCompile(`\b(?:S([1-9])|(?i:suspect|subject|susp)\s*#?\s*([1-9]))\b`)

	// descriptorLeadRe strips connective words between a marker and its description.
	descriptorLeadRe = regexp.MustCompile(`(?i)^[\s:,\-]*(?:(?:is|was|were|appeared)\s+)?(?:(?:described|identified)\s+as\s+)?`)

	sentenceEndRe = regexp.MustCompile(`[.;!?](?:\s|$)|\n`)
)

type suspectMention struct {
	number     int
	descriptor string
}

// Suspects captures the text following each suspect marker as a raw
// descriptor. Results are ordered by suspect number, one per number, and
// capped at types.MaxSuspects.
func Suspects(narrative string) []string {
	matches := suspectMarkerRe.FindAllStringSubmatchIndex(narrative, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var mentions []suspectMention
	for i, m := range matches {
		n := markerNumber(narrative, m)
		if seen[n] {
			continue
		}
		seen[n] = true

		limit := len(narrative)
		if i+1 < len(matches) {
			limit = matches[i+1][0]
		}
		desc := descriptorAfter(narrative[m[1]:limit])
		if desc == "" {
			continue
		}
		mentions = append(mentions, suspectMention{number: n, descriptor: desc})
	}

	sort.SliceStable(mentions, func(a, b int) bool {
		return mentions[a].number < mentions[b].number
	})
	if len(mentions) > types.MaxSuspects {
		mentions = mentions[:types.MaxSuspects]
	}

	out := make([]string, len(mentions))
	for i, m := range mentions {
		out[i] = m.descriptor
	}
	return out
}

// markerNumber reads the suspect number from whichever group matched.
func markerNumber(narrative string, m []int) int {
	for g := 1; g <= 2; g++ {
		if start := m[2*g]; start >= 0 {
			n, _ := strconv.Atoi(narrative[start:m[2*g+1]])
			return n
		}
	}
	return 0
}

// descriptorAfter returns the parenthesized text at the start of rest, or
// the remainder of the clause, bounded to MaxDescriptorLen.
func descriptorAfter(rest string) string {
	rest = strings.TrimLeft(rest, " \t")
	var desc string
	if strings.HasPrefix(rest, "(") {
		if end := strings.Index(rest, ")"); end > 0 {
			desc = rest[1:end]
		} else {
			desc = rest[1:]
		}
	} else {
		rest = descriptorLeadRe.ReplaceAllString(rest, "")
		if loc := sentenceEndRe.FindStringIndex(rest); loc != nil {
			rest = rest[:loc[0]]
		}
		desc = rest
	}
	return CleanDescriptor(desc)
}

// CleanDescriptor trims a descriptor, cuts it to MaxDescriptorLen characters,
// and maps null-like values to types.NoMatch.
func CleanDescriptor(desc string) string {
	desc = strings.TrimSpace(desc)
	if utf8.RuneCountInString(desc) > MaxDescriptorLen {
		desc = string([]rune(desc)[:MaxDescriptorLen])
	}
	desc = strings.TrimRight(strings.TrimSpace(desc), ",;:-")
	if IsNullLike(desc) {
		return types.NoMatch
	}
	return desc
}

// IsNullLike reports whether s is a placeholder that means "nothing".
func IsNullLike(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none", "nil", "n/a", "na", "unknown", "not specified", "not mentioned", "nan":
		return true
	}
	return false
}
