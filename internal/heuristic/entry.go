// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package heuristic

import "regexp"

// Entry-method labels. MethodOther is never produced by the catalog; it is
// the bucket for free-text methods that no rule recognizes.
const (
	MethodWindowSmash = "window_smash"
	MethodDoorPry     = "door_pry"
	MethodDoorKick    = "door_kick"
	MethodLockPick    = "lock_pick"
	MethodCutScreen   = "cut_screen"
	MethodGarageDoor  = "garage_door"
	MethodForcedEntry = "forced_entry"
	MethodUnlocked    = "unlocked"
	MethodUnknown     = "unknown"
	MethodOther       = "other"
)

// DefaultRules is the entry-method catalog in priority order. Specific verbs
// come before generic ones: "pried" must be tested before "forced".
var DefaultRules = []Rule{
	{Label: MethodWindowSmash, Regex: `(?i)\b(?:(?:broke|broken|break|smashed|smash|shattered|busted)\b.{0,15}\b(?:window|glass|windshield)|(?:window|glass|windshield)s?\b.{0,15}\b(?:smashed|broken|shattered|busted)\b)`},
	{Label: MethodDoorPry, Regex: `(?i)\b(?:pried|pry|prying|jimmied|jimmy)\b(?:.{0,25}\b(?:door|entry|frame|lock)|.{0,30}\bopen)`},
	{Label: MethodDoorKick, Regex: `(?i)\b(?:(?:kicked|kick|kicking|booted)\b.{0,15}\bdoor|door\b.{0,15}\bkicked\b)`},
	{Label: MethodLockPick, Regex: `(?i)\b(?:picked|pick|picking)\b.{0,15}\block`},
	{Label: MethodCutScreen, Regex: `(?i)\b(?:cut|sliced|slashed|removed)\b.{0,15}\b(?:screen|mesh)`},
	{Label: MethodGarageDoor, Regex: `(?i)\b(?:garage|overhead)\b.{0,15}\bdoor`},
	{Label: MethodForcedEntry, Regex: `(?i)\b(?:forced|forcing|force)\b.{0,15}\b(?:door|entry|window|open)`},
	{Label: MethodUnlocked, Regex: `(?i)\b(?:unlocked|open|opened|unsecured)\b.{0,15}\b(?:door|window|entry|garage)`},
	{Label: MethodUnknown, Regex: `(?i)\b(?:unknown|undetermined|unclear)\b.{0,15}\b(?:entry|method|access|means)`},
}

// Vocabulary lists every label an extraction may carry for method_of_entry.
var Vocabulary = []string{
	MethodWindowSmash,
	MethodDoorPry,
	MethodDoorKick,
	MethodLockPick,
	MethodCutScreen,
	MethodGarageDoor,
	MethodForcedEntry,
	MethodUnlocked,
	MethodUnknown,
	MethodOther,
}

var defaultRules = mustCompile(DefaultRules)

func mustCompile(rules []Rule) []compiledRule {
	out := make([]compiledRule, len(rules))
	for i, r := range rules {
		out[i] = compiledRule{Rule: r, re: regexp.MustCompile(r.Regex)}
	}
	return out
}

var defaultExtractor = &Extractor{rules: defaultRules}

// EntryMethod classifies narrative with the default catalog.
func EntryMethod(narrative string) string {
	return defaultExtractor.EntryMethod(narrative)
}

// IsVocabulary reports whether label is a known method_of_entry value.
func IsVocabulary(label string) bool {
	for _, v := range Vocabulary {
		if v == label {
			return true
		}
	}
	return false
}
