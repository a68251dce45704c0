// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package heuristic

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/crime-extract/pkg/types"
)

// makes maps a lower-case make token to its canonical spelling.
var makes = map[string]string{
	"acura":      "Acura",
	"audi":       "Audi",
	"bmw":        "BMW",
	"buick":      "Buick",
	"cadillac":   "Cadillac",
	"chevrolet":  "Chevrolet",
	"chevy":      "Chevrolet",
	"chrysler":   "Chrysler",
	"dodge":      "Dodge",
	"ford":       "Ford",
	"gmc":        "GMC",
	"honda":      "Honda",
	"hyundai":    "Hyundai",
	"infiniti":   "Infiniti",
	"jeep":       "Jeep",
	"kia":        "Kia",
	"lexus":      "Lexus",
	"lincoln":    "Lincoln",
	"mazda":      "Mazda",
	"mercedes":   "Mercedes",
	"mitsubishi": "Mitsubishi",
	"nissan":     "Nissan",
	"ram":        "Ram",
	"subaru":     "Subaru",
	"tesla":      "Tesla",
	"toyota":     "Toyota",
	"volkswagen": "Volkswagen",
	"volvo":      "Volvo",
	"vw":         "Volkswagen",
}

var colors = []string{
	"black", "white", "red", "blue", "silver", "grey", "gray", "green", "yellow",
	"orange", "brown", "tan", "beige", "gold", "maroon", "purple",
}

var vehicleNouns = []string{
	"car", "truck", "pickup", "sedan", "suv", "van", "minivan", "coupe",
	"hatchback", "vehicle", "wagon", "convertible", "motorcycle", "auto",
}

var (
	makeRe *regexp.Regexp

	// colorRes are tried in order. Each only accepts a color that is
	// attached to a vehicle, so clothing colors are not reported.
	colorRes []*regexp.Regexp

	keyedPlateRe *regexp.Regexp

	// plateShapeRes are case-sensitive and tried in order after keyedPlateRe.
	plateShapeRes = []*regexp.Regexp{
		regexp.MustCompile(`\b[0-9][A-Z]{3}[0-9]{3}\b`), // 1ABC234
		regexp.MustCompile(`\b[A-Z]{3}-?[0-9]{3,4}\b`),  // ABC1234, ABC-123
	}

	// shortPlateRe (AB-1234) also fits report and case numbers, so it only
	// counts in a sentence that mentions a make or a vehicle noun.
	shortPlateRe = regexp.MustCompile(`\b[A-Z]{2}-?[0-9]{4}\b`)

	vehicleWordRe *regexp.Regexp

	digitRe = regexp.MustCompile(`[0-9]`)
)

func init() {
	makeAlt := alternation(mapKeys(makes))
	colorAlt := alternation(colors)
	nounAlt := alternation(vehicleNouns)

	makeRe = regexp.MustCompile(`(?i)\b(` + makeAlt + `)\b`)
	colorRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(` + colorAlt + `)\b(?:[\s-]+[a-z0-9]+){0,2}?[\s-]+(?:` + makeAlt + `|` + nounAlt + `)\b`),
		regexp.MustCompile(`(?i)\b(?:` + makeAlt + `)\b[^.;]{0,30}?\b(` + colorAlt + `)\b`),
		regexp.MustCompile(`(?i)\bcolou?r\b[:\s]+(` + colorAlt + `)\b`),
		regexp.MustCompile(`(?i)\b(` + colorAlt + `)\s+(?:in\s+)?colou?r`),
	}
	vehicleWordRe = regexp.MustCompile(`(?i)\b(?:` + makeAlt + `|` + nounAlt + `)s?\b`)
	keyedPlateRe = regexp.MustCompile(`(?i)\b(?:license\s+plate|lic\.?\s*plate|plate|tag|license)\b(?:\s*(?:no\.?|number|#))?[\s:#.-]*([a-z0-9]{1,4}[\s-]?[a-z0-9]{2,5})\b`)
}

// VehicleInfo resolves make, color, and plate independently. Model is left
// to the remote extractor.
func VehicleInfo(narrative string) types.Vehicle {
	v := types.Vehicle{
		Color: vehicleColor(narrative),
		Plate: Plate(narrative),
	}
	if m := makeRe.FindStringSubmatch(narrative); m != nil {
		v.Make = makes[strings.ToLower(m[1])]
	}
	return v
}

// CanonicalMake returns the catalog spelling of a known make ("chevy" is
// "Chevrolet"). Unknown makes come back trimmed but otherwise unchanged.
func CanonicalMake(s string) string {
	s = strings.TrimSpace(s)
	if c, ok := makes[strings.ToLower(s)]; ok {
		return c
	}
	return s
}

func vehicleColor(narrative string) string {
	for _, re := range colorRes {
		if m := re.FindStringSubmatch(narrative); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return types.NoMatch
}

// Plate finds a license plate, trying plate/tag/license keywords first and
// then bare plate shapes. The result is upper case without separators.
func Plate(narrative string) string {
	for _, m := range keyedPlateRe.FindAllStringSubmatch(narrative, -1) {
		if p := FormatPlate(m[1]); len(p) >= 5 && digitRe.MatchString(p) {
			return p
		}
	}
	for _, re := range plateShapeRes {
		if m := re.FindString(narrative); m != "" {
			return FormatPlate(m)
		}
	}
	for _, loc := range shortPlateRe.FindAllStringIndex(narrative, -1) {
		if vehicleWordRe.MatchString(sentenceAround(narrative, loc[0], loc[1])) {
			return FormatPlate(narrative[loc[0]:loc[1]])
		}
	}
	return types.NoMatch
}

// sentenceAround widens s[start:end] to the enclosing sentence.
func sentenceAround(s string, start, end int) string {
	if i := strings.LastIndexAny(s[:start], ".;!?\n"); i >= 0 {
		start = i + 1
	} else {
		start = 0
	}
	if i := strings.IndexAny(s[end:], ".;!?\n"); i >= 0 {
		end += i
	} else {
		end = len(s)
	}
	return s[start:end]
}

// FormatPlate standardizes a plate string: upper case, no spaces or hyphens.
func FormatPlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	return strings.NewReplacer(" ", "", "-", "").Replace(plate)
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

func mapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
