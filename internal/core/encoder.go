package core

import "strings"

// flatTypeCodes maps the flat-type vocabulary to the ordinal codes the
// model was trained with. Labels are matched case-sensitively after
// trimming; anything outside the vocabulary is an input error, because
// the model cannot interpolate an unknown category.
var flatTypeCodes = map[string]int{
	"1 Room":    0,
	"2 Room":    1,
	"3 Room":    2,
	"4 Room":    3,
	"5 Room":    4,
	"Executive": 5,
	"Multi-Gen": 6,
}

// matureEstates is the fixed set of towns classified as mature estates.
var matureEstates = map[string]struct{}{
	"ANG MO KIO":      {},
	"BEDOK":           {},
	"BISHAN":          {},
	"BUKIT MERAH":     {},
	"BUKIT TIMAH":     {},
	"CENTRAL":         {},
	"CLEMENTI":        {},
	"GEYLANG":         {},
	"KALLANG/WHAMPOA": {},
	"MARINE PARADE":   {},
	"PASIR RIS":       {},
	"QUEENSTOWN":      {},
	"SERANGOON":       {},
	"TAMPINES":        {},
	"TOA PAYOH":       {},
}

// FlatTypeCode returns the ordinal code for a flat-type label. The
// second return value is false for labels outside the trained
// vocabulary.
func FlatTypeCode(label string) (int, bool) {
	code, ok := flatTypeCodes[strings.TrimSpace(label)]
	return code, ok
}

// IsMatureEstate reports whether town is a mature estate. Matching is
// case- and whitespace-insensitive; towns outside the list are simply
// not mature, never an error.
func IsMatureEstate(town string) bool {
	_, ok := matureEstates[strings.ToUpper(strings.TrimSpace(town))]
	return ok
}
