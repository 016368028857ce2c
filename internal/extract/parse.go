package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalPattern = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)
	integerPattern = regexp.MustCompile(`[0-9][0-9,]*`)
	percentPattern = regexp.MustCompile(`([0-9]+)%`)
	nativeIDToken  = regexp.MustCompile(`0x[0-9a-fA-F]+:`)
)

// ParseRating extracts the first decimal number embedded in arbitrary text,
// e.g. "4.5 stars" -> 4.5. Text without a number yields 0.
func ParseRating(s string) float64 {
	match := decimalPattern.FindString(s)
	if match == "" {
		return 0
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return val
}

// ParseCount extracts the first (possibly thousands-separated) integer
// embedded in arbitrary text, e.g. "1,234 reviews" -> 1234. Text without a
// number yields 0.
func ParseCount(s string) int {
	match := integerPattern.FindString(s)
	if match == "" {
		return 0
	}
	val, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return val
}

// ParseStars extracts an integer star rating from an accessible label such
// as "5 stars". Labels without an integer yield 0 (rating absent).
func ParseStars(s string) int {
	match := integerPattern.FindString(s)
	if match == "" {
		return 0
	}
	val, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return val
}

// ParsePercent extracts a percentage value from an accessible label such as
// "Usually 62% busy". The second return reports whether a percent was found.
func ParsePercent(s string) (int, bool) {
	match := percentPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}
	val, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return val, true
}

// SplitCategories splits a category line on the middle-dot glyph, trimming
// each segment and dropping empties: "Japanese · $$ · Sushi" ->
// ["Japanese", "$$", "Sushi"].
func SplitCategories(s string) []string {
	parts := strings.Split(s, "·")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseCoordinates pulls latitude/longitude from the "/@lat,lng,zoom"
// segment of a canonical map link. ok is false when the link carries no
// such segment or the numbers fail to parse.
func ParseCoordinates(link string) (lat, lng float64, ok bool) {
	_, rest, found := strings.Cut(link, "/@")
	if !found {
		return 0, 0, false
	}
	parts := strings.Split(rest, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSuffix(parts[1], "/"), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// NativeID extracts the platform's own place identifier token from a place
// link, "" when the link does not carry one.
func NativeID(link string) string {
	return strings.TrimSuffix(nativeIDToken.FindString(link), ":")
}
