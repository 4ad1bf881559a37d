package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// SalesVolume parses vendor sales volume codes of the form letter-prefix plus
// digits, e.g. "A1250" -> 1250. Anything else is missing.
func SalesVolume(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 {
		return 0, false
	}
	first := s[0]
	if !(first >= 'A' && first <= 'Z') && !(first >= 'a' && first <= 'z') {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

// RangeMidpoint parses banded numeric attributes such as spend ranges:
// "1.000-2.000 TL" -> 1500, "5.000+" -> 5000. Thousands separators, the
// " TL" currency suffix, and a trailing '+' are stripped before parsing.
func RangeMidpoint(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " TL", "")
	s = strings.ReplaceAll(s, "+", "")

	if lo, hi, ok := splitRange(s); ok {
		return (lo + hi) / 2, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return float64(n), true
	}
	return 0, false
}

// hotelClasses are categorical bed-count values with no numeric reading.
var hotelClasses = map[string]bool{
	"Lüks Butik Otel":         true,
	"Butik Otel":              true,
	"Business":                true,
	"Diğer (Apart, Pansiyon)": true,
}

// BedCount parses hotel bed counts: ranges to midpoints, "K" as a thousands
// suffix ("2K" -> 2000), the "5 / 5+" star notation as 5. Named hotel
// classes carry no count and are missing.
func BedCount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if hotelClasses[s] {
		return 0, false
	}
	if strings.Contains(s, " / ") {
		return 5, true
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "K", "000")

	if lo, hi, ok := splitRange(s); ok {
		return (lo + hi) / 2, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return float64(n), true
	}
	return 0, false
}

func splitRange(s string) (lo, hi float64, ok bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	l, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return float64(l), float64(h), true
}

// mapinSegmentRe matches vendor segment codes like "R3-B": venue type
// letters, a population density digit 0-5, and an optional luxury letter.
var mapinSegmentRe = regexp.MustCompile(`^([A-Z]+)([0-5])(?:-([A-E]))?`)

// Segment holds the decoded parts of a Mapin segment code.
type Segment struct {
	Type string

	// Population is the density digit inverted (6 - raw) so that higher
	// means denser, aligning its direction with the other features.
	Population float64
	PopValid   bool

	// Luxury maps A..E to 5..1. Absent suffix leaves LuxValid false.
	Luxury   float64
	LuxValid bool
}

var luxuryRanks = map[string]float64{"A": 5, "B": 4, "C": 3, "D": 2, "E": 1}

// MapinSegment decodes a segment code. A non-matching value returns ok=false.
func MapinSegment(raw string) (Segment, bool) {
	m := mapinSegmentRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Segment{}, false
	}
	seg := Segment{Type: m[1]}

	pop, err := strconv.Atoi(m[2])
	if err == nil {
		seg.Population = float64(6 - pop)
		seg.PopValid = true
	}
	if m[3] != "" {
		if rank, ok := luxuryRanks[m[3]]; ok {
			seg.Luxury = rank
			seg.LuxValid = true
		}
	}
	return seg, true
}

// BinaryEncode maps a categorical value through a declared mapping to "0"/"1".
// Unmapped values are missing — no silent defaulting.
func BinaryEncode(raw string, mapping map[string]int) (float64, bool) {
	v, ok := mapping[strings.TrimSpace(raw)]
	if !ok {
		return 0, false
	}
	return float64(v), true
}
