package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	maxEvidence      = 3
	maxEvidenceRunes = 160
	maxSkillLines    = 3
)

var yearsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\b`)

var skillLineMarkers = []string{"skills", "technologies", "stack"}

// sentences splits text on '.', '!' or '?' followed by whitespace or end of input,
// and on line breaks. A dot inside a token such as "Node.js" does not split.
func sentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	emit := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i, r := range runes {
		switch r {
		case '\n', '\r':
			emit(i)
			start = i + 1
		case '.', '!', '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				emit(i + 1)
			}
		}
	}
	if start < len(runes) {
		emit(len(runes))
	}
	return out
}

// years returns the largest "N years" figure found in any of texts, or 0.
func years(texts ...string) float64 {
	best := 0.0
	for _, text := range texts {
		for _, match := range yearsPattern.FindAllStringSubmatch(text, -1) {
			if v, err := strconv.ParseFloat(match[1], 64); err == nil && v > best {
				best = v
			}
		}
	}
	return best
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}

func containsMarker(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, marker := range skillLineMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
