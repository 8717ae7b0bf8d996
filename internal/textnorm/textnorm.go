// Package textnorm canonicalizes free text into comparable tokens.
//
// Skill extraction and keyword overlap both tokenize through this package so
// that "React.js" in a job posting and "react" in a resume compare equal.
package textnorm

import (
	"strings"
	"unicode"
)

var synonyms = map[string]string{
	"react.js":   "react",
	"reactjs":    "react",
	"node.js":    "node",
	"nodejs":     "node",
	"vue.js":     "vue",
	"vuejs":      "vue",
	"next.js":    "next",
	"nextjs":     "next",
	"nuxt.js":    "nuxt",
	"express.js": "express",
	"expressjs":  "express",
	"angular.js": "angular",
	"angularjs":  "angular",
	"golang":     "go",
	"js":         "javascript",
	"ts":         "typescript",
	"postgres":   "postgresql",
	"k8s":        "kubernetes",
	"mongo":      "mongodb",
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "our": {}, "that": {}, "the": {}, "their": {},
	"this": {}, "to": {}, "was": {}, "we": {}, "will": {}, "with": {}, "you": {}, "your": {},
	"who": {}, "which": {}, "can": {}, "all": {}, "also": {}, "not": {}, "into": {},
	"such": {}, "etc": {}, "e.g": {}, "i.e": {}, "i": {}, "my": {}, "me": {},
}

// Fold maps a lowercase token to its canonical spelling.
func Fold(token string) string {
	if canonical, ok := synonyms[token]; ok {
		return canonical
	}
	return token
}

// Tokens lowercases s, splits it on anything that is not a letter, digit,
// '+', '#' or '.', and folds known synonyms. Order and duplicates are kept.
func Tokens(s string) []string {
	if s == "" {
		return nil
	}
	var (
		out  []string
		word strings.Builder
	)
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := strings.Trim(word.String(), ".")
		word.Reset()
		if w == "" {
			return
		}
		out = append(out, Fold(w))
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}

// Normalize returns the canonical token sequence joined by single spaces.
func Normalize(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Keywords returns the distinct tokens of s that are not stop words, in first-seen order.
func Keywords(s string) []string {
	tokens := Tokens(s)
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if IsStopWord(t) {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Set returns the keywords of s as a lookup set.
func Set(s string) map[string]struct{} {
	keywords := Keywords(s)
	out := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		out[k] = struct{}{}
	}
	return out
}

// IsStopWord reports whether token carries no matching signal.
func IsStopWord(token string) bool {
	if len(token) < 2 && token != "c" && token != "r" {
		return true
	}
	_, ok := stopWords[token]
	return ok
}
