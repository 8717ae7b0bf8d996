package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"jobmatch-backend/internal/scoring"
)

const (
	defaultAISummary  = "AI assessment completed."
	maxAIEvidence     = 3
	maxAIEvidenceRune = 160
)

var (
	ErrNoJSONObject = errors.New("ai reply has no json object")
	ErrNoScore      = errors.New("ai reply has no usable score")
)

var (
	codeFence      = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
	scoreRecovery  = regexp.MustCompile(`(?i)"?score"?\s*[:=]\s*"?(\d+(?:\.\d+)?)`)
	recommendation = strings.NewReplacer(" ", "_", "-", "_")
	listSeparators = regexp.MustCompile(`[,;\n]`)
)

// ParseAIReply turns a model reply into a Result. It strips code fences, decodes
// the first JSON object, clamps the score to [0,100] and fills defaults for any
// missing field. When no object decodes, a bare "score: N" is recovered and
// recovered is true; the caller then supplies skill lists.
func ParseAIReply(raw string) (res scoring.Result, recovered bool, err error) {
	cleaned := codeFence.ReplaceAllString(raw, "")
	res, err = decodeFirstObject(cleaned)
	if err == nil {
		return res, false, nil
	}

	match := scoreRecovery.FindStringSubmatch(cleaned)
	if match == nil {
		return scoring.Result{}, false, err
	}
	score, convErr := strconv.ParseFloat(match[1], 64)
	if convErr != nil {
		return scoring.Result{}, false, err
	}
	res = withDefaults(scoring.Result{Score: clampScore(score)})
	return res, true, nil
}

// aiPayload leaves every field untyped so one oddly shaped field does not sink
// the whole decode. Each one is coerced on its own.
type aiPayload struct {
	Score          any `json:"score"`
	MatchedSkills  any `json:"matchedSkills"`
	MissingSkills  any `json:"missingSkills"`
	Strengths      any `json:"strengths"`
	Weaknesses     any `json:"weaknesses"`
	Summary        any `json:"summary"`
	Recommendation any `json:"recommendation"`
	Evidence       any `json:"evidence"`
}

func decodeFirstObject(text string) (scoring.Result, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return scoring.Result{}, ErrNoJSONObject
	}
	var payload aiPayload
	if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&payload); err != nil {
		return scoring.Result{}, fmt.Errorf("decode ai reply: %w", err)
	}

	score, ok := numeric(payload.Score)
	if !ok {
		return scoring.Result{}, ErrNoScore
	}

	res := scoring.Result{
		Score:          clampScore(score),
		MatchedSkills:  stringList(payload.MatchedSkills, 0, 0),
		MissingSkills:  stringList(payload.MissingSkills, 0, 0),
		Strengths:      stringList(payload.Strengths, 0, 0),
		Weaknesses:     stringList(payload.Weaknesses, 0, 0),
		Summary:        scalarText(payload.Summary),
		Recommendation: scoring.Recommendation(recommendation.Replace(strings.ToLower(stringValue(payload.Recommendation)))),
		Evidence:       stringList(payload.Evidence, maxAIEvidence, maxAIEvidenceRune),
	}
	return withDefaults(res), nil
}

func withDefaults(res scoring.Result) scoring.Result {
	if res.MatchedSkills == nil {
		res.MatchedSkills = []string{}
	}
	if res.MissingSkills == nil {
		res.MissingSkills = []string{}
	}
	if res.Strengths == nil {
		res.Strengths = []string{}
	}
	if res.Weaknesses == nil {
		res.Weaknesses = []string{}
	}
	if res.Evidence == nil {
		res.Evidence = []string{}
	}
	if res.Summary == "" {
		res.Summary = defaultAISummary
	}
	if !res.Recommendation.Valid() {
		res.Recommendation = scoring.Bucket(res.Score)
	}
	return res
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func clampScore(v float64) int {
	return scoring.Clamp(int(math.Round(math.Max(-1, math.Min(101, v)))))
}

// stringList keeps non-empty string-like entries, de-duplicated in order. A
// bare string is split on commas, semicolons and newlines; any other non-list
// value yields nil. limit caps the entry count and runes caps each entry's
// length; 0 means unbounded.
func stringList(v any, limit, runes int) []string {
	var values []any
	switch t := v.(type) {
	case []any:
		values = t
	case string:
		for _, part := range listSeparators.Split(t, -1) {
			values = append(values, part)
		}
	default:
		return nil
	}

	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, item := range values {
		if limit > 0 && len(out) == limit {
			break
		}
		s := scalarText(item)
		if s == "" {
			continue
		}
		if runes > 0 {
			if r := []rune(s); len(r) > runes {
				s = string(r[:runes])
			}
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// scalarText renders strings, numbers and booleans. Objects, lists and null give "".
func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
