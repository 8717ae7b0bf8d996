// Package tracelog renders a synthetic, human-readable trace of a match run.
//
// Timings are derived from the step list and a seed, not measured, so the same
// run always renders the same trace.
package tracelog

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// Status marks how a step ended.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skip"
	StatusWarn    Status = "warn"
)

// Step is one orchestrator stage as recorded by the caller.
type Step struct {
	Name   string
	Status Status
	Detail string
}

// Line is one rendered trace entry. At is the offset from the start of the run.
type Line struct {
	At       time.Duration
	Duration time.Duration
	Step     string
	Status   Status
	Detail   string
}

var baseCost = map[string]time.Duration{
	"CACHE_CHECK":      2 * time.Millisecond,
	"RESOLVE_PROFILE":  14 * time.Millisecond,
	"LOCATE_RESUME":    180 * time.Millisecond,
	"EXTRACT_TEXT":     60 * time.Millisecond,
	"COMPUTE_FALLBACK": 4 * time.Millisecond,
	"RACE_AI":          2400 * time.Millisecond,
	"SELECT_RESULT":    3 * time.Millisecond,
	"PERSIST":          18 * time.Millisecond,
	"CACHE_WRITE":      time.Millisecond,
	"RESPOND":          time.Millisecond,
}

const defaultCost = 10 * time.Millisecond

// Generate lays the steps out on a synthetic timeline. seed (typically
// "subjectId:jobId") varies the per-step jitter; skipped steps take no time.
func Generate(seed string, steps []Step) []Line {
	lines := make([]Line, 0, len(steps))
	var at time.Duration
	for i, step := range steps {
		cost := syntheticCost(seed, i, step)
		lines = append(lines, Line{
			At:       at,
			Duration: cost,
			Step:     step.Name,
			Status:   step.Status,
			Detail:   step.Detail,
		})
		at += cost
	}
	return lines
}

func syntheticCost(seed string, index int, step Step) time.Duration {
	if step.Status == StatusSkipped {
		return 0
	}
	base, ok := baseCost[step.Name]
	if !ok {
		base = defaultCost
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%d|%s", seed, index, step.Name)
	spread := uint32(base/time.Millisecond/2) + 1
	return base + time.Duration(h.Sum32()%spread)*time.Millisecond
}

// Total is the synthetic wall time of the run.
func Total(lines []Line) time.Duration {
	if len(lines) == 0 {
		return 0
	}
	last := lines[len(lines)-1]
	return last.At + last.Duration
}

// String renders a line as "[+0000.182s] LOCATE_RESUME    ok    direct ok (180ms)".
func (l Line) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[+%09.3fs] %-16s %-4s", l.At.Seconds(), l.Step, l.Status)
	if l.Detail != "" {
		b.WriteString(" ")
		b.WriteString(l.Detail)
	}
	fmt.Fprintf(&b, " (%dms)", l.Duration.Milliseconds())
	return b.String()
}

// Render formats every line.
func Render(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.String())
	}
	return out
}
