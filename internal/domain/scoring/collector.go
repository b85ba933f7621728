// Package scoring turns raw prediction payloads into scored dimensions and
// combines them into an overall score.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talenti/fitscore/internal/domain/model"
)

// Keys read from a prediction payload.
const (
	keyScores    = "scores"
	keyScore     = "score"
	keyRationale = "rationale"
	keySummary   = "summary"
	keyError     = "error"
)

// Collect extracts valid dimensions from one prediction payload. Problems are
// reported as notes rather than errors; a malformed entry never discards its
// siblings. Entries are visited in name order so notes are deterministic.
func Collect(raw model.Prediction, label string) ([]model.ScoringDimension, []string) {
	if raw == nil {
		return nil, []string{fmt.Sprintf("%s returned an invalid response.", label)}
	}
	if msg, failed := errorMessage(raw[keyError]); failed {
		return nil, []string{fmt.Sprintf("%s error: %s", label, msg)}
	}

	var (
		dims  []model.ScoringDimension
		notes []string
	)
	scores, ok := raw[keyScores].(map[string]any)
	if !ok {
		notes = append(notes, fmt.Sprintf("%s returned no scores.", label))
	} else {
		names := make([]string, 0, len(scores))
		for name := range scores {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			dim, note := collectOne(name, scores[name], label)
			if note != "" {
				notes = append(notes, note)
				continue
			}
			dims = append(dims, dim)
		}
	}

	if summary, ok := raw[keySummary].(string); ok && strings.TrimSpace(summary) != "" {
		notes = append(notes, fmt.Sprintf("%s summary: %s", label, strings.TrimSpace(summary)))
	}
	return dims, notes
}

func collectOne(name string, data any, label string) (model.ScoringDimension, string) {
	entry, ok := data.(map[string]any)
	if !ok {
		return model.ScoringDimension{}, fmt.Sprintf("%s dimension %q skipped: not an object.", label, name)
	}
	rawScore, ok := entry[keyScore]
	if !ok || rawScore == nil {
		return model.ScoringDimension{}, fmt.Sprintf("%s dimension %q skipped: missing score.", label, name)
	}
	score, ok := toNumber(rawScore)
	if !ok {
		return model.ScoringDimension{}, fmt.Sprintf("%s dimension %q skipped: non-numeric score.", label, name)
	}

	rationale := fmt.Sprintf("%s score.", label)
	if r, ok := entry[keyRationale].(string); ok && strings.TrimSpace(r) != "" {
		rationale = fmt.Sprintf("%s: %s", label, strings.TrimSpace(r))
	}
	return model.ScoringDimension{Name: name, Score: clampScore(score), Rationale: &rationale}, ""
}

// errorMessage reports whether v marks the payload as failed. Null, false and
// empty strings do not.
func errorMessage(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(x) == "" {
			return "", false
		}
		return x, true
	case bool:
		if !x {
			return "", false
		}
		return "unknown error", true
	default:
		return fmt.Sprint(x), true
	}
}
