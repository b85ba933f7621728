package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/talenti/fitscore/internal/domain/model"
)

const (
	defaultWeight   = 1.0
	rationaleJoiner = "; "
)

type group struct {
	sum        int
	n          int
	rationales []string
}

// Aggregate merges both sources' dimensions by exact name and computes the
// rubric-weighted overall score. Merged dimensions are sorted by name.
func Aggregate(a, b []model.ScoringDimension, rubric map[string]any) (int, []model.ScoringDimension, error) {
	groups := make(map[string]*group)
	for _, d := range append(append([]model.ScoringDimension(nil), a...), b...) {
		g, ok := groups[d.Name]
		if !ok {
			g = &group{}
			groups[d.Name] = g
		}
		g.sum += d.Score
		g.n++
		if d.Rationale != nil && *d.Rationale != "" {
			g.rationales = append(g.rationales, *d.Rationale)
		}
	}
	if len(groups) == 0 {
		return 0, nil, ErrNoScores
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	merged := make([]model.ScoringDimension, 0, len(names))
	for _, name := range names {
		g := groups[name]
		d := model.ScoringDimension{
			Name:  name,
			Score: int(math.Round(float64(g.sum) / float64(g.n))),
		}
		if len(g.rationales) > 0 {
			joined := strings.Join(g.rationales, rationaleJoiner)
			d.Rationale = &joined
		}
		merged = append(merged, d)
	}

	return overall(merged, rubric), merged, nil
}

// Weight returns the rubric weight for name: numeric values are used as is
// (negatives clamp to zero), anything else defaults to 1.
func Weight(rubric map[string]any, name string) float64 {
	v, ok := rubric[name]
	if !ok {
		return defaultWeight
	}
	w, ok := toNumber(v)
	if !ok {
		return defaultWeight
	}
	return math.Max(0, w)
}

func overall(dims []model.ScoringDimension, rubric map[string]any) int {
	var weighted, total, plain float64
	for _, d := range dims {
		w := Weight(rubric, d.Name)
		weighted += float64(d.Score) * w
		total += w
		plain += float64(d.Score)
	}
	if total <= 0 {
		return int(math.Round(plain / float64(len(dims))))
	}
	return int(math.Round(weighted / total))
}
