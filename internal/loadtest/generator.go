package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/talenti/fitscore/internal/domain/model"
	"github.com/talenti/fitscore/pkg/logger"
)

var (
	dimensions = []string{"ownership", "clarity", "collaboration", "adaptability", "judgement"}
	speakers   = []string{"interviewer", "candidate"}
	utterances = []string{
		"Tell me about a time you owned a difficult delivery.",
		"I took over the migration when the lead left and shipped it two weeks early.",
		"How do you handle disagreement with a senior colleague?",
		"I write down both positions and we pick the one the data supports.",
		"What do you do when requirements are unclear?",
		"I ship a small slice, show it, and adjust from the feedback.",
		"Describe a mistake you made in production.",
		"I dropped an index during peak traffic, rolled back, and wrote the runbook.",
	}
	conflictStyles = []string{"direct", "consensus", "escalate"}
	archetypes     = []string{"builder", "operator", "specialist"}
)

// generateRequests creates cfg.Requests scoring requests. Output depends only
// on cfg.Seed, cfg.Requests and cfg.OrgID.
func generateRequests(ctx context.Context, cfg *Config, stats *Stats) []model.ScoringRequest {
	logger.Get().Info(ctx, "generating scoring requests", logger.Int("requests", cfg.Requests))

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	reqs := make([]model.ScoringRequest, cfg.Requests)
	for i := range reqs {
		reqs[i] = generateRequest(rng, i, cfg.OrgID)
	}
	stats.Generated = len(reqs)
	return reqs
}

func generateRequest(rng *rand.Rand, i int, orgID string) model.ScoringRequest {
	n := 2 + rng.IntN(5)
	transcript := make([]model.TranscriptSegment, n)
	for j := range transcript {
		transcript[j] = model.TranscriptSegment{
			Speaker: speakers[j%len(speakers)],
			Content: utterances[rng.IntN(len(utterances))],
		}
	}

	rubric := make(map[string]any, len(dimensions))
	for _, d := range dimensions {
		if rng.IntN(4) == 0 {
			continue
		}
		rubric[d] = float64(1+rng.IntN(9)) / 10
	}

	req := model.ScoringRequest{
		InterviewID:    fmt.Sprintf("load-%05d-%08x", i, rng.Uint32()),
		Transcript:     transcript,
		Rubric:         rubric,
		JobDescription: "Backend engineer owning payments services.",
		ResumeText:     "Seven years building distributed systems.",
		RoleTitle:      "Backend Engineer",
		Seniority:      "senior",
		CandidateID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("candidate-%d", i))).String(),
	}
	if orgID != "" {
		req.OrgID = orgID
		return req
	}

	req.OperatingEnvironment = model.OperatingEnvironment{
		model.EnvControlVsAutonomy:        "autonomy",
		model.EnvOutcomeVsProcess:         "outcome",
		model.EnvConflictStyle:            conflictStyles[rng.IntN(len(conflictStyles))],
		model.EnvDecisionReality:          "data_driven",
		model.EnvAmbiguityLoad:            "high",
		model.EnvHighPerformanceArchetype: archetypes[rng.IntN(len(archetypes))],
		model.EnvDimensionWeights:         map[string]any{"ownership": 0.6, "clarity": 0.4},
	}
	signals := make([]any, 0, len(dimensions))
	for _, d := range dimensions {
		signals = append(signals, map[string]any{
			"signal_id": d + "_signal",
			"dimension": d,
			"score_map": map[string]any{"weak": 20.0, "ok": 60.0, "strong": 90.0},
		})
	}
	req.Taxonomy = model.Taxonomy{
		model.TaxonomyKeyID:      "load",
		model.TaxonomyKeyVersion: "1",
		model.TaxonomyKeySignals: signals,
	}
	return req
}
