package model

// DefaultSummary is used when no notes were collected.
const DefaultSummary = "Automated scoring based on transcript analysis."

// ScoringDimension is one merged scoring axis.
type ScoringDimension struct {
	Name      string  `json:"name"`
	Score     int     `json:"score"`
	Rationale *string `json:"rationale"`
}

// ScoringResponse is the result of one scoring run.
type ScoringResponse struct {
	InterviewID  string             `json:"interview_id"`
	OverallScore int                `json:"overall_score"`
	Dimensions   []ScoringDimension `json:"dimensions"`
	Summary      string             `json:"summary"`
}

// Prediction is a decoded JSON object returned by a prediction service.
type Prediction = map[string]any
