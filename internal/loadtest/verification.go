package loadtest

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/talenti/fitscore/internal/domain/model"
)

// verifyResponse checks a successful reply against the response contract.
func verifyResponse(req *model.ScoringRequest, resp *model.ScoringResponse) error {
	if resp.InterviewID != req.InterviewID {
		return fmt.Errorf("interview_id %q does not match request %q", resp.InterviewID, req.InterviewID)
	}
	if resp.OverallScore < 0 || resp.OverallScore > 100 {
		return fmt.Errorf("overall_score %d out of range", resp.OverallScore)
	}
	if len(resp.Dimensions) == 0 {
		return fmt.Errorf("no dimensions returned")
	}
	if resp.Summary == "" {
		return fmt.Errorf("empty summary")
	}
	names := make([]string, len(resp.Dimensions))
	for i, d := range resp.Dimensions {
		if d.Score < 0 || d.Score > 100 {
			return fmt.Errorf("dimension %q score %d out of range", d.Name, d.Score)
		}
		if i > 0 && names[i-1] == d.Name {
			return fmt.Errorf("dimension %q returned twice", d.Name)
		}
		names[i] = d.Name
	}
	if !sort.StringsAreSorted(names) {
		return fmt.Errorf("dimensions not sorted by name: %v", names)
	}
	return nil
}

// verifyRepeat checks that a resubmitted request scored identically.
func verifyRepeat(first, again *model.ScoringResponse) error {
	if !reflect.DeepEqual(first, again) {
		return fmt.Errorf("interview %s scored %d then %d", first.InterviewID, first.OverallScore, again.OverallScore)
	}
	return nil
}
