package hpc

import "fmt"

// Validation is the outcome of checking a single evaluation before it is
// accepted as submitted. Errors block acceptance; warnings are surfaced for
// downstream review but do not block.
type Validation struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

const (
	minRemarkLen  = 10
	minConfidence = 0.5
)

// ValidateEvaluation checks structural validity and data quality of one
// evaluation. It runs at submission time only; aggregation trusts
// already-submitted evaluations.
func ValidateEvaluation(e Evaluation) Validation {
	var v Validation
	if e.Score < 1 || e.Score > 5 {
		v.Errors = append(v.Errors, "score must be between 1 and 5")
	}
	if e.Confidence < minConfidence {
		v.Warnings = append(v.Warnings, "low confidence level - consider additional evidence")
	}
	if len(e.Remark) < minRemarkLen {
		v.Warnings = append(v.Warnings, "qualitative remark should be more detailed")
	}
	v.Valid = len(v.Errors) == 0
	return v
}

// ValidateAssignments checks a full weight assignment set for one parameter:
// every role must be known and the weights must sum to 1. Historical data
// written before this check may still violate it; aggregation renormalizes.
func ValidateAssignments(assignments []Assignment) error {
	if len(assignments) == 0 {
		return fmt.Errorf("at least one role weight is required")
	}
	seen := map[EvaluatorRole]bool{}
	sum := 0.0
	for _, a := range assignments {
		if !KnownRole(a.Role) {
			return fmt.Errorf("unknown evaluator role %q", a.Role)
		}
		if seen[a.Role] {
			return fmt.Errorf("duplicate weight for role %q", a.Role)
		}
		seen[a.Role] = true
		if a.Weight < 0 || a.Weight > 1 {
			return fmt.Errorf("weight for role %q must be within [0,1]", a.Role)
		}
		sum += a.Weight
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("role weights must sum to 1, got %.3f", sum)
	}
	return nil
}
