package hpc

import (
	"fmt"
	"sort"
)

// AggregateResult is the cross-role outcome for one parameter.
type AggregateResult struct {
	Score        float64
	Grade        string
	Stakeholders map[EvaluatorRole]RoleBreakdown
	Evidence     []string
	// DroppedRoles lists roles that submitted evaluations but carry no
	// assignment weight and therefore contributed nothing. Callers should
	// log these; the drop is deliberate but must stay observable.
	DroppedRoles []EvaluatorRole
}

// AggregateParameter combines all submitted evaluations for one parameter
// into a single weighted score. Evaluations are grouped by evaluator role;
// multiple evaluations from the same role are averaged before the role's
// assignment weight is applied. The final score is renormalized over the
// weight that actually contributed, so a missing role shrinks the
// denominator instead of dragging the score down.
//
// names maps evaluator id to display name for the stakeholder breakdown.
func AggregateParameter(evals []Evaluation, assignments []Assignment, names map[string]string) AggregateResult {
	res := AggregateResult{Stakeholders: map[EvaluatorRole]RoleBreakdown{}}

	byRole := map[EvaluatorRole][]Evaluation{}
	for _, e := range evals {
		byRole[e.EvaluatorRole] = append(byRole[e.EvaluatorRole], e)
	}

	weights := map[EvaluatorRole]float64{}
	for _, a := range assignments {
		weights[a.Role] = a.Weight
	}

	var weightedSum, totalWeight float64
	for _, a := range assignments {
		roleEvals := byRole[a.Role]
		if len(roleEvals) == 0 {
			continue
		}
		avg := 0.0
		for _, e := range roleEvals {
			avg += e.Score
		}
		avg /= float64(len(roleEvals))

		weightedSum += avg * a.Weight
		totalWeight += a.Weight

		grade, _ := NormalizeScore(avg)
		entries := make([]EvaluationEntry, 0, len(roleEvals))
		for _, e := range roleEvals {
			entries = append(entries, EvaluationEntry{
				EvaluatorName: names[e.EvaluatorID],
				Score:         e.Score,
				Remark:        e.Remark,
				Confidence:    e.Confidence,
				Date:          e.Date,
			})
			if e.EvidenceNote != "" {
				res.Evidence = append(res.Evidence, fmt.Sprintf("%s: %s", a.Role, e.EvidenceNote))
			}
		}
		res.Stakeholders[a.Role] = RoleBreakdown{Score: avg, Grade: grade, Evaluations: entries}
	}

	for role := range byRole {
		if _, ok := weights[role]; !ok {
			res.DroppedRoles = append(res.DroppedRoles, role)
		}
	}
	sort.Slice(res.DroppedRoles, func(i, j int) bool { return res.DroppedRoles[i] < res.DroppedRoles[j] })

	if totalWeight > 0 {
		res.Score = weightedSum / totalWeight
	}
	res.Grade, _ = NormalizeScore(res.Score)
	return res
}
