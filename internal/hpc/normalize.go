package hpc

// Level is the qualitative band a score falls into.
type Level string

const (
	LevelOutstanding      Level = "outstanding"
	LevelExcellent        Level = "excellent"
	LevelGood             Level = "good"
	LevelSatisfactory     Level = "satisfactory"
	LevelNeedsImprovement Level = "needs_improvement"
)

// NormalizeScore maps a raw 1..5 score onto its grade letter and qualitative
// level. Band lower bounds are inclusive.
func NormalizeScore(score float64) (grade string, level Level) {
	switch {
	case score >= 4.5:
		return "A+", LevelOutstanding
	case score >= 3.5:
		return "A", LevelExcellent
	case score >= 2.5:
		return "B", LevelGood
	case score >= 1.5:
		return "C", LevelSatisfactory
	default:
		return "D", LevelNeedsImprovement
	}
}
