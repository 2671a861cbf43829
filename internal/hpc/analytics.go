package hpc

import (
	"context"
	"math"

	"github.com/google/uuid"
)

// Percentile is the share of peer scores strictly below score, rounded to
// the nearest integer percent. An empty pool yields 50: with nobody to
// compare against, the student sits at the median by convention.
func Percentile(score float64, peers []float64) int {
	if len(peers) == 0 {
		return 50
	}
	below := 0
	for _, p := range peers {
		if p < score {
			below++
		}
	}
	return int(math.Round(float64(below) / float64(len(peers)) * 100))
}

// Trajectory is a trend classification plus a one-step-ahead projection.
type Trajectory struct {
	Trend     Trend
	Predicted float64
	Low       float64
	High      float64
}

// GrowthTrajectory classifies the student's direction of travel from their
// historical overall scores (oldest first, current last). With fewer than
// two prior points the trend is stable and the projection is the current
// score. Otherwise the current score is compared to the immediately prior
// one with a ±0.1 dead-zone, and the projection extrapolates the average
// per-term change, clamped to the 1..5 scale.
func GrowthTrajectory(history []float64, current float64) Trajectory {
	if len(history) < 2 {
		return Trajectory{
			Trend:     TrendStable,
			Predicted: current,
			Low:       current - 0.2,
			High:      current + 0.2,
		}
	}

	prior := history[len(history)-2]
	trend := TrendStable
	switch {
	case current > prior+0.1:
		trend = TrendImproving
	case current < prior-0.1:
		trend = TrendDeclining
	}

	avgChange := (current - history[0]) / float64(len(history)-1)
	predicted := clamp(current+avgChange, 1, 5)
	return Trajectory{
		Trend:     trend,
		Predicted: predicted,
		Low:       clamp(predicted-0.3, 1, 5),
		High:      clamp(predicted+0.3, 1, 5),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// generateAnalytics computes and stores the comparative record for one
// published report: class/grade/school percentiles among same-term peers
// and the growth trajectory over the student's report history.
func (s *Service) generateAnalytics(ctx context.Context, reportID string) error {
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	student, err := s.store.StudentProfile(ctx, report.StudentID)
	if err != nil {
		return err
	}

	classPeers, err := s.store.PeerScores(ctx, report.TermID, report.StudentID, student.Grade, student.Section)
	if err != nil {
		return err
	}
	gradePeers, err := s.store.PeerScores(ctx, report.TermID, report.StudentID, student.Grade, "")
	if err != nil {
		return err
	}
	schoolPeers, err := s.store.PeerScores(ctx, report.TermID, report.StudentID, "", "")
	if err != nil {
		return err
	}

	history, err := s.store.HistoricalReports(ctx, report.StudentID)
	if err != nil {
		return err
	}
	scores := make([]float64, 0, len(history))
	for _, h := range history {
		scores = append(scores, h.OverallScore)
	}
	traj := GrowthTrajectory(scores, report.OverallScore)

	rec := AnalyticsRecord{
		ID:               uuid.NewString(),
		StudentID:        report.StudentID,
		TermID:           report.TermID,
		ReportID:         report.ID,
		ClassPercentile:  Percentile(report.OverallScore, classPeers),
		GradePercentile:  Percentile(report.OverallScore, gradePeers),
		SchoolPercentile: Percentile(report.OverallScore, schoolPeers),
		Trend:            traj.Trend,
		PredictedScore:   traj.Predicted,
		IntervalLow:      traj.Low,
		IntervalHigh:     traj.High,
		Strengths:        report.Summary.Strengths,
		GrowthAreas:      report.Summary.GrowthAreas,
		CreatedAt:        s.now().UTC(),
	}
	_, err = s.store.InsertAnalytics(ctx, rec)
	return err
}
