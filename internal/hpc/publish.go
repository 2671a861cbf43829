package hpc

import (
	"context"
	"errors"
	"log"
)

// Publish marks a report published, stamps approver and time, then runs
// analytics and notifies stakeholders. Idempotent: a report that is already
// published is left untouched and produces no second analytics record.
// Analytics and notification failures are logged only; they never roll back
// publication.
func (s *Service) Publish(ctx context.Context, reportID, publishedBy string) error {
	err := s.store.SetReportStatus(ctx, reportID, []ReportStatus{ReportUnderReview, ReportApproved, ReportDraft}, ReportPublished, publishedBy)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Either the report does not exist or it was already published.
			if r, gerr := s.store.GetReport(ctx, reportID); gerr == nil && r.Status == ReportPublished {
				return nil
			}
		}
		return err
	}

	if err := s.generateAnalytics(ctx, reportID); err != nil {
		log.Printf("hpc: analytics for report %s failed: %v", reportID, err)
	}
	if s.notifier != nil {
		if err := s.notifier.ReportPublished(ctx, reportID); err != nil {
			log.Printf("hpc: stakeholder notification for report %s failed: %v", reportID, err)
		}
	}
	return nil
}
