package hpc

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

const (
	ApproverClassTeacher = "class_teacher"
	ApproverPrincipal    = "principal"
)

// InitiateWorkflow creates the ordered approval steps for a draft report and
// moves it under review. Step 1 (class teacher) starts pending with an
// assignment timestamp; later steps start waiting. Re-initiating after a
// rejection starts a fresh round; steps from earlier rounds stay on record
// but are no longer consulted.
func (s *Service) InitiateWorkflow(ctx context.Context, reportID string) ([]ApprovalStep, error) {
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != ReportDraft {
		return nil, fmt.Errorf("%w: status %s", ErrNotDraft, report.Status)
	}

	student, err := s.store.StudentProfile(ctx, report.StudentID)
	if err != nil {
		return nil, err
	}

	teacherID, fallback, err := s.dir.ClassTeacher(ctx, student.Grade, student.Section)
	if err != nil {
		return nil, fmt.Errorf("resolve class teacher: %w", err)
	}
	if fallback {
		log.Printf("hpc: no class teacher mapped for %s-%s; falling back to any teacher (%s)", student.Grade, student.Section, teacherID)
	}
	principalID, err := s.dir.Principal(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	round, err := s.store.LatestRound(ctx, reportID)
	if err != nil {
		return nil, err
	}
	round++

	now := s.now().UTC()
	approvers := []struct {
		role string
		id   string
	}{
		{ApproverClassTeacher, teacherID},
		{ApproverPrincipal, principalID},
	}
	steps := make([]ApprovalStep, 0, len(approvers))
	for i, a := range approvers {
		step := ApprovalStep{
			ID:           uuid.NewString(),
			ReportID:     reportID,
			Round:        round,
			StepNumber:   i + 1,
			ApproverRole: a.role,
			ApproverID:   a.id,
			DueDate:      now.AddDate(0, 0, s.dueDays(i)),
			Status:       StepWaiting,
		}
		if i == 0 {
			step.Status = StepPending
			t := now
			step.AssignedAt = &t
		}
		steps = append(steps, step)
	}

	if err := s.store.InsertSteps(ctx, steps); err != nil {
		return nil, err
	}
	if err := s.store.SetReportStatus(ctx, reportID, []ReportStatus{ReportDraft}, ReportUnderReview, ""); err != nil {
		return nil, err
	}
	return steps, nil
}

func (s *Service) dueDays(stepIdx int) int {
	if stepIdx < len(s.stepDueDays) {
		return s.stepDueDays[stepIdx]
	}
	if len(s.stepDueDays) > 0 {
		return s.stepDueDays[len(s.stepDueDays)-1]
	}
	return 7
}

// ProcessApproval resolves one pending workflow step. The store only flips a
// step that is still pending, so a concurrent duplicate resolution fails
// with ErrStepResolved instead of double-advancing the workflow.
//
// Approving the last unapproved step of the round publishes the report;
// approving any other step activates the next one. Rejection or a revision
// request sends the report back to draft; outstanding steps stay as-is until
// an explicit re-initiation supersedes them.
func (s *Service) ProcessApproval(ctx context.Context, stepID, approverID string, decision Decision, comments string) (ApprovalStep, error) {
	switch decision {
	case StepApproved, StepRejected, StepNeedsRevision:
	default:
		return ApprovalStep{}, NewValidationError(fmt.Sprintf("invalid decision %q", decision))
	}

	step, err := s.store.ResolveStep(ctx, stepID, decision, comments)
	if err != nil {
		return ApprovalStep{}, err
	}

	switch decision {
	case StepApproved:
		steps, err := s.store.ReportSteps(ctx, step.ReportID, step.Round)
		if err != nil {
			return step, err
		}
		remaining := 0
		var next *ApprovalStep
		for i := range steps {
			if steps[i].Status != StepApproved {
				remaining++
				if steps[i].StepNumber == step.StepNumber+1 {
					next = &steps[i]
				}
			}
		}
		if remaining == 0 {
			if err := s.Publish(ctx, step.ReportID, approverID); err != nil {
				return step, err
			}
		} else if next != nil {
			if err := s.store.ActivateStep(ctx, next.ID); err != nil {
				return step, err
			}
		}
	case StepRejected, StepNeedsRevision:
		if err := s.store.SetReportStatus(ctx, step.ReportID, []ReportStatus{ReportUnderReview}, ReportDraft, ""); err != nil {
			return step, err
		}
	}
	return step, nil
}
