// Package notify delivers publish notifications to report stakeholders.
// Delivery is best-effort by contract: the pipeline logs failures and never
// lets them affect report state.
package notify

import (
	"context"
	"log"
)

// LogNotifier records notifications to the process log. It stands in for
// the platform messaging integration in offline mode and in tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (*LogNotifier) ReportPublished(_ context.Context, reportID string) error {
	log.Printf("notify: report %s published; notifying stakeholders", reportID)
	return nil
}
