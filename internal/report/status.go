package report

import (
	"strings"

	"github.com/wurt83ow/workreport/internal/models"
)

// Classify derives the submission state of a report from its content alone:
// a report is Submitted iff at least one task or ad-hoc comment is non-blank.
// A numeric selfScore without a comment still classifies as Draft; that is
// the documented rule, not an accident. The registry persists the result as
// the report's Status field so consumers never re-derive it.
func Classify(r models.DailyReport) models.ReportStatus {
	for _, t := range r.SelectedTasks {
		if strings.TrimSpace(t.Comment) != "" {
			return models.StatusSubmitted
		}
	}

	for _, a := range r.AdHocTasks {
		if strings.TrimSpace(a.Comment) != "" {
			return models.StatusSubmitted
		}
	}

	return models.StatusDraft
}
