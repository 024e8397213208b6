package scoring

import (
	"github.com/wurt83ow/workreport/internal/approval"
	"github.com/wurt83ow/workreport/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Display tiers for coloring the monthly average. Presentation only,
// nothing stored depends on them.
const (
	TierExcellent = "excellent" // >= 120
	TierGood      = "good"      // >= 100
	TierAverage   = "average"   // >= 80
	TierPoor      = "poor"      // < 80
)

type Log interface {
	Info(string, ...zapcore.Field)
}

type Storage interface {
	GetReportsForMonth(int, int, int) ([]models.DailyReport, error)
}

// External is the scoring service contract; its records and average are
// authoritative and opaque to this engine.
type External interface {
	GetMonthlyScores(int, int, int) (models.ExtScoreData, error)
}

// Aggregator merges externally computed task scores with director-approved
// ad-hoc scores into one monthly summary.
type Aggregator struct {
	storage  Storage
	external External
	log      Log
}

func NewAggregator(storage Storage, external External, log Log) *Aggregator {
	return &Aggregator{
		storage:  storage,
		external: external,
		log:      log,
	}
}

// Summarize builds the monthly summary for a user. A scoring service failure
// degrades to an empty scores list and absent average; the ad-hoc portions
// are built from local data either way.
func (a *Aggregator) Summarize(userID, year, month int) (models.MonthlyScoreSummary, error) {
	summary := models.MonthlyScoreSummary{
		Scores:             make([]models.TaskScoreRecord, 0),
		AdHocTaskScores:    make([]models.AdHocScoreRecord, 0),
		RejectedAdHocTasks: make([]models.AdHocTaskEntry, 0),
	}

	reports, err := a.storage.GetReportsForMonth(userID, year, month)
	if err != nil {
		return models.MonthlyScoreSummary{}, err
	}

	for _, r := range reports {
		for _, entry := range r.AdHocTasks {
			switch approval.StateOf(entry) {
			case approval.StateApproved:
				summary.AdHocTaskScores = append(summary.AdHocTaskScores, models.AdHocScoreRecord{
					EntryID:    entry.ID,
					Content:    entry.Content,
					Score:      *entry.ApprovedScore,
					ReportDate: r.ReportDate,
				})
			case approval.StateRejected:
				// surfaced for visibility, never counted
				summary.RejectedAdHocTasks = append(summary.RejectedAdHocTasks, entry)
			}
		}
	}

	if a.external != nil {
		ext, err := a.external.GetMonthlyScores(userID, year, month)
		if err != nil {
			a.log.Info("scoring service unavailable, returning ad-hoc data only: ", zap.Error(err))

			return summary, nil
		}

		if ext.Scores != nil {
			summary.Scores = ext.Scores
		}

		if len(ext.Scores) > 0 {
			summary.AverageScore = ext.AverageScore
		}
	}

	return summary, nil
}

// Tier buckets an average score into one of four fixed severity tiers.
func Tier(average float64) string {
	switch {
	case average >= 120:
		return TierExcellent
	case average >= 100:
		return TierGood
	case average >= 80:
		return TierAverage
	default:
		return TierPoor
	}
}
