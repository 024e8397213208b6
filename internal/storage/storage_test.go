package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wurt83ow/workreport/internal/models"
	"go.uber.org/zap/zapcore"
)

type noopLog struct{}

func (noopLog) Info(string, ...zapcore.Field) {}

func newReport(id string, userID int, date string) models.DailyReport {
	return models.DailyReport{
		ReportID:   id,
		UserID:     userID,
		ReportDate: date,
		CreatedAt:  time.Now(),
		Status:     models.StatusDraft,
		AdHocTasks: []models.AdHocTaskEntry{
			{ID: id + "-a1", Content: "Fix printer"},
		},
	}
}

func TestMemoryStorage_SequenceAssignment(t *testing.T) {
	s := NewMemoryStorage(nil, noopLog{})

	first, err := s.InsertReport(newReport("r1", 7, "2024-05-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sequence)

	second, err := s.InsertReport(newReport("r2", 7, "2024-05-01"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Sequence)

	// chains are independent per user and date
	other, err := s.InsertReport(newReport("r3", 8, "2024-05-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, other.Sequence)

	_, err = s.InsertReport(newReport("r1", 7, "2024-05-01"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStorage_NoAliasing(t *testing.T) {
	s := NewMemoryStorage(nil, noopLog{})

	_, err := s.InsertReport(newReport("r1", 7, "2024-05-01"))
	require.NoError(t, err)

	got, err := s.GetReport("r1")
	require.NoError(t, err)

	// mutating a returned copy must not leak into the store
	got.AdHocTasks[0].Comment = "smuggled"

	fresh, err := s.GetReport("r1")
	require.NoError(t, err)
	assert.Empty(t, fresh.AdHocTasks[0].Comment)
}

func TestMemoryStorage_UpdateAdHocEntry(t *testing.T) {
	s := NewMemoryStorage(nil, noopLog{})

	_, err := s.InsertReport(newReport("r1", 7, "2024-05-01"))
	require.NoError(t, err)

	entry, reportID, err := s.GetAdHocEntry("r1-a1")
	require.NoError(t, err)
	assert.Equal(t, "r1", reportID)

	score := 2.0
	entry.Approved = true
	entry.ApprovedScore = &score

	require.NoError(t, s.UpdateAdHocEntry(reportID, entry))

	updated, _, err := s.GetAdHocEntry("r1-a1")
	require.NoError(t, err)
	assert.True(t, updated.Approved)

	assert.ErrorIs(t, s.UpdateAdHocEntry("r1", models.AdHocTaskEntry{ID: "ghost"}), ErrNotFound)
	assert.ErrorIs(t, s.UpdateAdHocEntry("missing", entry), ErrNotFound)
}

func TestMemoryStorage_GetReportsForMonth(t *testing.T) {
	s := NewMemoryStorage(nil, noopLog{})

	for _, r := range []models.DailyReport{
		newReport("r1", 7, "2024-05-01"),
		newReport("r2", 7, "2024-05-31"),
		newReport("r3", 7, "2024-06-01"),
		newReport("r4", 8, "2024-05-10"),
	} {
		_, err := s.InsertReport(r)
		require.NoError(t, err)
	}

	reports, err := s.GetReportsForMonth(7, 2024, 5)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestMemoryStorage_DepartmentEvaluationUpsert(t *testing.T) {
	s := NewMemoryStorage(nil, noopLog{})

	_, err := s.UpsertDepartmentEvaluation(models.DepartmentEvaluation{
		DepartmentID: 3,
		Date:         "2024-05-01",
		Rating:       models.RatingAverage,
		Comment:      "first pass",
	})
	require.NoError(t, err)

	// same key, second write replaces the first
	_, err = s.UpsertDepartmentEvaluation(models.DepartmentEvaluation{
		DepartmentID: 3,
		Date:         "2024-05-01",
		Rating:       models.RatingGood,
		Comment:      "after review",
	})
	require.NoError(t, err)

	eval, err := s.GetDepartmentEvaluation(3, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, models.RatingGood, eval.Rating)
	assert.Equal(t, "after review", eval.Comment)

	_, err = s.GetDepartmentEvaluation(3, "2024-05-02")
	assert.ErrorIs(t, err, ErrNotFound)
}
