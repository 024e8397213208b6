package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wurt83ow/workreport/internal/models"
	"github.com/wurt83ow/workreport/internal/storage"
	"go.uber.org/zap/zapcore"
)

type noopLog struct{}

func (noopLog) Info(string, ...zapcore.Field) {}

func newTestRegistry() (*Registry, *storage.MemoryStorage) {
	st := storage.NewMemoryStorage(nil, noopLog{})

	return NewRegistry(st, nil, nil, noopLog{}), st
}

func TestClassify(t *testing.T) {
	score := 2.0

	tests := []struct {
		name   string
		report models.DailyReport
		want   models.ReportStatus
	}{
		{
			name: "no comments anywhere",
			report: models.DailyReport{
				SelectedTasks: []models.SelectedTaskEntry{{TaskID: 1}},
				AdHocTasks:    []models.AdHocTaskEntry{{ID: "a", Content: "x"}},
			},
			want: models.StatusDraft,
		},
		{
			name: "task comment present",
			report: models.DailyReport{
				SelectedTasks: []models.SelectedTaskEntry{{TaskID: 1, Comment: "done"}},
			},
			want: models.StatusSubmitted,
		},
		{
			name: "ad-hoc comment present",
			report: models.DailyReport{
				AdHocTasks: []models.AdHocTaskEntry{{ID: "a", Content: "x", Comment: "finished"}},
			},
			want: models.StatusSubmitted,
		},
		{
			name: "whitespace comments count as blank",
			report: models.DailyReport{
				SelectedTasks: []models.SelectedTaskEntry{{TaskID: 1, Comment: "   "}},
				AdHocTasks:    []models.AdHocTaskEntry{{ID: "a", Content: "x", Comment: "\t"}},
			},
			want: models.StatusDraft,
		},
		{
			name: "selfScore alone does not submit",
			report: models.DailyReport{
				AdHocTasks: []models.AdHocTaskEntry{{ID: "a", Content: "x", SelfScore: &score}},
			},
			want: models.StatusDraft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.report))
		})
	}
}

func TestRegistry_CreateValidation(t *testing.T) {
	rg, _ := newTestRegistry()

	t.Run("empty selection", func(t *testing.T) {
		_, err := rg.Create(1, "2024-05-01", nil, nil)

		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "selectedTaskIds", ve.Field)
	})

	t.Run("empty ad-hoc content", func(t *testing.T) {
		_, err := rg.Create(1, "2024-05-01", nil, []models.AdHocTaskEntry{{Content: "  "}})

		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "content", ve.Field)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := rg.Create(1, "01.05.2024", []int{101}, nil)

		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "reportDate", ve.Field)
	})
}

func TestRegistry_VersionChain(t *testing.T) {
	rg, _ := newTestRegistry()

	first, err := rg.Create(7, "2024-05-01", []int{101}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sequence)

	second, err := rg.Create(7, "2024-05-01", []int{102}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Sequence)

	latest, err := rg.LatestForDate(7, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, second.ReportID, latest.ReportID)

	history, err := rg.History(7, "2024-05-01", "2024-05-31")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRegistry_CreateThenComment(t *testing.T) {
	rg, _ := newTestRegistry()

	created, err := rg.Create(7, "2024-05-01", []int{101}, []models.AdHocTaskEntry{
		{Content: "Fix printer"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, created.Status)
	assert.Equal(t, models.StatusDraft, Classify(created))

	updated, err := rg.UpdateComments(created.ReportID, models.ReportAmendment{
		TaskComments: map[int]string{101: "done"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, updated.Status)
	assert.Equal(t, models.StatusSubmitted, Classify(updated))
	assert.Equal(t, "done", updated.SelectedTasks[0].Comment)
}

func TestRegistry_UpdateCommentsNotFound(t *testing.T) {
	rg, _ := newTestRegistry()

	_, err := rg.UpdateComments("missing", models.ReportAmendment{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRegistry_UpdateCommentsAppendOnly(t *testing.T) {
	rg, _ := newTestRegistry()

	created, err := rg.Create(7, "2024-05-01", nil, []models.AdHocTaskEntry{
		{Content: "Fix printer"},
	})
	require.NoError(t, err)

	score := 1.5
	updated, err := rg.UpdateComments(created.ReportID, models.ReportAmendment{
		AdHocComments: map[string]models.AdHocCommentPatch{
			created.AdHocTasks[0].ID: {SelfScore: &score},
		},
		NewAdHocTasks: []models.AdHocTaskEntry{{Content: "Help new hire"}},
	})
	require.NoError(t, err)

	// existing entry survived with its self score, new entry appended
	require.Len(t, updated.AdHocTasks, 2)
	assert.Equal(t, created.AdHocTasks[0].ID, updated.AdHocTasks[0].ID)
	require.NotNil(t, updated.AdHocTasks[0].SelfScore)
	assert.InDelta(t, 1.5, *updated.AdHocTasks[0].SelfScore, 0.0001)
	assert.Equal(t, "Help new hire", updated.AdHocTasks[1].Content)

	// selfScore without a comment still leaves the report in draft
	assert.Equal(t, models.StatusDraft, updated.Status)
}

func TestRegistry_AppendedEntriesStartClean(t *testing.T) {
	rg, _ := newTestRegistry()

	score := 5.0
	rating := models.RatingGood

	created, err := rg.Create(7, "2024-05-01", nil, []models.AdHocTaskEntry{
		{Content: "Fix printer", Approved: true, ApprovedScore: &score, DirectorRating: &rating},
	})
	require.NoError(t, err)

	entry := created.AdHocTasks[0]
	assert.False(t, entry.Approved)
	assert.Nil(t, entry.ApprovedScore)
	assert.Nil(t, entry.DirectorRating)
}

func TestRegistry_Delete(t *testing.T) {
	rg, _ := newTestRegistry()

	created, err := rg.Create(7, "2024-05-01", []int{101}, nil)
	require.NoError(t, err)

	require.NoError(t, rg.Delete(created.ReportID))

	_, err = rg.LatestForDate(7, "2024-05-01")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, rg.Delete(created.ReportID), storage.ErrNotFound)
}
