package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wurt83ow/workreport/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log interface {
	Info(string, ...zapcore.Field)
}

type Storage interface {
	InsertReport(models.DailyReport) (models.DailyReport, error)
	ReplaceReport(models.DailyReport) error
	GetReport(string) (models.DailyReport, error)
	DeleteReport(string) error
	GetReports(int, string, string) ([]models.DailyReport, error)
	LatestForDate(int, string) (models.DailyReport, error)
}

// TaskCatalog owns the Task records; the registry only snapshots their
// metadata at report creation time.
type TaskCatalog interface {
	GetTask(int) (models.Task, error)
}

type Events interface {
	Emit(models.Event)
}

// Registry хранит снимки ежедневных отчетов и ведет цепочку версий
// по паре (пользователь, дата).
type Registry struct {
	storage Storage
	catalog TaskCatalog
	events  Events
	log     Log
}

func NewRegistry(storage Storage, catalog TaskCatalog, events Events, log Log) *Registry {
	return &Registry{
		storage: storage,
		catalog: catalog,
		events:  events,
		log:     log,
	}
}

const dateLayout = "2006-01-02"

// Create registers a new report snapshot. At least one selected task or
// ad-hoc entry is required, and every ad-hoc entry needs non-empty content.
func (rg *Registry) Create(userID int, date string, selectedTaskIDs []int, adHocTasks []models.AdHocTaskEntry) (models.DailyReport, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return models.DailyReport{}, models.NewValidationError("reportDate", "must be a calendar date in format 2006-01-02")
	}

	if len(selectedTaskIDs) == 0 && len(adHocTasks) == 0 {
		return models.DailyReport{}, models.NewValidationError("selectedTaskIds", "at least one task or ad-hoc entry is required")
	}

	adHoc, err := buildAdHocEntries(adHocTasks)
	if err != nil {
		return models.DailyReport{}, err
	}

	selected := make([]models.SelectedTaskEntry, 0, len(selectedTaskIDs))

	for _, taskID := range selectedTaskIDs {
		entry := models.SelectedTaskEntry{TaskID: taskID}

		if rg.catalog != nil {
			task, err := rg.catalog.GetTask(taskID)
			if err != nil {
				rg.log.Info("cannot snapshot task metadata: ", zap.Int("taskId", taskID), zap.Error(err))
			} else {
				entry.Title = task.Title
				entry.Description = task.Description
			}
		}

		selected = append(selected, entry)
	}

	r := models.DailyReport{
		ReportID:      uuid.New().String(),
		UserID:        userID,
		ReportDate:    date,
		CreatedAt:     time.Now(),
		SelectedTasks: selected,
		AdHocTasks:    adHoc,
	}
	r.Status = Classify(r)

	saved, err := rg.storage.InsertReport(r)
	if err != nil {
		return models.DailyReport{}, err
	}

	rg.emit(models.EventReportCreated, saved)

	return saved, nil
}

// History returns all snapshots for the date range, drafts included.
// Ordering is up to the caller.
func (rg *Registry) History(userID int, from, to string) ([]models.DailyReport, error) {
	return rg.storage.GetReports(userID, from, to)
}

// LatestForDate returns the current snapshot of the (userID, date) chain,
// or storage.ErrNotFound when the user has no report for the date.
func (rg *Registry) LatestForDate(userID int, date string) (models.DailyReport, error) {
	return rg.storage.LatestForDate(userID, date)
}

// UpdateComments merges an amendment into an existing report. The merge only
// sets comment/selfScore fields and appends brand-new ad-hoc entries; it can
// never remove anything already in the report.
func (rg *Registry) UpdateComments(reportID string, amendment models.ReportAmendment) (models.DailyReport, error) {
	r, err := rg.storage.GetReport(reportID)
	if err != nil {
		return models.DailyReport{}, err
	}

	wasDraft := r.Status == models.StatusDraft

	for i, t := range r.SelectedTasks {
		if comment, ok := amendment.TaskComments[t.TaskID]; ok {
			r.SelectedTasks[i].Comment = comment
		}
	}

	for i, a := range r.AdHocTasks {
		patch, ok := amendment.AdHocComments[a.ID]
		if !ok {
			continue
		}

		if patch.Comment != nil {
			r.AdHocTasks[i].Comment = *patch.Comment
		}

		if patch.SelfScore != nil {
			if *patch.SelfScore < 0 {
				return models.DailyReport{}, models.NewValidationError("selfScore", "must not be negative")
			}

			r.AdHocTasks[i].SelfScore = patch.SelfScore
		}
	}

	appended, err := buildAdHocEntries(amendment.NewAdHocTasks)
	if err != nil {
		return models.DailyReport{}, err
	}

	r.AdHocTasks = append(r.AdHocTasks, appended...)

	r.Status = Classify(r)

	if err := rg.storage.ReplaceReport(r); err != nil {
		return models.DailyReport{}, err
	}

	if wasDraft && r.Status == models.StatusSubmitted {
		rg.emit(models.EventReportSubmitted, r)
	}

	return r, nil
}

// Delete removes a report snapshot for good.
func (rg *Registry) Delete(reportID string) error {
	return rg.storage.DeleteReport(reportID)
}

// buildAdHocEntries validates incoming ad-hoc entries and stamps fresh ids.
func buildAdHocEntries(entries []models.AdHocTaskEntry) ([]models.AdHocTaskEntry, error) {
	result := make([]models.AdHocTaskEntry, 0, len(entries))

	for _, e := range entries {
		if strings.TrimSpace(e.Content) == "" {
			return nil, models.NewValidationError("content", "ad-hoc entry content must not be empty")
		}

		if e.SelfScore != nil && *e.SelfScore < 0 {
			return nil, models.NewValidationError("selfScore", "must not be negative")
		}

		e.ID = uuid.New().String()
		// evaluation fields start clean regardless of caller input
		e.Approved = false
		e.ApprovedScore = nil
		e.DirectorRating = nil
		e.DirectorComment = ""

		result = append(result, e)
	}

	return result, nil
}

func (rg *Registry) emit(eventType string, r models.DailyReport) {
	if rg.events == nil {
		return
	}

	rg.events.Emit(models.Event{
		Type:       eventType,
		SubjectIDs: []string{r.ReportID, strconv.Itoa(r.UserID)},
		Payload:    r,
	})
}
