package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wurt83ow/workreport/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrNotFound indicates the requested record does not exist in the store.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("data conflict")
)

type (
	StorageReports   = map[string]models.DailyReport
	StorageDeptEvals = map[string]models.DepartmentEvaluation
)

type Log interface {
	Info(string, ...zapcore.Field)
}

type Keeper interface {
	LoadReports() (StorageReports, error)
	SaveReport(models.DailyReport) error
	DeleteReport(string) error
	LoadDepartmentEvaluations() (StorageDeptEvals, error)
	SaveDepartmentEvaluation(models.DepartmentEvaluation) error
	Ping() bool
	Close() bool
}

type MemoryStorage struct {
	rmx       sync.RWMutex
	emx       sync.RWMutex
	reports   StorageReports
	deptEvals StorageDeptEvals
	keeper    Keeper
	log       Log
}

func NewMemoryStorage(keeper Keeper, log Log) *MemoryStorage {
	reports := make(StorageReports)
	deptEvals := make(StorageDeptEvals)

	if keeper != nil {
		var err error

		reports, err = keeper.LoadReports()
		if err != nil {
			log.Info("cannot load report data: ", zap.Error(err))
			reports = make(StorageReports)
		}

		deptEvals, err = keeper.LoadDepartmentEvaluations()
		if err != nil {
			log.Info("cannot load department evaluation data: ", zap.Error(err))
			deptEvals = make(StorageDeptEvals)
		}
	}

	return &MemoryStorage{
		reports:   reports,
		deptEvals: deptEvals,
		keeper:    keeper,
		log:       log,
	}
}

// deptEvalKey builds the upsert key for a (department, date) evaluation.
func deptEvalKey(departmentID int, date string) string {
	return fmt.Sprintf("%d %s", departmentID, date)
}

// cloneReport returns a deep copy so that callers never alias the slices
// held by the store. A failed write must leave the stored state intact.
func cloneReport(r models.DailyReport) models.DailyReport {
	c := r

	c.SelectedTasks = make([]models.SelectedTaskEntry, len(r.SelectedTasks))
	copy(c.SelectedTasks, r.SelectedTasks)

	for i, t := range r.SelectedTasks {
		if t.DirectorEvaluation != nil {
			ev := *t.DirectorEvaluation
			c.SelectedTasks[i].DirectorEvaluation = &ev
		}
	}

	c.AdHocTasks = make([]models.AdHocTaskEntry, len(r.AdHocTasks))
	copy(c.AdHocTasks, r.AdHocTasks)

	for i, a := range r.AdHocTasks {
		if a.SelfScore != nil {
			v := *a.SelfScore
			c.AdHocTasks[i].SelfScore = &v
		}

		if a.ApprovedScore != nil {
			v := *a.ApprovedScore
			c.AdHocTasks[i].ApprovedScore = &v
		}

		if a.DirectorRating != nil {
			v := *a.DirectorRating
			c.AdHocTasks[i].DirectorRating = &v
		}
	}

	return c
}

// InsertReport stores a new report snapshot, assigning the next sequence
// number in the (userID, reportDate) version chain.
func (s *MemoryStorage) InsertReport(report models.DailyReport) (models.DailyReport, error) {
	s.rmx.Lock()
	defer s.rmx.Unlock()

	if _, exists := s.reports[report.ReportID]; exists {
		return models.DailyReport{}, ErrConflict
	}

	seq := 0

	for _, r := range s.reports {
		if r.UserID == report.UserID && r.ReportDate == report.ReportDate && r.Sequence > seq {
			seq = r.Sequence
		}
	}

	report.Sequence = seq + 1

	if err := s.saveReport(report); err != nil {
		return models.DailyReport{}, err
	}

	s.reports[report.ReportID] = cloneReport(report)

	return report, nil
}

// ReplaceReport overwrites an existing snapshot under the same id.
func (s *MemoryStorage) ReplaceReport(report models.DailyReport) error {
	s.rmx.Lock()
	defer s.rmx.Unlock()

	if _, exists := s.reports[report.ReportID]; !exists {
		return ErrNotFound
	}

	if err := s.saveReport(report); err != nil {
		return err
	}

	s.reports[report.ReportID] = cloneReport(report)

	return nil
}

func (s *MemoryStorage) saveReport(report models.DailyReport) error {
	if s.keeper == nil {
		return nil
	}

	return s.keeper.SaveReport(report)
}

func (s *MemoryStorage) GetReport(reportID string) (models.DailyReport, error) {
	s.rmx.RLock()
	defer s.rmx.RUnlock()

	r, exists := s.reports[reportID]
	if !exists {
		return models.DailyReport{}, ErrNotFound
	}

	return cloneReport(r), nil
}

// DeleteReport is a hard removal, no tombstone is kept.
func (s *MemoryStorage) DeleteReport(reportID string) error {
	s.rmx.Lock()
	defer s.rmx.Unlock()

	if _, exists := s.reports[reportID]; !exists {
		return ErrNotFound
	}

	if s.keeper != nil {
		if err := s.keeper.DeleteReport(reportID); err != nil {
			return err
		}
	}

	delete(s.reports, reportID)

	return nil
}

// GetReports returns every snapshot of the user in [from, to] inclusive.
// ISO dates compare correctly as strings. No ordering is guaranteed.
func (s *MemoryStorage) GetReports(userID int, from, to string) ([]models.DailyReport, error) {
	s.rmx.RLock()
	defer s.rmx.RUnlock()

	result := make([]models.DailyReport, 0)

	for _, r := range s.reports {
		if r.UserID != userID {
			continue
		}

		if (from == "" || r.ReportDate >= from) && (to == "" || r.ReportDate <= to) {
			result = append(result, cloneReport(r))
		}
	}

	return result, nil
}

// LatestForDate returns the snapshot with the greatest sequence number for
// the (userID, date) chain.
func (s *MemoryStorage) LatestForDate(userID int, date string) (models.DailyReport, error) {
	s.rmx.RLock()
	defer s.rmx.RUnlock()

	var (
		latest models.DailyReport
		found  bool
	)

	for _, r := range s.reports {
		if r.UserID != userID || r.ReportDate != date {
			continue
		}

		if !found || r.Sequence > latest.Sequence {
			latest = r
			found = true
		}
	}

	if !found {
		return models.DailyReport{}, ErrNotFound
	}

	return cloneReport(latest), nil
}

// GetReportsForMonth returns every snapshot of the user within the month.
func (s *MemoryStorage) GetReportsForMonth(userID, year, month int) ([]models.DailyReport, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)

	s.rmx.RLock()
	defer s.rmx.RUnlock()

	result := make([]models.DailyReport, 0)

	for _, r := range s.reports {
		if r.UserID == userID && len(r.ReportDate) >= len(prefix) && r.ReportDate[:len(prefix)] == prefix {
			result = append(result, cloneReport(r))
		}
	}

	return result, nil
}

// GetAdHocEntry finds an ad-hoc entry by id and returns it together with the
// id of its containing report.
func (s *MemoryStorage) GetAdHocEntry(entryID string) (models.AdHocTaskEntry, string, error) {
	s.rmx.RLock()
	defer s.rmx.RUnlock()

	for _, r := range s.reports {
		for _, a := range r.AdHocTasks {
			if a.ID == entryID {
				c := cloneReport(r)

				for _, ca := range c.AdHocTasks {
					if ca.ID == entryID {
						return ca, r.ReportID, nil
					}
				}
			}
		}
	}

	return models.AdHocTaskEntry{}, "", ErrNotFound
}

// UpdateAdHocEntry replaces a single entry inside its report atomically.
// Last write wins; there is no version token.
func (s *MemoryStorage) UpdateAdHocEntry(reportID string, entry models.AdHocTaskEntry) error {
	s.rmx.Lock()
	defer s.rmx.Unlock()

	r, exists := s.reports[reportID]
	if !exists {
		return ErrNotFound
	}

	updated := cloneReport(r)
	found := false

	for i, a := range updated.AdHocTasks {
		if a.ID == entry.ID {
			updated.AdHocTasks[i] = entry
			found = true

			break
		}
	}

	if !found {
		return ErrNotFound
	}

	if err := s.saveReport(updated); err != nil {
		return err
	}

	s.reports[reportID] = updated

	return nil
}

// UpsertDepartmentEvaluation writes the evaluation for (departmentID, date),
// replacing any previous rating/comment under the same key.
func (s *MemoryStorage) UpsertDepartmentEvaluation(eval models.DepartmentEvaluation) (models.DepartmentEvaluation, error) {
	eval.UpdatedAt = time.Now()

	s.emx.Lock()
	defer s.emx.Unlock()

	if s.keeper != nil {
		if err := s.keeper.SaveDepartmentEvaluation(eval); err != nil {
			return models.DepartmentEvaluation{}, err
		}
	}

	s.deptEvals[deptEvalKey(eval.DepartmentID, eval.Date)] = eval

	return eval, nil
}

func (s *MemoryStorage) GetDepartmentEvaluation(departmentID int, date string) (models.DepartmentEvaluation, error) {
	s.emx.RLock()
	defer s.emx.RUnlock()

	eval, exists := s.deptEvals[deptEvalKey(departmentID, date)]
	if !exists {
		return models.DepartmentEvaluation{}, ErrNotFound
	}

	return eval, nil
}

func (s *MemoryStorage) GetBaseConnection() bool {
	if s.keeper == nil {
		return false
	}

	return s.keeper.Ping()
}
