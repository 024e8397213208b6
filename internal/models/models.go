package models

import (
	"fmt"
	"time"
)

type Key string

// Priority ranks entries inside a report.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Rating is a director's verdict on a piece of work.
type Rating string

const (
	RatingExcellent Rating = "EXCELLENT"
	RatingGood      Rating = "GOOD"
	RatingAverage   Rating = "AVERAGE"
	RatingPoor      Rating = "POOR"
)

// Valid reports whether r is one of the four known rating literals.
func (r Rating) Valid() bool {
	switch r {
	case RatingExcellent, RatingGood, RatingAverage, RatingPoor:
		return true
	}

	return false
}

// ReportStatus is derived from report content and persisted by the registry.
type ReportStatus string

const (
	StatusDraft     ReportStatus = "DRAFT"
	StatusSubmitted ReportStatus = "SUBMITTED"
)

// DailyReport представляет один снимок планов/отчета пользователя за
// календарную дату. Несколько снимков за одну дату образуют цепочку версий;
// актуальной считается версия с максимальным Sequence.
type DailyReport struct {
	ReportID      string              `db:"report_id" json:"reportId"`
	UserID        int                 `db:"user_id" json:"userId"`
	ReportDate    string              `db:"report_date" json:"reportDate"` // 2006-01-02
	Sequence      int                 `db:"sequence" json:"sequence"`
	CreatedAt     time.Time           `db:"created_at" json:"createdAt"`
	Status        ReportStatus        `db:"status" json:"status"`
	SelectedTasks []SelectedTaskEntry `json:"selectedTasks"`
	AdHocTasks    []AdHocTaskEntry    `json:"adHocTasks"`
}

// SelectedTaskEntry references a catalog task; its metadata snapshot is taken
// at report creation and never refreshed afterwards.
type SelectedTaskEntry struct {
	TaskID             int         `db:"task_id" json:"taskId"`
	Title              string      `db:"title" json:"title"`
	Description        string      `db:"description" json:"description"`
	Priority           Priority    `db:"priority" json:"priority"`
	Comment            string      `db:"comment" json:"comment"`
	StartTime          string      `db:"start_time" json:"startTime,omitempty"` // HH:mm
	EndTime            string      `db:"end_time" json:"endTime,omitempty"`     // HH:mm
	DirectorEvaluation *Evaluation `json:"directorEvaluation,omitempty"`
}

// AdHocTaskEntry — внеплановая работа, принадлежит только своему отчету.
type AdHocTaskEntry struct {
	ID              string   `db:"adhoc_id" json:"id"`
	Content         string   `db:"content" json:"content"`
	Priority        Priority `db:"priority" json:"priority"`
	Comment         string   `db:"comment" json:"comment"`
	SelfScore       *float64 `db:"self_score" json:"selfScore,omitempty"` // hours, >= 0
	StartTime       string   `db:"start_time" json:"startTime,omitempty"`
	EndTime         string   `db:"end_time" json:"endTime,omitempty"`
	Approved        bool     `db:"approved" json:"approved"`
	ApprovedScore   *float64 `db:"approved_score" json:"approvedScore,omitempty"` // hours, > 0 iff approved
	DirectorRating  *Rating  `db:"director_rating" json:"directorRating,omitempty"`
	DirectorComment string   `db:"director_comment" json:"directorComment,omitempty"`
}

// Evaluation attaches to a report task, an ad-hoc entry or a
// (department, date) pair; re-evaluating the same key overwrites the
// previous rating and comment.
type Evaluation struct {
	Rating  Rating `db:"rating" json:"rating"`
	Comment string `db:"comment" json:"comment"`
}

// DepartmentEvaluation — upsert-запись оценки департамента за дату.
type DepartmentEvaluation struct {
	DepartmentID int       `db:"department_id" json:"departmentId"`
	Date         string    `db:"eval_date" json:"date"` // 2006-01-02
	Rating       Rating    `db:"rating" json:"rating"`
	Comment      string    `db:"comment" json:"comment"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// ReportAmendment is a comment patch plus newly appended ad-hoc entries.
// The shape deliberately has no way to drop existing report entries.
type ReportAmendment struct {
	TaskComments  map[int]string               `json:"taskComments"`
	AdHocComments map[string]AdHocCommentPatch `json:"adHocComments"`
	NewAdHocTasks []AdHocTaskEntry             `json:"newAdHocTasks"`
}

// AdHocCommentPatch updates only comment/selfScore of an existing entry.
type AdHocCommentPatch struct {
	Comment   *string  `json:"comment,omitempty"`
	SelfScore *float64 `json:"selfScore,omitempty"`
}

// TaskScoreRecord comes from the external scoring service and is passed
// through untouched.
type TaskScoreRecord struct {
	TaskID            int       `json:"taskId"`
	TaskTitle         string    `json:"taskTitle"`
	ExpectedTimeHours float64   `json:"expectedTimeHours"`
	ActualTimeHours   float64   `json:"actualTimeHours"`
	Score             float64   `json:"score"`
	CalculatedAt      time.Time `json:"calculatedAt"`
}

// AdHocScoreRecord — утвержденная внеплановая запись в месячной сводке.
type AdHocScoreRecord struct {
	EntryID    string  `json:"entryId"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	ReportDate string  `json:"reportDate"`
}

// MonthlyScoreSummary is computed on demand and never stored.
// AverageScore is nil when the month has no scored tasks at all: zero is a
// valid score and must stay distinguishable from "no data".
type MonthlyScoreSummary struct {
	Scores             []TaskScoreRecord  `json:"scores"`
	AdHocTaskScores    []AdHocScoreRecord `json:"adHocTaskScores"`
	RejectedAdHocTasks []AdHocTaskEntry   `json:"rejectedAdHocTasks"`
	AverageScore       *float64           `json:"averageScore,omitempty"`
}

// Task представляет снимок записи внешнего каталога задач
type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

// ExtUserProfile представляет структуру данных справочника пользователей
type ExtUserProfile struct {
	UserID        int    `json:"userId"`
	FullName      string `json:"fullName"`
	UserName      string `json:"userName"`
	DepartmentIDs []int  `json:"departmentIds"`
}

// ExtScoreData представляет ответ внешнего сервиса расчета баллов
type ExtScoreData struct {
	Scores       []TaskScoreRecord `json:"scores"`
	AverageScore *float64          `json:"averageScore,omitempty"`
}

// Event types emitted on engine transitions.
const (
	EventReportCreated       = "report.created"
	EventReportSubmitted     = "report.submitted"
	EventAdHocEvaluated      = "adhoc.evaluated"
	EventDepartmentEvaluated = "department.evaluated"
)

// Event is a structured transition notification; delivery belongs to the
// external dispatcher.
type Event struct {
	Type       string      `json:"type"`
	SubjectIDs []string    `json:"subjectIds"`
	Payload    interface{} `json:"payload"`
}

// ValidationError names the offending field; always recoverable by the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
