package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	authz "github.com/wurt83ow/workreport/internal/authorization"
	"github.com/wurt83ow/workreport/internal/models"
	"github.com/wurt83ow/workreport/internal/storage"
	"github.com/wurt83ow/workreport/internal/timeline"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log interface {
	Info(string, ...zapcore.Field)
}

type Registry interface {
	Create(int, string, []int, []models.AdHocTaskEntry) (models.DailyReport, error)
	History(int, string, string) ([]models.DailyReport, error)
	LatestForDate(int, string) (models.DailyReport, error)
	UpdateComments(string, models.ReportAmendment) (models.DailyReport, error)
	Delete(string) error
}

type Approval interface {
	Evaluate(string, models.Rating, string, bool, *float64) (models.AdHocTaskEntry, error)
	QuickReject(string) (models.AdHocTaskEntry, error)
}

type Aggregator interface {
	Summarize(int, int, int) (models.MonthlyScoreSummary, error)
}

type Storage interface {
	GetBaseConnection() bool
	UpsertDepartmentEvaluation(models.DepartmentEvaluation) (models.DepartmentEvaluation, error)
}

type Events interface {
	Emit(models.Event)
}

type Authz interface {
	JWTAuthzMiddleware(authz.Log) func(http.Handler) http.Handler
	GetHash(string, string) []byte
	CreateJWTTokenForUser(string) string
	AuthCookie(string, string) *http.Cookie
}

type BaseController struct {
	registry   Registry
	approval   Approval
	aggregator Aggregator
	storage    Storage
	events     Events
	log        Log
	authz      Authz
	validate   *validator.Validate
}

func NewBaseController(registry Registry, approval Approval, aggregator Aggregator,
	storage Storage, events Events, log Log, authz Authz,
) *BaseController {
	instance := &BaseController{
		registry:   registry,
		approval:   approval,
		aggregator: aggregator,
		storage:    storage,
		events:     events,
		log:        log,
		authz:      authz,
		validate:   validator.New(),
	}

	return instance
}

func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/ping", h.GetPing)
	r.Post("/api/report", h.CreateReport)
	r.Get("/api/reports", h.GetReportHistory)
	r.Get("/api/report/latest", h.GetLatestReport)
	r.Put("/api/report/{reportID}/comments", h.UpdateReportComments)
	r.Get("/api/timeline/pending", h.GetPendingTimeline)
	r.Get("/api/timeline/suggest", h.SuggestTimelineSpan)
	r.Get("/api/timeline/pointer", h.PointerToTime)
	r.Get("/api/score/summary", h.GetMonthlySummary)

	// group where the middleware authorization is needed
	r.Group(func(r chi.Router) {
		r.Use(h.authz.JWTAuthzMiddleware(h.log))

		r.Delete("/api/report/{reportID}", h.DeleteReport)
		r.Post("/api/adhoc/{entryID}/evaluate", h.EvaluateAdHoc)
		r.Post("/api/adhoc/{entryID}/reject", h.QuickRejectAdHoc)
		r.Post("/api/evaluation/department", h.EvaluateDepartment)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps engine errors onto HTTP statuses: validation failures are
// 400 with the offending field, unknown ids are 404, the rest is 500.
func (h *BaseController) writeError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError

	switch {
	case errors.As(err, &ve):
		h.log.Info("validation error: ", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: ve.Reason, Field: ve.Field})
	case errors.Is(err, storage.ErrNotFound):
		h.log.Info("record not found: ", zap.Error(err))
		w.WriteHeader(http.StatusNotFound)
	default:
		h.log.Info("internal error: ", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *BaseController) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Info("error encoding response: ", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

type createReportRequest struct {
	UserID          int                     `json:"userId" validate:"required"`
	ReportDate      string                  `json:"reportDate" validate:"required,datetime=2006-01-02"`
	SelectedTaskIDs []int                   `json:"selectedTaskIds"`
	AdHocTasks      []models.AdHocTaskEntry `json:"adHocTasks"`
}

// @Summary Create daily report
// @Description Register a new daily report snapshot for a user and date
// @Tags Reports
// @Accept json
// @Produce json
// @Param report body createReportRequest true "Report Info"
// @Success 200 {object} models.DailyReport "Created report"
// @Failure 400 {object} errorResponse "Bad Request"
// @Failure 500 {string} string "Internal Server Error"
// @Router /api/report [post]
func (h *BaseController) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Info("cannot decode request JSON body: ", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.log.Info("invalid create report request: ", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	report, err := h.registry.Create(req.UserID, req.ReportDate, req.SelectedTaskIDs, req.AdHocTasks)
	if err != nil {
		h.writeError(w, err)

		return
	}

	h.writeJSON(w, report)
	h.log.Info("Report created successfully")
}

// @Summary Report history
// @Description Get all report snapshots of a user for a date range
// @Tags Reports
// @Produce json
// @Param userId query int true "User ID"
// @Param from query string false "Start date (2006-01-02)"
// @Param to query string false "End date (2006-01-02)"
// @Success 200 {array} models.DailyReport "Report snapshots"
// @Failure 400 {string} string "Bad Request"
// @Failure 500 {string} string "Internal Server Error"
// @Router /api/reports [get]
func (h *BaseController) GetReportHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		h.log.Info("invalid userId format")
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	reports, err := h.registry.History(userID, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.writeError(w, err)

		return
	}

	h.writeJSON(w, reports)
}

// @Summary Latest report
// @Description Get the current report snapshot of a user for a date
// @Tags Reports
// @Produce json
// @Param userId query int true "User ID"
// @Param date query string true "Date (2006-01-02)"
// @Success 200 {object} models.DailyReport "Latest report"
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Not Found"
// @Router /api/report/latest [get]
func (h *BaseController) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		h.log.Info("invalid userId format")
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	report, err := h.registry.LatestForDate(userID, r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, err)

		return
	}

	h.writeJSON(w, report)
}

// @Summary Update report comments
// @Description Merge comment updates and append new ad-hoc entries into a report
// @Tags Reports
// @Accept json
// @Produce json
// @Param reportID path string true "Report ID"
// @Param amendment body models.ReportAmendment true "Amendment"
// @Success 200 {object} models.DailyReport "Updated report"
// @Failure 400 {object} errorResponse "Bad Request"
// @Failure 404 {string} string "Not Found"
// @Router /api/report/{reportID}/comments [put]
func (h *BaseController) UpdateReportComments(w http.ResponseWriter, r *http.Request) {
	var amendment models.ReportAmendment
	if err := json.NewDecoder(r.Body).Decode(&amendment); err != nil {
		h.log.Info("cannot decode request JSON body: ", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	report, err := h.registry.UpdateComments(chi.URLParam(r, "reportID"), amendment)
	if err != nil {
		h.writeError(w, err)

		return
	}

	h.writeJSON(w, report)
	h.log.Info("Report comments updated successfully")
}

// @Summary Delete report
// @Description Hard-remove a report snapshot
// @Tags Reports
// @Param reportID path string true "Report ID"
// @Success 200 {string} string "Report deleted successfully"
// @Failure 404 {string} string "Not Found"
// @Router /api/report/{reportID} [delete]
func (h *BaseController) DeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(chi.URLParam(r, "reportID")); err != nil {
		h.writeError(w, err)

		return
	}

	w.WriteHeader(http.StatusOK)
	h.log.Info("Report deleted successfully")
}

// @Summary Pending timeline
// @Description Project the most recent draft report of a user onto the 24h timeline
// @Tags Timeline
// @Produce json
// @Param userId query int true "User ID"
// @Param date query string true "Date (2006-01-02)"
// @Success 200 {array} timeline.Entry "Projected entries"
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Not Found"
// @Router /api/timeline/pending [get]
func (h *BaseController) GetPendingTimeline(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		h.log.Info("invalid userId format")
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	date := r.URL.Query().Get("date")

	reports, err := h.registry.History(userID, date, date)
	if err != nil {
		h.writeError(w, err)

		return
	}

	// the outstanding registration is the most recent snapshot still in draft
	var (
		pending models.DailyReport
		found   bool
	)

	for _, rep := range reports {
		if rep.Status != models.StatusDraft {
			continue
		}

		if !found || rep.Sequence > pending.Sequence {
			pending = rep
			found = true
		}
	}

	if !found {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	h.writeJSON(w, timeline.PendingView(pending))
}

// @Summary Suggest span
// @Description Default start/end pair for a new entry inserted at a start time
// @Tags Timeline
// @Produce json
// @Param start query string true "Start time (HH:mm)"
// @Success 200 {object} timeline.SpanSuggestion "Suggested span"
// @Failure 400 {string} string "Bad Request"
// @Router /api/timeline/suggest [get]
func (h *BaseController) SuggestTimelineSpan(w http.ResponseWriter, r *http.Request) {
	suggestion, err := timeline.SuggestSpan(r.URL.Query().Get("start"))
	if err != nil {
		h.log.Info("invalid start time format: ", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	h.writeJSON(w, suggestion)
}

// @Summary Pointer to time
// @Description Convert a clicked timeline position back to a clock time
// @Tags Timeline
// @Produce json
// @Param percent query number true "Position in percent"
// @Success 200 {object} map[string]string "Clock time"
// @Failure 400 {string} string "Bad Request"
// @Router /api/timeline/pointer [get]
func (h *BaseController) PointerToTime(w http.ResponseWriter, r *http.Request) {
	percent, err := strconv.ParseFloat(r.URL.Query().Get("percent"), 64)
	if err != nil {
		h.log.Info("invalid percent format")
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	h.writeJSON(w, map[string]string{"time": timeline.FromPointer(percent)})
}

type evaluateRequest struct {
	Rating        models.Rating `json:"rating"`
	Comment       string        `json:"comment"`
	Approve       bool          `json:"approve"`
	ApprovedScore *float64      `json:"approvedScore,omitempty"`
}

// @Summary Evaluate ad-hoc entry
// @Description Approve or reject an ad-hoc entry as a director
// @Tags Evaluation
// @Accept json
// @Produce json
// @Param entryID path string true "Ad-hoc entry ID"
// @Param evaluation body evaluateRequest true "Evaluation"
// @Success 200 {object} models.AdHocTaskEntry "Evaluated entry"
// @Failure 400 {object} errorResponse "Bad Request"
// @Failure 404 {string} string "Not Found"
// @Router /api/adhoc/{entryID}/evaluate [post]
func (h *BaseController) EvaluateAdHoc(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Info("cannot decode request JSON body: ", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	entry, err := h.approval.Evaluate(chi.URLParam(r, "entryID"), req.Rating, req.Comment, req.Approve, req.ApprovedScore)
	if err != nil {
		h.writeError(w, err)

		return
	}

	h.writeJSON(w, entry)
	h.log.Info("Ad-hoc entry evaluated successfully")
}

// @Summary Quick-reject ad-hoc entry
// @Description Reject an ad-hoc entry with the default rating and comment
// @Tags Evaluation
// @Produce json
// @Param entryID path string true "Ad-hoc entry ID"
// @Success 200 {object} models.AdHocTaskEntry "Rejected entry"
// @Failure 400 {object} errorResponse "Bad Request"
// @Failure 404 {string} string "Not Found"
// @Router /api/adhoc/{entryID}/reject [post]
func (h *BaseController) QuickRejectAdHoc(w http.ResponseWriter, r *http.Request) {
	entry, err := h.approval.QuickReject(chi.URLParam(r, "entryID"))
	if err != nil {
		h.writeError(w, err)

		return
	}

	h.writeJSON(w, entry)
	h.log.Info("Ad-hoc entry rejected successfully")
}

type departmentEvaluationRequest struct {
	DepartmentID int           `json:"departmentId" validate:"required"`
	Date         string        `json:"date" validate:"required,datetime=2006-01-02"`
	Rating       models.Rating `json:"rating" validate:"required"`
	Comment      string        `json:"comment"`
}

// @Summary Evaluate department
// @Description Upsert a rating/comment for a (department, date) pair
// @Tags Evaluation
// @Accept json
// @Produce json
// @Param evaluation body departmentEvaluationRequest true "Department evaluation"
// @Success 200 {object} models.DepartmentEvaluation "Stored evaluation"
// @Failure 400 {object} errorResponse "Bad Request"
// @Failure 500 {string} string "Internal Server Error"
// @Router /api/evaluation/department [post]
func (h *BaseController) EvaluateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Info("cannot decode request JSON body: ", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.log.Info("invalid department evaluation request: ", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	if !req.Rating.Valid() {
		h.writeError(w, models.NewValidationError("rating", "unknown rating value"))

		return
	}

	eval, err := h.storage.UpsertDepartmentEvaluation(models.DepartmentEvaluation{
		DepartmentID: req.DepartmentID,
		Date:         req.Date,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		h.writeError(w, err)

		return
	}

	if h.events != nil {
		h.events.Emit(models.Event{
			Type:       models.EventDepartmentEvaluated,
			SubjectIDs: []string{strconv.Itoa(eval.DepartmentID)},
			Payload:    eval,
		})
	}

	h.writeJSON(w, eval)
	h.log.Info("Department evaluated successfully")
}

// @Summary Monthly score summary
// @Description Merge external task scores with approved ad-hoc scores for a month
// @Tags Scores
// @Produce json
// @Param userId query int true "User ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} models.MonthlyScoreSummary "Monthly summary"
// @Failure 400 {string} string "Bad Request"
// @Failure 500 {string} string "Internal Server Error"
// @Router /api/score/summary [get]
func (h *BaseController) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		h.log.Info("invalid userId format")
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.log.Info("invalid year format")
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		h.log.Info("invalid month format")
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	summary, err := h.aggregator.Summarize(userID, year, month)
	if err != nil {
		h.writeError(w, err)

		return
	}

	h.writeJSON(w, summary)
}

func (h *BaseController) GetPing(w http.ResponseWriter, r *http.Request) {
	if !h.storage.GetBaseConnection() {
		h.log.Info("got status internal server error")
		w.WriteHeader(http.StatusInternalServerError) // 500

		return
	}

	w.WriteHeader(http.StatusOK) // 200
	h.log.Info("sending HTTP 200 response")
}
