package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	authz "github.com/wurt83ow/workreport/internal/authorization"
	"github.com/wurt83ow/workreport/internal/models"
	"github.com/wurt83ow/workreport/internal/storage"
	"go.uber.org/zap/zapcore"
)

// MockRegistry is a mock implementation of the Registry interface
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Create(userID int, date string, taskIDs []int, adHoc []models.AdHocTaskEntry) (models.DailyReport, error) {
	args := m.Called(userID, date, taskIDs, adHoc)
	return args.Get(0).(models.DailyReport), args.Error(1)
}

func (m *MockRegistry) History(userID int, from, to string) ([]models.DailyReport, error) {
	args := m.Called(userID, from, to)
	return args.Get(0).([]models.DailyReport), args.Error(1)
}

func (m *MockRegistry) LatestForDate(userID int, date string) (models.DailyReport, error) {
	args := m.Called(userID, date)
	return args.Get(0).(models.DailyReport), args.Error(1)
}

func (m *MockRegistry) UpdateComments(reportID string, amendment models.ReportAmendment) (models.DailyReport, error) {
	args := m.Called(reportID, amendment)
	return args.Get(0).(models.DailyReport), args.Error(1)
}

func (m *MockRegistry) Delete(reportID string) error {
	args := m.Called(reportID)
	return args.Error(0)
}

// MockApproval is a mock implementation of the Approval interface
type MockApproval struct {
	mock.Mock
}

func (m *MockApproval) Evaluate(entryID string, rating models.Rating, comment string, approve bool, score *float64) (models.AdHocTaskEntry, error) {
	args := m.Called(entryID, rating, comment, approve, score)
	return args.Get(0).(models.AdHocTaskEntry), args.Error(1)
}

func (m *MockApproval) QuickReject(entryID string) (models.AdHocTaskEntry, error) {
	args := m.Called(entryID)
	return args.Get(0).(models.AdHocTaskEntry), args.Error(1)
}

// MockAggregator is a mock implementation of the Aggregator interface
type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Summarize(userID, year, month int) (models.MonthlyScoreSummary, error) {
	args := m.Called(userID, year, month)
	return args.Get(0).(models.MonthlyScoreSummary), args.Error(1)
}

// MockStorage is a mock implementation of the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetBaseConnection() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockStorage) UpsertDepartmentEvaluation(eval models.DepartmentEvaluation) (models.DepartmentEvaluation, error) {
	args := m.Called(eval)
	return args.Get(0).(models.DepartmentEvaluation), args.Error(1)
}

// MockAuthz is a mock implementation of the Authz interface
type MockAuthz struct {
	mock.Mock
}

func (m *MockAuthz) JWTAuthzMiddleware(log authz.Log) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		})
	}
}

func (m *MockAuthz) GetHash(data string, salt string) []byte {
	args := m.Called(data, salt)
	return args.Get(0).([]byte)
}

func (m *MockAuthz) CreateJWTTokenForUser(data string) string {
	args := m.Called(data)
	return args.String(0)
}

func (m *MockAuthz) AuthCookie(name string, value string) *http.Cookie {
	return &http.Cookie{Name: name, Value: value}
}

// MockLog is a mock implementation of the Log interface
type MockLog struct {
	mock.Mock
}

func (m *MockLog) Info(msg string, fields ...zapcore.Field) {
	m.Called(msg, fields)
}

func newTestController() (*BaseController, *MockRegistry, *MockApproval, *MockAggregator, *MockStorage) {
	registry := new(MockRegistry)
	approval := new(MockApproval)
	aggregator := new(MockAggregator)
	st := new(MockStorage)
	log := new(MockLog)
	log.On("Info", mock.Anything, mock.Anything).Return()

	controller := NewBaseController(registry, approval, aggregator, st, nil, log, new(MockAuthz))

	return controller, registry, approval, aggregator, st
}

func TestBaseController_CreateReport(t *testing.T) {
	controller, registry, _, _, _ := newTestController()
	router := controller.Route()

	report := models.DailyReport{ReportID: "r1", UserID: 7, ReportDate: "2024-05-01", Status: models.StatusDraft}
	registry.On("Create", 7, "2024-05-01", []int{101}, mock.Anything).Return(report, nil)

	t.Run("Successful Creation", func(t *testing.T) {
		payload := []byte(`{"userId":7,"reportDate":"2024-05-01","selectedTaskIds":[101]}`)

		req, _ := http.NewRequest("POST", "/api/report", bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.DailyReport
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "r1", got.ReportID)
		registry.AssertCalled(t, "Create", 7, "2024-05-01", []int{101}, mock.Anything)
	})

	t.Run("Bad Request", func(t *testing.T) {
		payload := []byte(`invalid json`)

		req, _ := http.NewRequest("POST", "/api/report", bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Bad Date Format", func(t *testing.T) {
		payload := []byte(`{"userId":7,"reportDate":"05/01/2024","selectedTaskIds":[101]}`)

		req, _ := http.NewRequest("POST", "/api/report", bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestBaseController_CreateReport_Validation(t *testing.T) {
	controller, registry, _, _, _ := newTestController()
	router := controller.Route()

	registry.On("Create", 7, "2024-05-01", mock.Anything, mock.Anything).
		Return(models.DailyReport{}, models.NewValidationError("selectedTaskIds", "at least one task or ad-hoc entry is required"))

	payload := []byte(`{"userId":7,"reportDate":"2024-05-01"}`)

	req, _ := http.NewRequest("POST", "/api/report", bytes.NewBuffer(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "selectedTaskIds", resp.Field)
}

func TestBaseController_UpdateComments_NotFound(t *testing.T) {
	controller, registry, _, _, _ := newTestController()
	router := controller.Route()

	registry.On("UpdateComments", "missing", mock.Anything).
		Return(models.DailyReport{}, storage.ErrNotFound)

	payload := []byte(`{"taskComments":{"101":"done"}}`)

	req, _ := http.NewRequest("PUT", "/api/report/missing/comments", bytes.NewBuffer(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBaseController_EvaluateAdHoc(t *testing.T) {
	controller, _, approval, _, _ := newTestController()
	router := controller.Route()

	score := 2.5
	entry := models.AdHocTaskEntry{ID: "55", Content: "Fix printer", Approved: true, ApprovedScore: &score}
	approval.On("Evaluate", "55", models.Rating(""), "", true, mock.Anything).Return(entry, nil)

	payload := []byte(`{"approve":true,"approvedScore":2.5}`)

	req, _ := http.NewRequest("POST", "/api/adhoc/55/evaluate", bytes.NewBuffer(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.AdHocTaskEntry
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, got.Approved)
}

func TestBaseController_EvaluateAdHoc_MissingScore(t *testing.T) {
	controller, _, approval, _, _ := newTestController()
	router := controller.Route()

	approval.On("Evaluate", "55", models.Rating(""), "", true, (*float64)(nil)).
		Return(models.AdHocTaskEntry{}, models.NewValidationError("approvedScore", "must be a positive number of hours when approving"))

	payload := []byte(`{"approve":true}`)

	req, _ := http.NewRequest("POST", "/api/adhoc/55/evaluate", bytes.NewBuffer(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "approvedScore", resp.Field)
}

func TestBaseController_QuickReject(t *testing.T) {
	controller, _, approval, _, _ := newTestController()
	router := controller.Route()

	rating := models.RatingAverage
	entry := models.AdHocTaskEntry{ID: "55", Content: "Fix printer", DirectorRating: &rating, DirectorComment: "Rejected"}
	approval.On("QuickReject", "55").Return(entry, nil)

	req, _ := http.NewRequest("POST", "/api/adhoc/55/reject", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	approval.AssertCalled(t, "QuickReject", "55")
}

func TestBaseController_GetMonthlySummary(t *testing.T) {
	controller, _, _, aggregator, _ := newTestController()
	router := controller.Route()

	aggregator.On("Summarize", 7, 2024, 5).Return(models.MonthlyScoreSummary{
		AdHocTaskScores: []models.AdHocScoreRecord{{EntryID: "a1", Score: 3.0}},
	}, nil)

	req, _ := http.NewRequest("GET", "/api/score/summary?userId=7&year=2024&month=5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.MonthlyScoreSummary
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.AdHocTaskScores, 1)
	assert.Nil(t, got.AverageScore)

	t.Run("Bad Month", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/score/summary?userId=7&year=2024&month=13", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestBaseController_EvaluateDepartment(t *testing.T) {
	controller, _, _, _, st := newTestController()
	router := controller.Route()

	st.On("UpsertDepartmentEvaluation", mock.Anything).Return(models.DepartmentEvaluation{
		DepartmentID: 3,
		Date:         "2024-05-01",
		Rating:       models.RatingGood,
	}, nil)

	payload := []byte(`{"departmentId":3,"date":"2024-05-01","rating":"GOOD","comment":"solid week"}`)

	req, _ := http.NewRequest("POST", "/api/evaluation/department", bytes.NewBuffer(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	t.Run("Unknown Rating", func(t *testing.T) {
		payload := []byte(`{"departmentId":3,"date":"2024-05-01","rating":"SUPERB"}`)

		req, _ := http.NewRequest("POST", "/api/evaluation/department", bytes.NewBuffer(payload))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestBaseController_GetPendingTimeline(t *testing.T) {
	controller, registry, _, _, _ := newTestController()
	router := controller.Route()

	reports := []models.DailyReport{
		{
			ReportID: "r1", UserID: 7, ReportDate: "2024-05-01", Sequence: 1,
			Status: models.StatusSubmitted,
		},
		{
			ReportID: "r2", UserID: 7, ReportDate: "2024-05-01", Sequence: 2,
			Status: models.StatusDraft,
			SelectedTasks: []models.SelectedTaskEntry{
				{TaskID: 101, Title: "Deploy", StartTime: "09:00", EndTime: "10:00"},
			},
		},
	}
	registry.On("History", 7, "2024-05-01", "2024-05-01").Return(reports, nil)

	req, _ := http.NewRequest("GET", "/api/timeline/pending?userId=7&date=2024-05-01", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"refId":"101"`)
}

func TestBaseController_GetPendingTimeline_NoneDraft(t *testing.T) {
	controller, registry, _, _, _ := newTestController()
	router := controller.Route()

	registry.On("History", 7, "2024-05-01", "2024-05-01").Return([]models.DailyReport{
		{ReportID: "r1", Status: models.StatusSubmitted, Sequence: 1},
	}, nil)

	req, _ := http.NewRequest("GET", "/api/timeline/pending?userId=7&date=2024-05-01", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBaseController_GetPing(t *testing.T) {
	controller, _, _, _, st := newTestController()
	router := controller.Route()

	st.On("GetBaseConnection").Return(true).Once()

	req, _ := http.NewRequest("GET", "/ping", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	st.On("GetBaseConnection").Return(false)

	req, _ = http.NewRequest("GET", "/ping", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
