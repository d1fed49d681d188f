/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Actor header and request validation
- Error to status mapping
- Employee, attendance, time-off and hold flows end to end
- Document download, attendance report, imports and admin sweeps
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/division-ops/discipline"
	"github.com/warp/division-ops/document"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/importer"
	"github.com/warp/division-ops/notify"
	"github.com/warp/division-ops/operations"
	"github.com/warp/division-ops/rules"
	"github.com/warp/division-ops/store/sqlite"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// today is a Monday.
var today = hr.Date(2024, time.June, 3)

const (
	manager int64 = 77
	driver  int64 = 1042
)

type server struct {
	t      *testing.T
	router http.Handler
	queue  *notify.MemoryQueue
}

func newServer(t *testing.T) *server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := hr.FixedClock(today)
	engine := discipline.New(rules.Default())
	builder := operations.NewDocumentBuilder(store, engine, "Warp Transit")
	gen := document.NewPDFGenerator()
	queue := notify.NewMemoryQueue()

	pipeline := operations.NewPipeline(log,
		&operations.DocumentReaction{Builder: builder, Generator: gen, Store: store, Clock: clock},
		&operations.NotificationReaction{Employees: store, Publisher: queue},
	)
	pipeline.Backoff = 0
	svc := operations.NewService(store, engine,
		operations.WithClock(clock),
		operations.WithLogger(log),
		operations.WithPipeline(pipeline),
	)

	h := NewHandler(svc, builder, gen, log)
	return &server{t: t, router: NewRouter(h, []string{"*"}), queue: queue}
}

// do sends a JSON request as the manager and returns the recorder.
func (s *server) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, strconv.FormatInt(manager, 10))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *server) hireDriver() {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID:        driver,
		FirstName: "Dana",
		LastName:  "Reyes",
		Position:  "Operator",
		HireDate:  "2019-04-01",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *server) assignAttendance(daysAgo int) operations.AttendanceResult {
	s.t.Helper()
	rec := s.do(http.MethodPost, fmt.Sprintf("/api/employees/%d/attendance", driver), AttendanceRequest{
		IncidentDate: today.AddDate(0, 0, -daysAgo).Format(hr.DateLayout),
		Reason:       hr.ReasonUnexcused,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[operations.AttendanceResult](s.t, rec)
}

func fieldNames(resp ErrorResponse) []string {
	var out []string
	for _, f := range resp.Fields {
		out = append(out, f.Field)
	}
	return out
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees_CreateAndGet(t *testing.T) {
	s := newServer(t)
	s.hireDriver()

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/employees/%d", driver), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	emp := decode[hr.Employee](t, rec)
	assert.Equal(t, "Dana", emp.FirstName)
	assert.Equal(t, hr.DefaultPaidSick, emp.PaidSick)
	assert.True(t, emp.IsActive)

	rec = s.do(http.MethodGet, "/api/employees?active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]hr.Employee](t, rec), 1)
}

func TestEmployees_UnknownIsNotFound(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/api/employees/404", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployees_DuplicateIsRejected(t *testing.T) {
	s := newServer(t)
	s.hireDriver()

	rec := s.do(http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID: driver, FirstName: "Other", LastName: "Person", HireDate: "2020-01-01",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmployees_UpdateAndTerminate(t *testing.T) {
	s := newServer(t)
	s.hireDriver()
	fh := 2

	rec := s.do(http.MethodPatch, fmt.Sprintf("/api/employees/%d", driver), UpdateEmployeeRequest{FloatingHoliday: &fh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[hr.Employee](t, rec).FloatingHoliday)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/employees/%d/terminate", driver), TerminateRequest{
		Type:     hr.TerminationVoluntary,
		Comments: "Moved out of state",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/employees/%d", driver), nil)
	assert.False(t, decode[hr.Employee](t, rec).IsActive)
}

// =============================================================================
// REQUEST HANDLING
// =============================================================================

func TestActor_RequiredForChanges(t *testing.T) {
	s := newServer(t)
	body := bytes.NewBufferString(`{"id":5,"first_name":"A","last_name":"B","hire_date":"2020-01-01"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/employees", body)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, ActorHeader)
}

func TestActor_MalformedHeader(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.Header.Set(ActorHeader, "abc")
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidation_StructTagsReportFields(t *testing.T) {
	s := newServer(t)
	s.hireDriver()

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/employees/%d/attendance", driver), AttendanceRequest{
		IncidentDate: "06/01/2024",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []string{"incident_date", "reason"}, fieldNames(decode[ErrorResponse](t, rec)))
}

func TestValidation_ServiceRulesReportFields(t *testing.T) {
	s := newServer(t)
	s.hireDriver()

	// Well-formed, but too soon.
	rec := s.do(http.MethodPost, fmt.Sprintf("/api/employees/%d/time-off", driver), TimeOffRequest{
		Dates: []string{today.AddDate(0, 0, 1).Format(hr.DateLayout)},
		Type:  "1",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"dates"}, fieldNames(decode[ErrorResponse](t, rec)))
}

func TestValidation_MalformedBody(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/employees", bytes.NewBufferString("{"))
	req.Header.Set(ActorHeader, "77")
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// DISCIPLINE FLOWS
// =============================================================================

func TestAttendance_SeventhPointReturnsWrittenWarning(t *testing.T) {
	s := newServer(t)
	s.hireDriver()

	// GIVEN: six points
	for i := 0; i < 6; i++ {
		res := s.assignAttendance(20 - i)
		assert.Equal(t, discipline.LevelNone, res.Decision.Level)
	}

	// WHEN: the seventh is assigned
	res := s.assignAttendance(1)

	// THEN: the response carries the decision and the counseling exists
	assert.Equal(t, discipline.LevelWrittenWarning, res.Decision.Level)
	assert.Equal(t, "7", res.Decision.Total.String())

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/employees/%d/counseling", driver), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]hr.Counseling](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, hr.ActionFirstWrittenWarning, list[0].ActionType)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/employees/%d/attendance/history", driver), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", decode[operations.AttendanceReport](t, rec).Total.String())
}

func TestAttendance_EditDeleteSign(t *testing.T) {
	s := newServer(t)
	s.hireDriver()
	res := s.assignAttendance(1)
	path := fmt.Sprintf("/api/attendance/%d", res.Record.ID)

	rec := s.do(http.MethodPut, path, AttendanceRequest{
		IncidentDate: today.AddDate(0, 0, -2).Format(hr.DateLayout),
		Reason:       hr.ReasonNoCallNoShow,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, hr.ReasonNoCallNoShow, decode[operations.AttendanceResult](t, rec).Record.Reason)

	rec = s.do(http.MethodPost, path+"/sign", SignRequest{Comments: "Disputed"})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodDelete, "/api/attendance/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCounseling_NextStep(t *testing.T) {
	s := newServer(t)
	s.hireDriver()

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/employees/%d/counseling/next", driver), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]string](t, rec)
	assert.Equal(t, string(hr.ActionVerbalCounseling), got["action_type"])
	assert.Equal(t, "Verbal Counseling", got["name"])
}

func TestHold_Lifecycle(t *testing.T) {
	s := newServer(t)
	s.hireDriver()
	path := fmt.Sprintf("/api/employees/%d/hold", driver)

	rec := s.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, path, HoldRequest{Reason: hr.HoldOther, OtherReason: "Vehicle recall"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, path, HoldRequest{Reason: hr.HoldFMLA})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "one hold per employee")

	rec = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// =============================================================================
// TIME OFF
// =============================================================================

func TestTimeOff_RequestAndApprove(t *testing.T) {
	s := newServer(t)
	s.hireDriver()

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/employees/%d/time-off", driver), TimeOffRequest{
		Dates: []string{"2024-06-10", "2024-06-11"},
		Type:  "1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[hr.TimeOffRequest](t, rec)
	assert.Equal(t, hr.TimeOffPending, created.Status)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/time-off/%d/status", created.ID), TimeOffStatusRequest{Status: hr.TimeOffApproved})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, hr.TimeOffApproved, decode[hr.TimeOffRequest](t, rec).Status)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/time-off/%d", created.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "only pending requests can be removed")
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func TestDocuments_Download(t *testing.T) {
	s := newServer(t)
	s.hireDriver()
	res := s.assignAttendance(1)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/documents/attendance/%d", res.Record.ID), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/documents/attendance/%d/uploaded", res.Record.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDocuments_UnknownKind(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/api/documents/memo/1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttendanceReport_RendersPDF(t *testing.T) {
	s := newServer(t)
	s.hireDriver()
	s.assignAttendance(3)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/employees/%d/attendance/report?as_of=2024-06-03", driver), nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance-1042-2024-06-03.pdf")
}

// =============================================================================
// IMPORTS AND ADMIN
// =============================================================================

func TestImportDrivers_Multipart(t *testing.T) {
	s := newServer(t)

	wb := excelize.NewFile()
	defer wb.Close()
	require.NoError(t, wb.SetSheetName("Sheet1", importer.Sheet))
	header := make([]any, len(importer.DriverHeaders))
	for i, h := range importer.DriverHeaders {
		header[i] = h
	}
	require.NoError(t, wb.SetSheetRow(importer.Sheet, "A1", &header))
	row := []any{"REYES", "DANA", driver, "Operator", 20190401, 20190301, 20190315, "Warp", "false", "", "", ""}
	require.NoError(t, wb.SetSheetRow(importer.Sheet, "A2", &row))
	content, err := wb.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "drivers.xlsx")
	require.NoError(t, err)
	_, err = part.Write(content.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports/drivers", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(ActorHeader, "77")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[operations.ImportReport](t, rec)
	assert.Equal(t, 1, report.Imported)
	assert.Empty(t, report.Rejected)
}

func TestImport_MissingFile(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/api/imports/attendance", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_RemindersAndResets(t *testing.T) {
	s := newServer(t)
	s.hireDriver()

	rec := s.do(http.MethodPost, "/api/admin/reminders?as_of=2024-06-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Zero(t, decode[operations.ReminderReport](t, rec).Notifications)

	rec = s.do(http.MethodPost, "/api/admin/reset/sick?as_of=2024-10-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["reset"])

	rec = s.do(http.MethodPost, "/api/admin/reset/floating?as_of=bad", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
