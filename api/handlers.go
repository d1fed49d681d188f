/*
handlers.go - HTTP API handlers for the division's HR operations

PURPOSE:
  Exposes operations.Service via REST. Handles HTTP request/response,
  JSON serialization, and delegates every decision to the service.

ENDPOINTS:
  Employees:
    GET    /api/employees                         List employees (?active, ?staff)
    POST   /api/employees                         Hire
    GET    /api/employees/{id}                    Employee details
    PATCH  /api/employees/{id}                    Update fields
    PUT    /api/employees/{id}/notifications      Notification opt-ins
    POST   /api/employees/{id}/terminate          End employment

  Per-employee records:
    GET|POST /api/employees/{id}/attendance       List / assign
    GET    /api/employees/{id}/attendance/history Rolling totals (?as_of)
    GET    /api/employees/{id}/attendance/report  History report as PDF
    GET|POST /api/employees/{id}/safety-points    List / assign
    GET    /api/employees/{id}/safety-points/history
    GET|POST /api/employees/{id}/counseling       List / assign
    GET    /api/employees/{id}/counseling/next    Next ladder step
    GET|POST|PUT|DELETE /api/employees/{id}/hold  The single hold
    GET|POST /api/employees/{id}/settlements
    GET|POST /api/employees/{id}/time-off

  Records by ID:
    PUT|DELETE /api/attendance/{id}, POST /api/attendance/{id}/sign
    PUT|DELETE /api/safety-points/{id}, POST .../sign
    PUT|DELETE /api/counseling/{id}, POST .../sign
    PUT|DELETE /api/settlements/{id}, POST .../uploaded
    GET|DELETE /api/time-off/{id}, PUT /api/time-off/{id}/status

  Documents:
    GET    /api/documents/{kind}/{id}             Download
    POST   /api/documents/{kind}/{id}/regenerate  Rebuild from current data
    POST   /api/documents/{kind}/{id}/uploaded    Signed copy scanned in

  Imports (multipart, field "file"):
    POST   /api/imports/attendance | safety-points | drivers

  Admin:
    POST   /api/admin/reminders                   Reminder sweep (?as_of)
    POST   /api/admin/reset/sick                  Sick-day reset
    POST   /api/admin/reset/floating              Floating-holiday reset

ACTOR:
  Mutations are attributed to the employee number in the X-Employee-ID
  header. Authentication is out of scope; the header is trusted.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors (field list in "fields"), malformed input
  - 404: Resource not found
  - 409: Conflict
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/warp/division-ops/document"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/operations"
)

// ActorHeader carries the employee number of the person making a change.
const ActorHeader = "X-Employee-ID"

// maxUpload bounds import workbooks.
const maxUpload = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service   *operations.Service
	Builder   *operations.DocumentBuilder
	Generator document.Generator // renders on-demand reports
	Log       *slog.Logger

	validate *validator.Validate
}

// NewHandler creates a handler. Validation errors name fields by their
// json tag so they line up with the service's own field names.
func NewHandler(svc *operations.Service, builder *operations.DocumentBuilder, gen document.Generator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		Service:   svc,
		Builder:   builder,
		Generator: gen,
		Log:       log.With("component", "api"),
		validate:  v,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns employees, optionally only active or staff ones.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := operations.EmployeeFilter{
		ActiveOnly: q.Get("active") == "true",
		StaffOnly:  q.Get("staff") == "true",
	}
	employees, err := h.Service.ListEmployees(r.Context(), filter)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(employees))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	emp, err := h.Service.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// CreateEmployee hires an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateEmployeeRequest
	if !h.bind(w, r, &req) {
		return
	}
	emp, err := h.Service.CreateEmployee(r.Context(), actor, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

// UpdateEmployee changes the fields present in the body.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateEmployeeRequest
	if !h.bind(w, r, &req) {
		return
	}
	emp, err := h.Service.UpdateEmployee(r.Context(), id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// SetNotifications merges notification opt-ins and opt-outs.
func (h *Handler) SetNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var prefs hr.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Service.SetNotificationPreferences(r.Context(), id, prefs); err != nil {
		h.fail(w, err)
		return
	}
	emp, err := h.Service.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp.Notifications)
}

// TerminateEmployee ends an employment today.
func (h *Handler) TerminateEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req TerminateRequest
	if !h.bind(w, r, &req) {
		return
	}
	in := operations.TerminationInput{Type: req.Type, Comments: req.Comments}
	if err := h.Service.TerminateEmployee(r.Context(), actor, id, in); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ListAttendance returns every attendance point of an employee.
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	records, err := h.Service.ListAttendance(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

// AssignAttendance records an incident and returns the decision it produced.
func (h *Handler) AssignAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req AttendanceRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.Service.AssignAttendance(r.Context(), actor, id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// EditAttendance replaces an attendance point and re-runs the decision.
func (h *Handler) EditAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req AttendanceRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.Service.EditAttendance(r.Context(), actor, id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteAttendance retracts an attendance point.
func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.Service.DeleteAttendance)
}

// SignAttendance records the employee's signature.
func (h *Handler) SignAttendance(w http.ResponseWriter, r *http.Request) {
	h.sign(w, r, h.Service.SignAttendance)
}

// AttendanceHistory returns the rolling totals as of ?as_of (default today).
func (h *Handler) AttendanceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	report, err := h.Service.AttendanceHistory(r.Context(), id, asOf)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// AttendanceReport renders the attendance history as a PDF.
func (h *Handler) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	rec, err := h.Builder.AttendanceReport(r.Context(), id, asOf)
	if err != nil {
		h.fail(w, err)
		return
	}
	content, err := h.Generator.Generate(r.Context(), rec)
	if err != nil {
		h.fail(w, err)
		return
	}
	name := fmt.Sprintf("attendance-%d-%s.pdf", id, asOf.Format(hr.DateLayout))
	writeFile(w, h.Generator.ContentType(), name, content)
}

// =============================================================================
// SAFETY HANDLERS
// =============================================================================

// ListSafetyPoints returns every safety point of an employee.
func (h *Handler) ListSafetyPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	records, err := h.Service.ListSafetyPoints(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

// AssignSafetyPoint records a safety assessment.
func (h *Handler) AssignSafetyPoint(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SafetyRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.Service.AssignSafetyPoint(r.Context(), actor, id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// EditSafetyPoint replaces a safety point and re-runs the decision.
func (h *Handler) EditSafetyPoint(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SafetyRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.Service.EditSafetyPoint(r.Context(), actor, id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteSafetyPoint retracts a safety point.
func (h *Handler) DeleteSafetyPoint(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.Service.DeleteSafetyPoint)
}

// SignSafetyPoint records the employee's signature.
func (h *Handler) SignSafetyPoint(w http.ResponseWriter, r *http.Request) {
	h.sign(w, r, h.Service.SignSafetyPoint)
}

// SafetyHistory returns the windowed safety totals.
func (h *Handler) SafetyHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	report, err := h.Service.SafetyHistory(r.Context(), id, asOf)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// COUNSELING HANDLERS
// =============================================================================

// ListCounseling returns every counseling of an employee.
func (h *Handler) ListCounseling(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	records, err := h.Service.ListCounseling(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

// NextCounselingStep returns the action the ladder requires next.
func (h *Handler) NextCounselingStep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	next, err := h.Service.NextCounselingStep(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"action_type": string(next),
		"name":        next.String(),
	})
}

// AssignCounseling records a manual counseling.
func (h *Handler) AssignCounseling(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CounselingRequest
	if !h.bind(w, r, &req) {
		return
	}
	c, err := h.Service.AssignCounseling(r.Context(), actor, id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// EditCounseling replaces a manual counseling.
func (h *Handler) EditCounseling(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CounselingRequest
	if !h.bind(w, r, &req) {
		return
	}
	c, err := h.Service.EditCounseling(r.Context(), actor, id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCounseling retracts a counseling.
func (h *Handler) DeleteCounseling(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, h.Service.DeleteCounseling)
}

// SignCounseling records the employee's signature.
func (h *Handler) SignCounseling(w http.ResponseWriter, r *http.Request) {
	h.sign(w, r, h.Service.SignCounseling)
}

// =============================================================================
// HOLD HANDLERS
// =============================================================================

// GetHold returns the employee's hold, or 404 when there is none.
func (h *Handler) GetHold(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	hold, err := h.Service.GetHold(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if hold == nil {
		writeError(w, http.StatusNotFound, "Employee is not on hold", nil)
		return
	}
	writeJSON(w, http.StatusOK, hold)
}

// PlaceHold puts the employee on hold.
func (h *Handler) PlaceHold(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req HoldRequest
	if !h.bind(w, r, &req) {
		return
	}
	hold, err := h.Service.PlaceHold(r.Context(), actor, id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hold)
}

// EditHold changes the hold's reason and dates.
func (h *Handler) EditHold(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req HoldRequest
	if !h.bind(w, r, &req) {
		return
	}
	hold, err := h.Service.EditHold(r.Context(), id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hold)
}

// RemoveHold releases the employee.
func (h *Handler) RemoveHold(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.RemoveHold(r.Context(), actor, id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// ListSettlements returns every settlement of an employee.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.Service.ListSettlements(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// CreateSettlement records agreed terms and releases a pending termination.
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SettlementRequest
	if !h.bind(w, r, &req) {
		return
	}
	st, err := h.Service.CreateSettlement(r.Context(), actor, id, req.Details)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// EditSettlement replaces the settlement terms.
func (h *Handler) EditSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SettlementRequest
	if !h.bind(w, r, &req) {
		return
	}
	st, err := h.Service.EditSettlement(r.Context(), id, req.Details)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// DeleteSettlement deactivates a settlement.
func (h *Handler) DeleteSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteSettlement(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SettlementUploaded records that the signed settlement was scanned in.
func (h *Handler) SettlementUploaded(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.MarkSettlementUploaded(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TIME OFF HANDLERS
// =============================================================================

// ListTimeOff returns every request of an employee, newest first.
func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.Service.ListTimeOff(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// RequestTimeOff files a pending request.
func (h *Handler) RequestTimeOff(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req TimeOffRequest
	if !h.bind(w, r, &req) {
		return
	}
	created, err := h.Service.RequestTimeOff(r.Context(), actor, id, req.input())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetTimeOff returns one request.
func (h *Handler) GetTimeOff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, err := h.Service.GetTimeOff(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// SetTimeOffStatus approves, denies or reopens a request.
func (h *Handler) SetTimeOffStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req TimeOffStatusRequest
	if !h.bind(w, r, &req) {
		return
	}
	updated, err := h.Service.SetTimeOffStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RemoveTimeOff withdraws a pending request.
func (h *Handler) RemoveTimeOff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.RemoveTimeOff(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DOCUMENT HANDLERS
// =============================================================================

// GetDocument downloads the generated document of a record.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ref, ok := recordRef(w, r)
	if !ok {
		return
	}
	doc, err := h.Service.GetDocument(r.Context(), ref)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeFile(w, doc.ContentType, doc.Key+".pdf", doc.Content)
}

// RegenerateDocument rebuilds a record's document from current data.
func (h *Handler) RegenerateDocument(w http.ResponseWriter, r *http.Request) {
	ref, ok := recordRef(w, r)
	if !ok {
		return
	}
	if err := h.Service.RegenerateDocument(r.Context(), ref); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DocumentUploaded records that the signed copy was scanned in.
func (h *Handler) DocumentUploaded(w http.ResponseWriter, r *http.Request) {
	ref, ok := recordRef(w, r)
	if !ok {
		return
	}
	if err := h.Service.MarkUploaded(r.Context(), ref); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// IMPORT HANDLERS
// =============================================================================

// ImportAttendance loads attendance points from a workbook.
func (h *Handler) ImportAttendance(w http.ResponseWriter, r *http.Request) {
	h.importFile(w, r, "attendance", h.Service.ImportAttendance)
}

// ImportSafetyPoints loads safety points from a workbook.
func (h *Handler) ImportSafetyPoints(w http.ResponseWriter, r *http.Request) {
	h.importFile(w, r, "safety_points", h.Service.ImportSafetyPoints)
}

// ImportDrivers hires drivers from a roster workbook.
func (h *Handler) ImportDrivers(w http.ResponseWriter, r *http.Request) {
	h.importFile(w, r, "drivers", h.Service.ImportDrivers)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// SendReminders runs the unsigned-document reminder sweep as of ?as_of.
func (h *Handler) SendReminders(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	report, err := h.Service.SendReminders(r.Context(), asOf)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ResetSickDays refills sick-day balances.
func (h *Handler) ResetSickDays(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, h.Service.ResetSickDays)
}

// ResetFloatingHolidays refills floating-holiday balances.
func (h *Handler) ResetFloatingHolidays(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, h.Service.ResetFloatingHolidays)
}

// =============================================================================
// SHARED FLOWS
// =============================================================================

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, actor, id int64) error) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := del(r.Context(), actor, id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sign(w http.ResponseWriter, r *http.Request, sign func(ctx context.Context, id int64, in operations.SignInput) error) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SignRequest
	if !h.bind(w, r, &req) {
		return
	}
	if err := sign(r.Context(), id, req.input()); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request, reset func(ctx context.Context, asOf time.Time) (int, error)) {
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	n, err := reset(r.Context(), asOf)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"as_of": asOf.Format(hr.DateLayout),
		"reset": n,
	})
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request, what string, run func(ctx context.Context, actor int64, r io.Reader) (*operations.ImportReport, error)) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Upload the workbook in the \"file\" field", err)
		return
	}
	defer file.Close()

	report, err := run(r.Context(), actor, file)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.Log.Info("import finished", "what", what, "imported", report.Imported, "rejected", len(report.Rejected))
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// HELPERS
// =============================================================================

type actorKey struct{}

// Actor reads the X-Employee-ID header into the request context. A
// missing header is allowed here; requireActor rejects it where a change
// must be attributed.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(ActorHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid "+ActorHeader+" header", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, id)))
	})
}

func requireActor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(actorKey{}).(int64)
	if !ok {
		writeError(w, http.StatusBadRequest, ActorHeader+" header is required", nil)
	}
	return id, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

func recordRef(w http.ResponseWriter, r *http.Request) (hr.RecordRef, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return hr.RecordRef{}, false
	}
	kind := hr.RecordKind(chi.URLParam(r, "kind"))
	switch kind {
	case hr.KindAttendance, hr.KindSafetyPoint, hr.KindCounseling, hr.KindSettlement:
		return hr.RecordRef{Kind: kind, ID: id}, true
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown record kind %q", string(kind)), nil)
	return hr.RecordRef{}, false
}

// asOf reads ?as_of, defaulting to the service's today.
func (h *Handler) asOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return h.Service.Today(), true
	}
	d, err := hr.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of (use YYYY-MM-DD)", err)
		return time.Time{}, false
	}
	return d, true
}

// bind decodes the JSON body into dst and checks its struct tags.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			h.fail(w, fieldErrors(ve))
			return false
		}
		h.fail(w, err)
		return false
	}
	return true
}

// fieldErrors converts validator output into the service's error shape.
func fieldErrors(ve validator.ValidationErrors) *hr.ValidationError {
	verr := &hr.ValidationError{}
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			verr.Add(fe.Field(), "This field is required.")
		case "datetime":
			verr.Add(fe.Field(), "Enter a valid date in the format %s.", fe.Param())
		case "max":
			verr.Add(fe.Field(), "Ensure this value has at most %s characters.", fe.Param())
		case "min":
			verr.Add(fe.Field(), "Ensure this field has at least %s entries.", fe.Param())
		case "email":
			verr.Add(fe.Field(), "Enter a valid email address.")
		default:
			verr.Add(fe.Field(), "Failed the %q check.", fe.Tag())
		}
	}
	return verr
}

// fail maps a service error to its status.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var verr *hr.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: verr.Fields})
	case hr.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, hr.ErrConflict):
		writeError(w, http.StatusConflict, "Conflict", err)
	case hr.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		h.Log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeFile(w http.ResponseWriter, contentType, name string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
