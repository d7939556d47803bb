package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/export"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	SubmitTimesheet(w http.ResponseWriter, r *http.Request)
	DecideTimesheet(w http.ResponseWriter, r *http.Request)
	DeleteTimesheet(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	MonthlySummary(w http.ResponseWriter, r *http.Request)
	ExportMonthlySummary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	location          *time.Location
}

// NewAttendanceHandler builds the handler. loc is the zone exports print times in.
func NewAttendanceHandler(attendanceService attendance.AttendanceService, loc *time.Location) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		location:          loc,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Debug("Failed to decode request body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req attendance.CheckInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}
	req.Actor = actor

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req attendance.CheckOutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}
	req.Actor = actor

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// SubmitTimesheet implements AttendanceHandler.
func (h *attendanceHandlerImpl) SubmitTimesheet(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req attendance.SubmitTimesheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}
	req.Actor = actor

	result, err := h.attendanceService.SubmitTimesheet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Timesheet submitted", result)
}

// DecideTimesheet implements AttendanceHandler.
func (h *attendanceHandlerImpl) DecideTimesheet(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req attendance.TimesheetDecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.AttendanceID = chi.URLParam(r, "id")
	req.Actor = actor

	result, err := h.attendanceService.ApproveOrRejectTimesheet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet "+string(result.Status), result)
}

// DeleteTimesheet implements AttendanceHandler.
func (h *attendanceHandlerImpl) DeleteTimesheet(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	err := h.attendanceService.DeleteTimesheet(r.Context(), attendance.DeleteTimesheetRequest{
		AttendanceID: chi.URLParam(r, "id"),
		Actor:        actor,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet deleted", nil)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	result, err := h.attendanceService.GetAttendance(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) summaryRequest(r *http.Request) (attendance.MonthlySummaryRequest, error) {
	actor, _ := middleware.ActorFromContext(r.Context())
	query := r.URL.Query()

	req := attendance.MonthlySummaryRequest{
		EmployeeID: query.Get("employee_id"),
		Actor:      actor,
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}

	var errs validator.ValidationErrors
	month, err := strconv.Atoi(query.Get("month"))
	if err != nil {
		errs.Add("month", "month must be a number")
	}
	year, err := strconv.Atoi(query.Get("year"))
	if err != nil {
		errs.Add("year", "year must be a number")
	}
	if err := errs.Err(); err != nil {
		return req, err
	}
	req.Month, req.Year = month, year
	return req, nil
}

// MonthlySummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	req, err := h.summaryRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetMonthlySummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthlySummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportMonthlySummary(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	req, err := h.summaryRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.attendanceService.GetMonthlySummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, summary, h.location); err != nil {
		slog.Error("Failed to render summary export", "format", format, "error", err)
		response.InternalServerError(w, "Failed to render export")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(summary, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
