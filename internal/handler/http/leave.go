package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Apply(w http.ResponseWriter, r *http.Request)
	SetStatus(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Balances(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
	clock        clock.Clock
}

func NewLeaveHandler(leaveService leave.LeaveService, clk clock.Clock) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService: leaveService,
		clock:        clk,
	}
}

// Apply implements LeaveHandler.
func (h *leaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req leave.ApplyLeaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}
	req.Actor = actor

	result, err := h.leaveService.ApplyLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave applied", result)
}

// SetStatus implements LeaveHandler.
func (h *leaveHandlerImpl) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req leave.SetLeaveStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.LeaveID = chi.URLParam(r, "id")
	req.Actor = actor

	result, err := h.leaveService.SetLeaveStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave "+string(result.Status), result)
}

// Get implements LeaveHandler.
func (h *leaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	result, err := h.leaveService.GetLeave(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements LeaveHandler.
func (h *leaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	query := r.URL.Query()

	req := leave.ListLeavesRequest{
		EmployeeID: query.Get("employee_id"),
		Actor:      actor,
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}
	if v := query.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "year must be a number", nil)
			return
		}
		req.Year = &year
	}

	result, err := h.leaveService.ListLeaves(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Balances implements LeaveHandler.
func (h *leaveHandlerImpl) Balances(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	query := r.URL.Query()

	employeeID := query.Get("employee_id")
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	year := h.clock.Now().Year()
	if v := query.Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "year must be a number", nil)
			return
		}
		year = parsed
	}

	result, err := h.leaveService.ListBalances(r.Context(), employeeID, year, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
