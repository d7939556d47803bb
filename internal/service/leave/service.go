package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	calsvc "github.com/cmlabs-hris/hris-timekeeping/internal/service/calendar"
)

type Options struct {
	// RHHostType is the leave type whose balance row carries restricted-holiday units.
	RHHostType string
	Policy     attendance.Policy
}

type LeaveServiceImpl struct {
	tx     database.Transactor
	locker database.Locker
	leave.LeaveRecordRepository
	leave.LeaveBalanceRepository
	leave.QuotaProvider
	attendance.AttendanceRepository
	employee.EmployeeRepository
	holidays   calendar.HolidayRepository
	classifier calendar.Classifier
	clock      clock.Clock
	opts       Options
}

func NewLeaveService(
	tx database.Transactor,
	locker database.Locker,
	leaveRepo leave.LeaveRecordRepository,
	balanceRepo leave.LeaveBalanceRepository,
	quotas leave.QuotaProvider,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	holidays calendar.HolidayRepository,
	classifier calendar.Classifier,
	clk clock.Clock,
	opts Options,
) leave.LeaveService {
	if opts.RHHostType == "" {
		opts.RHHostType = leave.TypeCasual
	}
	return &LeaveServiceImpl{
		tx:                     tx,
		locker:                 locker,
		LeaveRecordRepository:  leaveRepo,
		LeaveBalanceRepository: balanceRepo,
		QuotaProvider:          quotas,
		AttendanceRepository:   attendanceRepo,
		EmployeeRepository:     employeeRepo,
		holidays:               holidays,
		classifier:             classifier,
		clock:                  clk,
		opts:                   opts,
	}
}

// ApplyLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) ApplyLeave(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRecordResponse{}, err
	}
	if !req.Actor.CanActFor(req.EmployeeID) {
		return leave.LeaveRecordResponse{}, leave.ErrForbidden
	}
	if _, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveRecordResponse{}, err
	}

	from, _ := calendar.ParseDate(req.FromDate)
	to, _ := calendar.ParseDate(req.ToDate)
	rec := leave.LeaveRecord{
		EmployeeID: req.EmployeeID,
		LeaveType:  req.LeaveType,
		FromDate:   from,
		ToDate:     to,
		NoOfDays:   req.NoOfDays,
		Status:     leave.StatusPending,
		Reason:     req.Reason,
	}

	if req.RestrictedHolidayDate != nil {
		rhDate, _ := calendar.ParseDate(*req.RestrictedHolidayDate)
		h, err := calsvc.RestrictedHolidayOn(ctx, s.holidays, rhDate)
		if err != nil {
			return leave.LeaveRecordResponse{}, err
		}
		if h == nil {
			return leave.LeaveRecordResponse{}, leave.ErrRestrictedHolidayDate
		}
		rec.RestrictedHolidayDate = &rhDate
	}

	balanceType := rec.BalanceType(s.opts.RHHostType)
	var created leave.LeaveRecord
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.locker.Lock(ctx,
			leave.ApplyLockKey(rec.EmployeeID),
			leave.BalanceLockKey(rec.EmployeeID, balanceType, rec.Year()),
		); err != nil {
			return err
		}

		overlaps, err := s.LeaveRecordRepository.FindOverlapping(ctx, rec.EmployeeID, from, to, leave.StatusPending, leave.StatusApproved)
		if err != nil {
			return fmt.Errorf("find overlapping leave: %w", err)
		}
		if len(overlaps) > 0 {
			return fmt.Errorf("%w: %s", leave.ErrOverlappingLeave, overlaps[0].ID)
		}

		balance, err := s.balanceFor(ctx, rec.EmployeeID, balanceType, rec.Year(), true)
		if err != nil {
			return err
		}
		next, err := leave.Reserve(balance, rec.NoOfDays, rec.IsRestrictedHoliday())
		if err != nil {
			return err
		}
		if err := s.LeaveBalanceRepository.Update(ctx, next); err != nil {
			return fmt.Errorf("update leave balance: %w", err)
		}

		created, err = s.LeaveRecordRepository.Create(ctx, rec)
		if err != nil {
			return fmt.Errorf("create leave record: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRecordResponse{}, err
	}

	slog.Info("leave applied",
		"leave_id", created.ID,
		"employee_id", created.EmployeeID,
		"leave_type", created.LeaveType,
		"days", created.NoOfDays.String(),
	)
	return leave.NewLeaveRecordResponse(created), nil
}

// balanceFor loads a balance row, provisioning it from the quota source when
// provision is set and the row does not exist yet.
func (s *LeaveServiceImpl) balanceFor(ctx context.Context, employeeID, leaveType string, year int, provision bool) (leave.LeaveBalance, error) {
	existing, err := s.LeaveBalanceRepository.Get(ctx, employeeID, leaveType, year)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("get leave balance: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}
	if !provision {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}

	quota, err := s.QuotaProvider.Allocation(ctx, employeeID, leaveType, year)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("get quota allocation: %w", err)
	}
	if quota == nil {
		return leave.LeaveBalance{}, fmt.Errorf("%w: %s/%d", leave.ErrBalanceNotFound, leaveType, year)
	}

	created, err := s.LeaveBalanceRepository.Create(ctx, leave.LeaveBalance{
		EmployeeID:     employeeID,
		LeaveType:      leaveType,
		Year:           year,
		TotalAllocated: quota.TotalAllocated,
		CarriedForward: quota.CarriedForward,
		RHAllocated:    quota.RHAllocated,
	})
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("provision leave balance: %w", err)
	}
	slog.Info("leave balance provisioned",
		"employee_id", employeeID,
		"leave_type", leaveType,
		"year", year,
		"allocated", quota.TotalAllocated.String(),
	)
	return created, nil
}

// SetLeaveStatus implements leave.LeaveService.
func (s *LeaveServiceImpl) SetLeaveStatus(ctx context.Context, req leave.SetLeaveStatusRequest) (leave.LeaveRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRecordResponse{}, err
	}

	current, err := s.LeaveRecordRepository.GetByID(ctx, req.LeaveID)
	if err != nil {
		return leave.LeaveRecordResponse{}, err
	}
	switch req.Status {
	case leave.StatusCancelled:
		if !req.Actor.CanActFor(current.EmployeeID) {
			return leave.LeaveRecordResponse{}, leave.ErrForbidden
		}
	default:
		if !req.Actor.Privileged {
			return leave.LeaveRecordResponse{}, leave.ErrForbidden
		}
	}

	balanceType := current.BalanceType(s.opts.RHHostType)
	keys := []string{leave.BalanceLockKey(current.EmployeeID, balanceType, current.Year())}
	if req.Status == leave.StatusApproved || req.Status == leave.StatusCancelled {
		for _, d := range leaveWorkdays(current) {
			keys = append(keys, attendance.LockKey(current.EmployeeID, d))
		}
	}

	var (
		result leave.LeaveRecord
		from   leave.LeaveStatus
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.locker.Lock(ctx, keys...); err != nil {
			return err
		}

		rec, err := s.LeaveRecordRepository.GetByID(ctx, req.LeaveID)
		if err != nil {
			return err
		}
		from = rec.Status
		if rec.Status == req.Status {
			result = rec
			return nil
		}
		if !leave.CanTransition(rec.Status, req.Status) {
			return fmt.Errorf("%w: %s to %s", leave.ErrInvalidStateTransition, rec.Status, req.Status)
		}

		balance, err := s.balanceFor(ctx, rec.EmployeeID, balanceType, rec.Year(), false)
		if err != nil {
			return err
		}
		next, err := leave.ApplyTransition(balance, rec.Status, req.Status, rec.NoOfDays, rec.IsRestrictedHoliday())
		if err != nil {
			return err
		}
		if err := s.LeaveBalanceRepository.Update(ctx, next); err != nil {
			return fmt.Errorf("update leave balance: %w", err)
		}

		decidedAt := s.clock.Now()
		rec.Status = req.Status
		rec.DecidedBy = req.Actor.AuditID()
		rec.DecidedAt = &decidedAt
		rec.RejectionReason = req.RejectionReason
		if err := s.LeaveRecordRepository.UpdateStatus(ctx, rec); err != nil {
			return fmt.Errorf("update leave status: %w", err)
		}

		switch {
		case req.Status == leave.StatusApproved:
			if err := s.stampAttendance(ctx, rec, req.Actor); err != nil {
				return err
			}
		case from == leave.StatusApproved && req.Status == leave.StatusCancelled:
			if err := s.unstampAttendance(ctx, rec, req.Actor); err != nil {
				return err
			}
		}

		result = rec
		return nil
	})
	if err != nil {
		return leave.LeaveRecordResponse{}, err
	}

	if from == req.Status {
		slog.Info("leave status unchanged", "leave_id", result.ID, "status", result.Status)
	} else {
		slog.Info("leave status changed",
			"leave_id", result.ID,
			"employee_id", result.EmployeeID,
			"from", from,
			"to", result.Status,
		)
	}
	return leave.NewLeaveRecordResponse(result), nil
}

// GetLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeave(ctx context.Context, id string, actor employee.Actor) (leave.LeaveRecordResponse, error) {
	rec, err := s.LeaveRecordRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRecordResponse{}, err
	}
	if !actor.CanActFor(rec.EmployeeID) {
		return leave.LeaveRecordResponse{}, leave.ErrForbidden
	}
	return leave.NewLeaveRecordResponse(rec), nil
}

// ListLeaves implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaves(ctx context.Context, req leave.ListLeavesRequest) ([]leave.LeaveRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.Actor.CanActFor(req.EmployeeID) {
		return nil, leave.ErrForbidden
	}

	filter := leave.LeaveFilter{Year: req.Year}
	if req.Status != nil {
		status := leave.LeaveStatus(*req.Status)
		filter.Status = &status
	}

	records, err := s.LeaveRecordRepository.ListByEmployee(ctx, req.EmployeeID, filter)
	if err != nil {
		return nil, fmt.Errorf("list leave records: %w", err)
	}
	resp := make([]leave.LeaveRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, leave.NewLeaveRecordResponse(rec))
	}
	return resp, nil
}

// ListBalances implements leave.LeaveService.
func (s *LeaveServiceImpl) ListBalances(ctx context.Context, employeeID string, year int, actor employee.Actor) ([]leave.LeaveBalanceResponse, error) {
	if !actor.CanActFor(employeeID) {
		return nil, leave.ErrForbidden
	}

	balances, err := s.LeaveBalanceRepository.ListByEmployee(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("list leave balances: %w", err)
	}
	resp := make([]leave.LeaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		resp = append(resp, leave.NewLeaveBalanceResponse(b))
	}
	return resp, nil
}
