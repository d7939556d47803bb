package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// IsHalfDayMultiple reports whether days is a positive multiple of 0.5.
func IsHalfDayMultiple(days decimal.Decimal) bool {
	return days.IsPositive() && days.Mod(half).IsZero()
}

// CanTransition reports whether a leave may move from one status to another.
func CanTransition(from, to LeaveStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusCancelled
	case StatusApproved:
		return to == StatusCancelled
	}
	return false
}

// Reserve books a new PENDING leave of days against b. Restricted holidays
// consume one whole rh unit instead of days.
func Reserve(b LeaveBalance, days decimal.Decimal, restricted bool) (LeaveBalance, error) {
	if restricted {
		if b.RHAvailable() < 1 {
			return b, fmt.Errorf("%w: %d restricted holiday(s) available", ErrInsufficientBalance, b.RHAvailable())
		}
		b.RHPending++
		return b, nil
	}

	if b.Available().LessThan(days) {
		return b, fmt.Errorf("%w: %s day(s) available, %s requested", ErrInsufficientBalance, b.Available(), days)
	}
	b.Pending = b.Pending.Add(days)
	return b, nil
}

// ApplyTransition moves days between the pending and used buckets for a status
// change. It returns b unchanged for a same-status transition and rejects any
// change that would leave a bucket negative.
func ApplyTransition(b LeaveBalance, from, to LeaveStatus, days decimal.Decimal, restricted bool) (LeaveBalance, error) {
	if from == to {
		return b, nil
	}
	if !CanTransition(from, to) {
		return b, fmt.Errorf("%w: %s to %s", ErrInvalidStateTransition, from, to)
	}

	next := b
	if restricted {
		switch {
		case from == StatusPending && to == StatusApproved:
			next.RHPending--
			next.RHUsed++
		case from == StatusPending:
			next.RHPending--
		case from == StatusApproved && to == StatusCancelled:
			next.RHUsed--
		}
	} else {
		switch {
		case from == StatusPending && to == StatusApproved:
			next.Pending = next.Pending.Sub(days)
			next.Used = next.Used.Add(days)
		case from == StatusPending:
			next.Pending = next.Pending.Sub(days)
		case from == StatusApproved && to == StatusCancelled:
			next.Used = next.Used.Sub(days)
		}
	}

	if next.Pending.IsNegative() || next.Used.IsNegative() || next.Available().IsNegative() ||
		next.RHPending < 0 || next.RHUsed < 0 || next.RHAvailable() < 0 {
		return b, fmt.Errorf("%w: %s to %s on %s/%d", ErrLedgerUnderflow, from, to, b.LeaveType, b.Year)
	}
	return next, nil
}
