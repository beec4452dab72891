package gatepass

import (
	"campusgate/src/models"
	"campusgate/src/types"
	"context"
	"time"
)

// MutateFunc validates and changes a locked copy of a record. Returning an
// error aborts the transition with nothing written.
type MutateFunc func(gp *models.GatePass) (*models.GatePassTrail, error)

type Store interface {
	Create(ctx context.Context, gp *models.GatePass, trail *models.GatePassTrail) error
	Get(ctx context.Context, id uint) (*models.GatePass, error)
	// Transition runs fn while holding the record exclusively and persists
	// the record and trail row atomically.
	Transition(ctx context.Context, id uint, fn MutateFunc) (*models.GatePass, error)
	List(ctx context.Context, q Query) ([]models.GatePass, error)
	Trail(ctx context.Context, id uint) ([]models.GatePassTrail, error)
}

type Order int

const (
	OrderRecentFirst Order = iota
	OrderDepartmentThenOldest
)

type Query struct {
	Statuses      []types.GatePassStatus
	RequesterID   *uint
	RequesterType types.RequesterType
	StudentID     *uint
	DepartmentID  *uint
	// StartFrom and StartTo bound start_date.
	StartFrom *time.Time
	StartTo   *time.Time
	// ValidFrom and ValidTo keep records whose validity window overlaps them.
	ValidFrom    *time.Time
	ValidTo      *time.Time
	UpdatedSince *time.Time
	Order        Order
}

func (q Query) Matches(gp *models.GatePass) bool {
	if len(q.Statuses) > 0 {
		ok := false
		for _, s := range q.Statuses {
			if gp.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if q.RequesterID != nil && gp.RequesterID != *q.RequesterID {
		return false
	}
	if q.RequesterType != "" && gp.RequesterType != q.RequesterType {
		return false
	}
	if q.StudentID != nil && (gp.StudentID == nil || *gp.StudentID != *q.StudentID) {
		return false
	}
	if q.DepartmentID != nil && (gp.DepartmentID == nil || *gp.DepartmentID != *q.DepartmentID) {
		return false
	}
	if q.StartFrom != nil && gp.StartDate.Before(*q.StartFrom) {
		return false
	}
	if q.StartTo != nil && gp.StartDate.After(*q.StartTo) {
		return false
	}
	if q.ValidTo != nil && gp.StartDate.After(*q.ValidTo) {
		return false
	}
	if q.ValidFrom != nil && gp.EndDate.Before(*q.ValidFrom) {
		return false
	}
	if q.UpdatedSince != nil && gp.UpdatedAt.Before(*q.UpdatedSince) {
		return false
	}
	return true
}
