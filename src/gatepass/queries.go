package gatepass

import (
	"campusgate/src/directory"
	"campusgate/src/models"
	"campusgate/src/types"
	"context"
	"time"
)

// Filter is the admin listing filter. Zero values are ignored.
type Filter struct {
	Status        types.GatePassStatus
	RequesterID   uint
	RequesterType types.RequesterType
	StudentID     uint
	DepartmentID  uint
	From          *time.Time
	To            *time.Time
}

func (s *Service) ListByRequester(ctx context.Context, requesterID uint, rt types.RequesterType) ([]models.GatePass, error) {
	return s.store.List(ctx, Query{RequesterID: &requesterID, RequesterType: rt})
}

func (s *Service) ListByStudent(ctx context.Context, studentID uint) ([]models.GatePass, error) {
	return s.ListByRequester(ctx, studentID, types.REQUESTER_STUDENT)
}

func (s *Service) PendingForStaff(ctx context.Context, staffID uint) ([]models.GatePass, error) {
	return s.pendingInDepartment(ctx, staffID, types.ROLE_STAFF, types.GATEPASS_PENDING_STAFF)
}

func (s *Service) PendingForHod(ctx context.Context, hodID uint) ([]models.GatePass, error) {
	return s.pendingInDepartment(ctx, hodID, types.ROLE_HOD, types.GATEPASS_PENDING_HOD)
}

func (s *Service) pendingInDepartment(ctx context.Context, actorID uint, role types.Role, status types.GatePassStatus) ([]models.GatePass, error) {
	actor, err := s.lookup(ctx, actorID, "actor")
	if err != nil {
		return nil, err
	}
	if actor.Role != role {
		return nil, forbidden("user %d is not a %s", actor.ID, role)
	}
	if actor.DepartmentID == nil {
		return []models.GatePass{}, nil
	}
	return s.store.List(ctx, Query{
		Statuses:     []types.GatePassStatus{status},
		DepartmentID: actor.DepartmentID,
	})
}

func (s *Service) PendingForAcademicDirector(ctx context.Context) ([]models.GatePass, error) {
	return s.store.List(ctx, Query{
		Statuses: types.AcademicDirectorPending,
		Order:    OrderDepartmentThenOldest,
	})
}

func (s *Service) PendingForHostelWarden(ctx context.Context) ([]models.GatePass, error) {
	return s.store.List(ctx, Query{Statuses: []types.GatePassStatus{types.GATEPASS_PENDING_HOSTEL_WARDEN}})
}

// ForSecurityVerification lists approved passes security may check out now.
func (s *Service) ForSecurityVerification(ctx context.Context) ([]models.GatePass, error) {
	now := s.now()
	from := now.Add(-s.settings.SecurityBuffer)
	to := now.Add(s.settings.SecurityBuffer)
	return s.store.List(ctx, Query{
		Statuses:  []types.GatePassStatus{types.GATEPASS_APPROVED},
		ValidFrom: &from,
		ValidTo:   &to,
	})
}

func (s *Service) SecurityPending(ctx context.Context) ([]models.GatePass, error) {
	return s.store.List(ctx, Query{Statuses: types.AllPending})
}

func (s *Service) SecurityUsed(ctx context.Context) ([]models.GatePass, error) {
	since := s.now().Add(-s.settings.UsedWindow)
	return s.store.List(ctx, Query{
		Statuses:     []types.GatePassStatus{types.GATEPASS_USED},
		UpdatedSince: &since,
	})
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.GatePass, error) {
	q := Query{
		RequesterType: f.RequesterType,
		StartFrom:     f.From,
		StartTo:       f.To,
	}
	if f.Status != "" {
		q.Statuses = []types.GatePassStatus{f.Status}
	}
	if f.RequesterID != 0 {
		q.RequesterID = &f.RequesterID
	}
	if f.StudentID != 0 {
		q.StudentID = &f.StudentID
	}
	if f.DepartmentID != 0 {
		q.DepartmentID = &f.DepartmentID
	}
	return s.store.List(ctx, q)
}

// CanView reports whether viewer may read gp: requesters see their own,
// staff and HODs their department, every other role all records.
func CanView(viewer *directory.Person, gp *models.GatePass) bool {
	switch viewer.Role {
	case types.ROLE_STUDENT:
		return gp.RequesterID == viewer.ID
	case types.ROLE_STAFF, types.ROLE_HOD:
		return gp.RequesterID == viewer.ID || viewer.InDepartment(gp.DepartmentID)
	case types.ROLE_UNKNOWN:
		return false
	}
	return true
}

// GetFor returns gp when viewer is allowed to read it.
func (s *Service) GetFor(ctx context.Context, id, viewerID uint) (*models.GatePass, error) {
	viewer, err := s.lookup(ctx, viewerID, "viewer")
	if err != nil {
		return nil, err
	}
	gp, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(viewer, gp) {
		return nil, forbidden("gate pass %d is not visible to user %d", id, viewerID)
	}
	return gp, nil
}
