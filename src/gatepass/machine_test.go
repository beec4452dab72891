package gatepass

import (
	"campusgate/src/models"
	"campusgate/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransitionFor(t *testing.T) {
	tests := []struct {
		name   string
		stage  Stage
		from   types.GatePassStatus
		d      types.Decision
		route  Route
		to     types.GatePassStatus
		wantOK bool
	}{
		{"staff approves", StageStaff, types.GATEPASS_PENDING_STAFF, types.DECISION_APPROVE, RouteAny, types.GATEPASS_PENDING_HOD, true},
		{"staff rejects", StageStaff, types.GATEPASS_PENDING_STAFF, types.DECISION_REJECT, RouteAny, types.GATEPASS_REJECTED_BY_STAFF, true},
		{"staff on hod stage", StageStaff, types.GATEPASS_PENDING_HOD, types.DECISION_APPROVE, RouteAny, "", false},
		{"hod to warden", StageHod, types.GATEPASS_PENDING_HOD, types.DECISION_APPROVE, RouteHostelWarden, types.GATEPASS_PENDING_HOSTEL_WARDEN, true},
		{"hod direct", StageHod, types.GATEPASS_PENDING_HOD, types.DECISION_APPROVE, RouteDirect, types.GATEPASS_PENDING_ACADEMIC_DIRECTOR, true},
		{"hod approve needs a route", StageHod, types.GATEPASS_PENDING_HOD, types.DECISION_APPROVE, RouteAny, "", false},
		{"hod rejects any route", StageHod, types.GATEPASS_PENDING_HOD, types.DECISION_REJECT, RouteDirect, types.GATEPASS_REJECTED_BY_HOD, true},
		{"warden approves", StageHostelWarden, types.GATEPASS_PENDING_HOSTEL_WARDEN, types.DECISION_APPROVE, RouteAny, types.GATEPASS_PENDING_ACADEMIC_DIRECTOR, true},
		{"director from staff", StageAcademicDirector, types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_STAFF, types.DECISION_APPROVE, RouteAny, types.GATEPASS_APPROVED, true},
		{"director from hod rejects", StageAcademicDirector, types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD, types.DECISION_REJECT, RouteAny, types.GATEPASS_REJECTED_BY_ACADEMIC_DIRECTOR, true},
		{"director twice", StageAcademicDirector, types.GATEPASS_APPROVED, types.DECISION_APPROVE, RouteAny, "", false},
		{"security checkout", StageSecurity, types.GATEPASS_APPROVED, decisionCheckout, RouteAny, types.GATEPASS_USED, true},
		{"security on used", StageSecurity, types.GATEPASS_USED, decisionCheckout, RouteAny, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := TransitionFor(tt.stage, tt.from, tt.d, tt.route)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.to, tr.To)
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, s := range []types.GatePassStatus{
		types.GATEPASS_REJECTED_BY_STAFF,
		types.GATEPASS_REJECTED_BY_HOD,
		types.GATEPASS_REJECTED_BY_HOSTEL_WARDEN,
		types.GATEPASS_REJECTED_BY_ACADEMIC_DIRECTOR,
		types.GATEPASS_USED,
		types.GATEPASS_EXPIRED,
	} {
		_, ok := NextStage(s)
		assert.False(t, ok, s)
	}
	stage, ok := NextStage(types.GATEPASS_APPROVED)
	assert.True(t, ok)
	assert.Equal(t, StageSecurity, stage)
}

func TestExpectedStatuses(t *testing.T) {
	assert.Equal(t, []types.GatePassStatus{types.GATEPASS_PENDING_HOD}, ExpectedStatuses(StageHod))
	assert.ElementsMatch(t, types.AcademicDirectorPending, ExpectedStatuses(StageAcademicDirector))
}

func TestInitialStatusAndRoute(t *testing.T) {
	s, ok := InitialStatus(types.REQUESTER_HOD)
	assert.True(t, ok)
	assert.Equal(t, types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD, s)
	_, ok = InitialStatus("visitor")
	assert.False(t, ok)

	assert.Equal(t, RouteHostelWarden, RouteFor(types.REQUESTER_STUDENT, types.BOARDING_HOSTELLER))
	assert.Equal(t, RouteDirect, RouteFor(types.REQUESTER_STUDENT, types.BOARDING_DAY_SCHOLAR))
	assert.Equal(t, RouteDirect, RouteFor(types.REQUESTER_STUDENT, types.BOARDING_UNKNOWN))
	assert.Equal(t, RouteDirect, RouteFor(types.REQUESTER_STAFF, types.BOARDING_HOSTELLER))
}

func TestRecordDecision(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	note := "ok"
	gp := &models.GatePass{}
	recordDecision(gp, StageHostelWarden, 7, &note, at)
	assert.Equal(t, uint(7), *gp.HostelWardenID)
	assert.Equal(t, "ok", *gp.HostelWardenComment)
	assert.Nil(t, gp.CheckoutTime)

	recordDecision(gp, StageSecurity, 9, nil, at)
	assert.Equal(t, uint(9), *gp.SecurityID)
	assert.Equal(t, at, *gp.CheckoutTime)
}

func TestErrorMessages(t *testing.T) {
	err := invalidState(4, types.GATEPASS_APPROVED, ExpectedStatuses(StageStaff))
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "current status is approved, expected pending_staff")
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(assert.AnError))
}
