package gatepass

import (
	"campusgate/src/models"
	"campusgate/src/types"
	"time"
)

type Stage string

const (
	StageStaff            Stage = "staff"
	StageHod              Stage = "hod"
	StageHostelWarden     Stage = "hostel_warden"
	StageAcademicDirector Stage = "academic_director"
	StageSecurity         Stage = "security"
)

// decisionCheckout is the only decision security can take.
const decisionCheckout types.Decision = "checkout"

// Route is the branch chosen at HOD approval.
type Route string

const (
	RouteAny          Route = ""
	RouteHostelWarden Route = "hostel_warden"
	RouteDirect       Route = "direct"
)

type Transition struct {
	Stage    Stage
	From     types.GatePassStatus
	Decision types.Decision
	Route    Route
	To       types.GatePassStatus
}

var transitionsTable = []Transition{
	// Staff
	{Stage: StageStaff, From: types.GATEPASS_PENDING_STAFF, Decision: types.DECISION_APPROVE, To: types.GATEPASS_PENDING_HOD},
	{Stage: StageStaff, From: types.GATEPASS_PENDING_STAFF, Decision: types.DECISION_REJECT, To: types.GATEPASS_REJECTED_BY_STAFF},

	// HOD, the only branch point
	{Stage: StageHod, From: types.GATEPASS_PENDING_HOD, Decision: types.DECISION_APPROVE, Route: RouteHostelWarden, To: types.GATEPASS_PENDING_HOSTEL_WARDEN},
	{Stage: StageHod, From: types.GATEPASS_PENDING_HOD, Decision: types.DECISION_APPROVE, Route: RouteDirect, To: types.GATEPASS_PENDING_ACADEMIC_DIRECTOR},
	{Stage: StageHod, From: types.GATEPASS_PENDING_HOD, Decision: types.DECISION_REJECT, To: types.GATEPASS_REJECTED_BY_HOD},

	// Hostel warden
	{Stage: StageHostelWarden, From: types.GATEPASS_PENDING_HOSTEL_WARDEN, Decision: types.DECISION_APPROVE, To: types.GATEPASS_PENDING_ACADEMIC_DIRECTOR},
	{Stage: StageHostelWarden, From: types.GATEPASS_PENDING_HOSTEL_WARDEN, Decision: types.DECISION_REJECT, To: types.GATEPASS_REJECTED_BY_HOSTEL_WARDEN},

	// Academic director, every pending variant
	{Stage: StageAcademicDirector, From: types.GATEPASS_PENDING_ACADEMIC_DIRECTOR, Decision: types.DECISION_APPROVE, To: types.GATEPASS_APPROVED},
	{Stage: StageAcademicDirector, From: types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_STAFF, Decision: types.DECISION_APPROVE, To: types.GATEPASS_APPROVED},
	{Stage: StageAcademicDirector, From: types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD, Decision: types.DECISION_APPROVE, To: types.GATEPASS_APPROVED},
	{Stage: StageAcademicDirector, From: types.GATEPASS_PENDING_ACADEMIC_DIRECTOR, Decision: types.DECISION_REJECT, To: types.GATEPASS_REJECTED_BY_ACADEMIC_DIRECTOR},
	{Stage: StageAcademicDirector, From: types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_STAFF, Decision: types.DECISION_REJECT, To: types.GATEPASS_REJECTED_BY_ACADEMIC_DIRECTOR},
	{Stage: StageAcademicDirector, From: types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD, Decision: types.DECISION_REJECT, To: types.GATEPASS_REJECTED_BY_ACADEMIC_DIRECTOR},

	// Security check-out
	{Stage: StageSecurity, From: types.GATEPASS_APPROVED, Decision: decisionCheckout, To: types.GATEPASS_USED},
}

type stageRule struct {
	Role             types.Role
	DepartmentScoped bool
}

var stageRules = map[Stage]stageRule{
	StageStaff:            {Role: types.ROLE_STAFF, DepartmentScoped: true},
	StageHod:              {Role: types.ROLE_HOD, DepartmentScoped: true},
	StageHostelWarden:     {Role: types.ROLE_HOSTEL_WARDEN},
	StageAcademicDirector: {Role: types.ROLE_ACADEMIC_DIRECTOR},
	StageSecurity:         {Role: types.ROLE_SECURITY},
}

// TransitionFor returns the allowed transition for a stage decision taken
// on a record in status from. RouteAny matches rows without a route.
func TransitionFor(stage Stage, from types.GatePassStatus, d types.Decision, route Route) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.Stage == stage && tr.From == from && tr.Decision == d && (tr.Route == RouteAny || tr.Route == route) {
			return tr, true
		}
	}
	return Transition{}, false
}

// ExpectedStatuses lists the statuses a stage can act on.
func ExpectedStatuses(stage Stage) []types.GatePassStatus {
	seen := map[types.GatePassStatus]bool{}
	out := make([]types.GatePassStatus, 0)
	for _, tr := range transitionsTable {
		if tr.Stage == stage && !seen[tr.From] {
			seen[tr.From] = true
			out = append(out, tr.From)
		}
	}
	return out
}

func InitialStatus(rt types.RequesterType) (types.GatePassStatus, bool) {
	switch rt {
	case types.REQUESTER_STUDENT:
		return types.GATEPASS_PENDING_STAFF, true
	case types.REQUESTER_STAFF:
		return types.GATEPASS_PENDING_HOD, true
	case types.REQUESTER_HOD:
		return types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD, true
	}
	return "", false
}

// RouteFor decides the HOD branch. Only hosteller students go through the
// hostel warden.
func RouteFor(rt types.RequesterType, boarding types.BoardingType) Route {
	if rt == types.REQUESTER_STUDENT && boarding == types.BOARDING_HOSTELLER {
		return RouteHostelWarden
	}
	return RouteDirect
}

// NextStage reports which stage acts on a status, if any.
func NextStage(s types.GatePassStatus) (Stage, bool) {
	for _, tr := range transitionsTable {
		if tr.From == s {
			return tr.Stage, true
		}
	}
	return "", false
}

// recordDecision writes the deciding actor and comment into the stage
// fields of gp.
func recordDecision(gp *models.GatePass, stage Stage, actorID uint, comment *string, at time.Time) {
	id := actorID
	switch stage {
	case StageStaff:
		gp.StaffID, gp.StaffComment = &id, comment
	case StageHod:
		gp.HodID, gp.HodComment = &id, comment
	case StageHostelWarden:
		gp.HostelWardenID, gp.HostelWardenComment = &id, comment
	case StageAcademicDirector:
		gp.AcademicDirectorID, gp.AcademicDirectorComment = &id, comment
	case StageSecurity:
		gp.SecurityID, gp.SecurityComment = &id, comment
		t := at
		gp.CheckoutTime = &t
	}
}
