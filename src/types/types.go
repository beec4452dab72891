package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Claims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type Handler func(payload string)

type Environment string

const (
	Local      Environment = "local"
	Production Environment = "production"
)

// Role is the normalized user role. Raw role strings are mapped onto it once
// when a user is read from the directory.
type Role string

const (
	ROLE_STUDENT           Role = "student"
	ROLE_STAFF             Role = "staff"
	ROLE_HOD               Role = "hod"
	ROLE_HOSTEL_WARDEN     Role = "hostel_warden"
	ROLE_ACADEMIC_DIRECTOR Role = "academic_director"
	ROLE_SECURITY          Role = "security"
	ROLE_ADMIN             Role = "admin"
	ROLE_UNKNOWN           Role = ""
)

var roleAliases = map[string]Role{
	"student":            ROLE_STUDENT,
	"staff":              ROLE_STAFF,
	"hod":                ROLE_HOD,
	"head_of_department": ROLE_HOD,
	"hostel_warden":      ROLE_HOSTEL_WARDEN,
	"warden":             ROLE_HOSTEL_WARDEN,
	"academic_director":  ROLE_ACADEMIC_DIRECTOR,
	"security":           ROLE_SECURITY,
	"admin":              ROLE_ADMIN,
}

// ParseRole accepts "HOD", "Hostel Warden", "academic-director" and similar
// spellings. Unrecognized values map to ROLE_UNKNOWN.
func ParseRole(raw string) Role {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if r, ok := roleAliases[s]; ok {
		return r
	}
	return ROLE_UNKNOWN
}

// RoleSpellings lists the lowercase raw values that normalize to r.
func RoleSpellings(r Role) []string {
	out := make([]string, 0)
	for k, v := range roleAliases {
		if v != r {
			continue
		}
		out = append(out, k)
		if strings.Contains(k, "_") {
			out = append(out, strings.ReplaceAll(k, "_", " "), strings.ReplaceAll(k, "_", "-"))
		}
	}
	sort.Strings(out)
	return out
}

type RequesterType string

const (
	REQUESTER_STUDENT RequesterType = "student"
	REQUESTER_STAFF   RequesterType = "staff"
	REQUESTER_HOD     RequesterType = "hod"
)

// RequesterTypeFor reports which approval chain a role files under.
func RequesterTypeFor(r Role) (RequesterType, bool) {
	switch r {
	case ROLE_STUDENT:
		return REQUESTER_STUDENT, true
	case ROLE_STAFF:
		return REQUESTER_STAFF, true
	case ROLE_HOD:
		return REQUESTER_HOD, true
	}
	return "", false
}

type GatePassStatus string

const (
	GATEPASS_PENDING_STAFF                        GatePassStatus = "pending_staff"
	GATEPASS_APPROVED_BY_STAFF                    GatePassStatus = "approved_by_staff"
	GATEPASS_REJECTED_BY_STAFF                    GatePassStatus = "rejected_by_staff"
	GATEPASS_PENDING_HOD                          GatePassStatus = "pending_hod"
	GATEPASS_PENDING_HOSTEL_WARDEN                GatePassStatus = "pending_hostel_warden"
	GATEPASS_REJECTED_BY_HOD                      GatePassStatus = "rejected_by_hod"
	GATEPASS_PENDING_ACADEMIC_DIRECTOR            GatePassStatus = "pending_academic_director"
	GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_STAFF GatePassStatus = "pending_academic_director_from_staff"
	GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD   GatePassStatus = "pending_academic_director_from_hod"
	GATEPASS_REJECTED_BY_HOSTEL_WARDEN            GatePassStatus = "rejected_by_hostel_warden"
	GATEPASS_APPROVED                             GatePassStatus = "approved"
	GATEPASS_REJECTED_BY_ACADEMIC_DIRECTOR        GatePassStatus = "rejected_by_academic_director"
	GATEPASS_USED                                 GatePassStatus = "used"
	GATEPASS_EXPIRED                              GatePassStatus = "expired"
)

var AcademicDirectorPending = []GatePassStatus{
	GATEPASS_PENDING_ACADEMIC_DIRECTOR,
	GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_STAFF,
	GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD,
}

var AllPending = []GatePassStatus{
	GATEPASS_PENDING_STAFF,
	GATEPASS_PENDING_HOD,
	GATEPASS_PENDING_HOSTEL_WARDEN,
	GATEPASS_PENDING_ACADEMIC_DIRECTOR,
	GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_STAFF,
	GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD,
}

var allStatuses = []GatePassStatus{
	GATEPASS_PENDING_STAFF,
	GATEPASS_APPROVED_BY_STAFF,
	GATEPASS_REJECTED_BY_STAFF,
	GATEPASS_PENDING_HOD,
	GATEPASS_PENDING_HOSTEL_WARDEN,
	GATEPASS_REJECTED_BY_HOD,
	GATEPASS_PENDING_ACADEMIC_DIRECTOR,
	GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_STAFF,
	GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD,
	GATEPASS_REJECTED_BY_HOSTEL_WARDEN,
	GATEPASS_APPROVED,
	GATEPASS_REJECTED_BY_ACADEMIC_DIRECTOR,
	GATEPASS_USED,
	GATEPASS_EXPIRED,
}

// ParseGatePassStatus is case-insensitive; stored values are always the
// lowercase constants above.
func ParseGatePassStatus(raw string) (GatePassStatus, bool) {
	s := GatePassStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, st := range allStatuses {
		if st == s {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether no approver stage can act on the status any more.
// APPROVED is terminal for approvers; only security consumes it.
func (s GatePassStatus) Terminal() bool {
	switch s {
	case GATEPASS_REJECTED_BY_STAFF,
		GATEPASS_REJECTED_BY_HOD,
		GATEPASS_REJECTED_BY_HOSTEL_WARDEN,
		GATEPASS_REJECTED_BY_ACADEMIC_DIRECTOR,
		GATEPASS_APPROVED,
		GATEPASS_USED,
		GATEPASS_EXPIRED:
		return true
	}
	return false
}

func (s GatePassStatus) Pending() bool {
	for _, p := range AllPending {
		if p == s {
			return true
		}
	}
	return false
}

type GatePassType string

const (
	GATEPASS_TYPE_LEAVE      GatePassType = "leave"
	GATEPASS_TYPE_HOME_VISIT GatePassType = "home_visit"
	GATEPASS_TYPE_EMERGENCY  GatePassType = "emergency"
	GATEPASS_TYPE_OFFICIAL   GatePassType = "official"
	GATEPASS_TYPE_OTHER      GatePassType = "other"
)

func ParseGatePassType(raw string) (GatePassType, bool) {
	t := GatePassType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case GATEPASS_TYPE_LEAVE, GATEPASS_TYPE_HOME_VISIT, GATEPASS_TYPE_EMERGENCY, GATEPASS_TYPE_OFFICIAL, GATEPASS_TYPE_OTHER:
		return t, true
	}
	return "", false
}

type BoardingType string

const (
	BOARDING_HOSTELLER   BoardingType = "Hosteller"
	BOARDING_DAY_SCHOLAR BoardingType = "Day Scholar"
	BOARDING_UNKNOWN     BoardingType = ""
)

func ParseBoardingType(raw string) BoardingType {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	switch s {
	case "hosteller", "hostler":
		return BOARDING_HOSTELLER
	case "dayscholar":
		return BOARDING_DAY_SCHOLAR
	}
	return BOARDING_UNKNOWN
}

type Decision string

const (
	DECISION_APPROVE Decision = "approve"
	DECISION_REJECT  Decision = "reject"
)

// ParseDecision also understands the status-style vocabulary older clients
// send, e.g. "approved_by_staff" or "rejected_by_hod".
func ParseDecision(raw string) (Decision, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "approve", s == "approved", strings.HasPrefix(s, "approved_by_"):
		return DECISION_APPROVE, true
	case s == "reject", s == "rejected", strings.HasPrefix(s, "rejected_by_"):
		return DECISION_REJECT, true
	}
	return "", false
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateGatePassRequestBody struct {
	Type        string `json:"type" binding:"required,oneof=leave home_visit emergency official other"`
	Reason      string `json:"reason" binding:"required,max=255"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date" binding:"required,notpast" time_format:"2006-01-02 15:04:05 -07:00"`
	EndDate     string `json:"end_date" binding:"required,gtdate=StartDate" time_format:"2006-01-02 15:04:05 -07:00"`
}

type GatePassDecisionRequestBody struct {
	Decision string `json:"decision,omitempty" binding:"required_without=Status"`
	Status   string `json:"status,omitempty"`
	Comment  string `json:"comment,omitempty" binding:"max=1000"`
}

type SecurityVerificationRequestBody struct {
	Comment string `json:"comment,omitempty" binding:"max=1000"`
}

type VerifyCodeRequestBody struct {
	Code    string `json:"code" binding:"required"`
	Comment string `json:"comment,omitempty"`
}

type GatePassQueryFilters struct {
	Status        string `form:"status,omitempty"`
	RequesterID   uint   `form:"requester_id,omitempty"`
	RequesterType string `form:"requester_type,omitempty"`
	StudentID     uint   `form:"student_id,omitempty"`
	DepartmentID  uint   `form:"department_id,omitempty"`
	From          string `form:"from,omitempty"`
	To            string `form:"to,omitempty"`
}

type MyRequestsQueryFilters struct {
	RequesterType string `form:"requester_type,omitempty"`
}
