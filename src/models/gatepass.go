package models

import (
	"campusgate/src/types"
	"time"
)

type GatePass struct {
	ID            uint                 `gorm:"primarykey" json:"id"`
	RequesterID   uint                 `gorm:"index;not null" json:"requester_id"`
	RequesterType types.RequesterType  `gorm:"type:varchar(16);not null" json:"requester_type"`
	StudentID     *uint                `gorm:"index" json:"student_id,omitempty"`
	DepartmentID  *uint                `gorm:"index" json:"department_id,omitempty"`
	Type          types.GatePassType   `gorm:"type:varchar(32);not null;default:leave" json:"type"`
	Reason        string               `gorm:"size:255;not null" json:"reason"`
	Description   *string              `gorm:"type:text" json:"description,omitempty"`
	StartDate     time.Time            `gorm:"not null" json:"start_date"`
	EndDate       time.Time            `gorm:"not null" json:"end_date"`
	Status        types.GatePassStatus `gorm:"type:varchar(48);index;not null" json:"status"`

	StaffID                 *uint   `json:"staff_id,omitempty"`
	StaffComment            *string `gorm:"type:text" json:"staff_comment,omitempty"`
	HodID                   *uint   `json:"hod_id,omitempty"`
	HodComment              *string `gorm:"type:text" json:"hod_comment,omitempty"`
	HostelWardenID          *uint   `json:"hostel_warden_id,omitempty"`
	HostelWardenComment     *string `gorm:"type:text" json:"hostel_warden_comment,omitempty"`
	AcademicDirectorID      *uint   `json:"academic_director_id,omitempty"`
	AcademicDirectorComment *string `gorm:"type:text" json:"academic_director_comment,omitempty"`
	SecurityID              *uint   `json:"security_id,omitempty"`
	SecurityComment         *string `gorm:"type:text" json:"security_comment,omitempty"`

	CheckoutTime *time.Time `json:"checkout_time,omitempty"`

	types.Timestamps
}

func (g *GatePass) Clone() *GatePass {
	c := *g
	return &c
}
