package models

import (
	"campusgate/src/types"
)

type User struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `json:"name,omitempty"`
	Email         string          `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone         *string         `json:"phone,omitempty"`
	Role          string          `gorm:"index" json:"role,omitempty"`
	DepartmentID  *uint           `gorm:"index" json:"department_id,omitempty"`
	EmailVerified bool            `json:"email_verified,omitempty"`
	PhoneVerified bool            `json:"phone_verified,omitempty"`
	Metadata      *types.JSONB    `gorm:"type:jsonb" json:"metadata,omitempty"`
	Department    *Department     `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Boarding      *BoardingDetail `gorm:"foreignKey:UserID" json:"boarding,omitempty"`

	types.Timestamps
}

type Department struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
	Code string `json:"code,omitempty"`

	types.Timestamps
}

// BoardingDetail holds a student's hosteller/day-scholar status and the
// parent contact used for exit alerts.
type BoardingDetail struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	UserID       uint    `gorm:"uniqueIndex" json:"user_id"`
	Type         string  `json:"type"`
	ParentNumber *string `json:"parent_number,omitempty"`

	types.Timestamps
}
