package models

import (
	"campusgate/src/types"
	"time"

	"github.com/google/uuid"
)

// GatePassTrail is one audit row per status change, creation included.
type GatePassTrail struct {
	ID         uuid.UUID            `gorm:"primarykey;type:uuid" json:"id"`
	GatePassID uint                 `gorm:"index;not null" json:"gate_pass_id"`
	FromStatus types.GatePassStatus `gorm:"type:varchar(48)" json:"from_status,omitempty"`
	ToStatus   types.GatePassStatus `gorm:"type:varchar(48);not null" json:"to_status"`
	ActorID    uint                 `json:"actor_id"`
	ActorRole  types.Role           `gorm:"type:varchar(32)" json:"actor_role"`
	Comment    *string              `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time            `gorm:"autoCreateTime" json:"created_at"`
}
