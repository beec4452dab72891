package models

import (
	"campusgate/src/types"

	"github.com/google/uuid"
)

// Notification is the delivery log of a gate-pass email or SMS.
type Notification struct {
	ID              uuid.UUID    `gorm:"primarykey;type:uuid" json:"id"`
	ReferenceSource string       `json:"ref_src"`
	ReferenceValue  string       `gorm:"index" json:"ref_value"`
	ReferenceBody   *types.JSONB `gorm:"type:jsonb" json:"ref_body"`
	Title           string       `json:"title"`
	Recipient       string       `json:"recipient"`
	Channel         string       `json:"channel"`
	Status          string       `json:"status"`
	Attempt         int          `json:"attempt"`
	Error           *string      `gorm:"type:text" json:"error,omitempty"`

	types.Timestamps
}
