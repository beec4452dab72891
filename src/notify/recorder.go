package notify

import (
	"campusgate/src/models"
	"campusgate/src/types"
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecorder keeps one notifications row per delivery attempt.
type GormRecorder struct {
	db *gorm.DB
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) Record(ctx context.Context, msg *Message, channel string, attempt int, err error) {
	status := "sent"
	var errMsg *string
	if err != nil {
		status = "failed"
		e := err.Error()
		errMsg = &e
	}
	recipient := msg.Recipient.Email
	if channel == "sms" {
		recipient = msg.Recipient.ParentPhone
	}
	row := models.Notification{
		ID:              uuid.New(),
		ReferenceSource: "gate_pass",
		ReferenceValue:  fmt.Sprintf("%d", msg.GatePass.ID),
		ReferenceBody: &types.JSONB{
			"message_id": msg.ID.String(),
			"kind":       string(msg.Kind),
			"status":     string(msg.GatePass.Status),
		},
		Title:     string(msg.Kind),
		Recipient: recipient,
		Channel:   channel,
		Status:    status,
		Attempt:   attempt,
		Error:     errMsg,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("[notify] Error saving Notification for gate pass %d: %s\n", msg.GatePass.ID, err.Error())
	}
}
