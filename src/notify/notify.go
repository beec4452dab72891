package notify

import (
	"campusgate/src/directory"
	"campusgate/src/models"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Notifier is the best-effort side channel of the gate-pass workflow.
// Implementations must not block the caller and never report failures.
type Notifier interface {
	NotifyApprovalPending(ctx context.Context, gp *models.GatePass, approver directory.Person)
	NotifyOutcome(ctx context.Context, gp *models.GatePass, recipient directory.Person)
}

type Kind string

const (
	KindApprovalPending Kind = "approval_pending"
	KindOutcome         Kind = "outcome"
)

// Message carries a snapshot of the gate pass taken after the transition.
type Message struct {
	ID        uuid.UUID
	Kind      Kind
	GatePass  models.GatePass
	Recipient directory.Person
	QueuedAt  time.Time
}

// ErrNotApplicable is returned by Deliver when a channel has nothing to send
// for a message. The dispatcher neither records nor retries it.
var ErrNotApplicable = errors.New("message does not apply to channel")

type Channel interface {
	Name() string
	Deliver(ctx context.Context, msg *Message) error
}

type Recorder interface {
	Record(ctx context.Context, msg *Message, channel string, attempt int, err error)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) NotifyApprovalPending(context.Context, *models.GatePass, directory.Person) {}
func (Nop) NotifyOutcome(context.Context, *models.GatePass, directory.Person)         {}
