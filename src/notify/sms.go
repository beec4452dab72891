package notify

import (
	"campusgate/src/types"
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"
)

type SMSSender interface {
	SendSMS(ctx context.Context, phone string, message string) error
}

// SMSChannel alerts a student's parent when security
// checks the student out. Every other message is ignored.
type SMSChannel struct {
	sender      SMSSender
	countryCode string
	loc         *time.Location
}

func NewSMSChannel(s SMSSender, countryCode string, loc *time.Location) *SMSChannel {
	if countryCode == "" {
		countryCode = "91"
	}
	if loc == nil {
		loc = time.Local
	}
	return &SMSChannel{sender: s, countryCode: strings.TrimPrefix(countryCode, "+"), loc: loc}
}

func (c *SMSChannel) Name() string {
	return "sms"
}

func (c *SMSChannel) Deliver(ctx context.Context, msg *Message) error {
	gp := msg.GatePass
	if msg.Kind != KindOutcome || gp.Status != types.GATEPASS_USED || gp.RequesterType != types.REQUESTER_STUDENT {
		return ErrNotApplicable
	}
	if msg.Recipient.ParentPhone == "" {
		log.Printf("[notify] No parent phone number for student %d, skipping SMS\n", msg.Recipient.ID)
		return ErrNotApplicable
	}
	phone, ok := NormalizePhone(msg.Recipient.ParentPhone, c.countryCode)
	if !ok {
		log.Printf("[notify] Invalid parent phone number for student %d, skipping SMS\n", msg.Recipient.ID)
		return ErrNotApplicable
	}
	at := time.Now()
	if gp.CheckoutTime != nil {
		at = *gp.CheckoutTime
	}
	return c.sender.SendSMS(ctx, phone, ParentExitMessage(msg.Recipient.Name, at.In(c.loc)))
}

func ParentExitMessage(studentName string, at time.Time) string {
	return fmt.Sprintf(
		"IMPORTANT: Your child %s has left the college campus at %s on %s. - College Management",
		studentName,
		at.Format("3:04 PM"),
		at.Format("Jan 2, 2006"),
	)
}

// NormalizePhone returns an E.164 number. Numbers without a leading "+" are
// assumed to be national numbers of countryCode.
func NormalizePhone(raw string, countryCode string) (string, bool) {
	raw = strings.TrimSpace(raw)
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "+") {
		return "+" + digits, len(digits) >= 8
	}
	switch {
	case len(digits) == 10:
		return "+" + countryCode + digits, true
	case strings.HasPrefix(digits, countryCode) && len(digits) >= 10+len(countryCode):
		return "+" + digits, true
	case len(digits) == 11 && digits[0] == '0':
		return "+" + countryCode + digits[1:], true
	}
	return "", false
}
