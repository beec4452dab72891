package notify

import (
	"campusgate/src/lib"
	"campusgate/src/types"
	"context"
	"fmt"
	"html"
	"strings"
)

type Mailer interface {
	Send(ctx context.Context, input *lib.SendMailInput) error
}

type MailChannel struct {
	mailer   Mailer
	from     string
	fromName string
	appHost  string
}

func NewMailChannel(m Mailer, from, fromName, appHost string) *MailChannel {
	if fromName == "" {
		fromName = "noreply"
	}
	return &MailChannel{mailer: m, from: from, fromName: fromName, appHost: appHost}
}

func (c *MailChannel) Name() string {
	return "email"
}

func (c *MailChannel) Deliver(ctx context.Context, msg *Message) error {
	if msg.Recipient.Email == "" {
		return ErrNotApplicable
	}
	subject, body := RenderEmail(msg, c.appHost)
	return c.mailer.Send(ctx, &lib.SendMailInput{
		From:     c.from,
		FromName: c.fromName,
		To:       []string{msg.Recipient.Email},
		Subject:  subject,
		Body:     body,
		Html:     true,
	})
}

func outcomeWord(s types.GatePassStatus) string {
	switch s {
	case types.GATEPASS_APPROVED:
		return "has been APPROVED"
	case types.GATEPASS_USED:
		return "has been used for check-out"
	case types.GATEPASS_REJECTED_BY_STAFF,
		types.GATEPASS_REJECTED_BY_HOD,
		types.GATEPASS_REJECTED_BY_HOSTEL_WARDEN,
		types.GATEPASS_REJECTED_BY_ACADEMIC_DIRECTOR:
		return "has been REJECTED"
	}
	return "has been updated"
}

func pendingLine(s types.GatePassStatus) string {
	switch s {
	case types.GATEPASS_PENDING_STAFF:
		return "requires your approval"
	case types.GATEPASS_PENDING_HOD:
		return "has been approved by staff and now requires your approval"
	case types.GATEPASS_PENDING_HOSTEL_WARDEN:
		return "has been approved by HOD and now requires your approval"
	case types.GATEPASS_PENDING_ACADEMIC_DIRECTOR,
		types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_STAFF,
		types.GATEPASS_PENDING_ACADEMIC_DIRECTOR_FROM_HOD:
		return "now requires your final approval"
	}
	return "requires your attention"
}

func commentLine(label string, c *string) string {
	if c == nil || strings.TrimSpace(*c) == "" {
		return ""
	}
	return fmt.Sprintf("<p><strong>%s Comment:</strong> %s</p>", label, html.EscapeString(*c))
}

// RenderEmail returns the subject and HTML body for a message. Free text
// from requesters and approvers is HTML-escaped.
func RenderEmail(msg *Message, appHost string) (string, string) {
	gp := msg.GatePass
	dates := fmt.Sprintf("%s to %s", gp.StartDate.Format("02 Jan 2006"), gp.EndDate.Format("02 Jan 2006"))
	dept := "-"
	if gp.DepartmentID != nil {
		dept = fmt.Sprintf("Department #%d", *gp.DepartmentID)
	}
	link := ""
	if appHost != "" {
		link = fmt.Sprintf(`<p>Open the request <a href="%s/gate-passes/%d">here</a>.</p>`, html.EscapeString(appHost), gp.ID)
	}

	if msg.Kind == KindApprovalPending {
		subject := fmt.Sprintf("Gate Pass #%d Pending Your Approval", gp.ID)
		body := fmt.Sprintf(`
			<h2>Gate Pass Approval Required</h2>
			<p>Dear %s,</p>
			<p>A gate pass (ID: %d) %s.</p>
			<p><strong>Requester:</strong> %s #%d</p>
			<p><strong>Department:</strong> %s</p>
			<p><strong>Type:</strong> %s</p>
			<p><strong>Reason:</strong> %s</p>
			<p><strong>Dates:</strong> %s</p>
			%s%s%s
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			html.EscapeString(msg.Recipient.Name),
			gp.ID,
			pendingLine(gp.Status),
			gp.RequesterType,
			gp.RequesterID,
			dept,
			html.EscapeString(string(gp.Type)),
			html.EscapeString(gp.Reason),
			dates,
			commentLine("Staff", gp.StaffComment),
			commentLine("HOD", gp.HodComment),
			link,
		)
		return subject, body
	}

	subject := fmt.Sprintf("Gate Pass #%d Status Update", gp.ID)
	body := fmt.Sprintf(`
		<h2>Gate Pass Status Update</h2>
		<p>Dear %s,</p>
		<p>Your gate pass request (ID: %d) %s.</p>
		<p><strong>Type:</strong> %s</p>
		<p><strong>Reason:</strong> %s</p>
		<p><strong>Dates:</strong> %s</p>
		<p><strong>Current Status:</strong> %s</p>
		%s%s%s%s%s
		<p>This is a system-generated message. Do not reply to this email.</p>
		`,
		html.EscapeString(msg.Recipient.Name),
		gp.ID,
		outcomeWord(gp.Status),
		html.EscapeString(string(gp.Type)),
		html.EscapeString(gp.Reason),
		dates,
		gp.Status,
		commentLine("Staff", gp.StaffComment),
		commentLine("HOD", gp.HodComment),
		commentLine("Hostel Warden", gp.HostelWardenComment),
		commentLine("Academic Director", gp.AcademicDirectorComment),
		link,
	)
	return subject, body
}
