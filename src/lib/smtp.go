package lib

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"
)

type SendMailInput struct {
	From     string   `json:"from"`
	FromName string   `json:"from-name"`
	To       []string `json:"to"`
	Cc       []string `json:"cc,omitempty"`
	Bcc      []string `json:"bcc,omitempty"`
	ReplyTo  string   `json:"reply-to,omitempty"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Html     bool     `json:"html"`
}

func smtpPort() int {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		return 587
	}
	return port
}

func GetSMTPClient() (*mail.Client, error) {
	switch os.Getenv("SMTP_PROVIDER") {
	case "sendgrid":
		return SMTPNewSendGrid()
	case "gmail":
		return SMTPNewGmail()
	}
	return SMTPNewDefault()
}

func SMTPNewDefault() (*mail.Client, error) {
	return newSMTPClient(os.Getenv("SMTP_HOST"), os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
}

func SMTPNewSendGrid() (*mail.Client, error) {
	return newSMTPClient("smtp.sendgrid.net", os.Getenv("SENDGRID_SMTP_USER"), os.Getenv("SENDGRID_API_KEY"))
}

func SMTPNewGmail() (*mail.Client, error) {
	return newSMTPClient("smtp.gmail.com", os.Getenv("GMAIL_USERNAME"), os.Getenv("GMAIL_PASSWORD"))
}

func newSMTPClient(host, user, pass string) (*mail.Client, error) {
	c, err := mail.NewClient(
		host,
		mail.WithPort(smtpPort()),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(pass),
	)
	if err != nil {
		log.Printf("[SMTP] Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return c, nil
}

// NewMailMessage builds the go-mail message for input. Invalid optional
// addresses are logged and skipped.
func NewMailMessage(input *SendMailInput) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(input.FromName, input.From); err != nil {
		log.Printf("[SMTP] Failed to set From address: %s\n", err.Error())
		return nil, err
	}
	if err := msg.To(input.To...); err != nil {
		log.Printf("[SMTP] Failed to set To address: %s\n", err.Error())
		return nil, err
	}
	if input.ReplyTo != "" {
		if err := msg.ReplyTo(input.ReplyTo); err != nil {
			log.Printf("[SMTP] Failed to set Reply-To address: %s\n", err.Error())
		}
	}
	if len(input.Cc) > 0 {
		if err := msg.Cc(input.Cc...); err != nil {
			log.Printf("[SMTP] Failed to set Cc address: %s\n", err.Error())
		}
	}
	if len(input.Bcc) > 0 {
		if err := msg.Bcc(input.Bcc...); err != nil {
			log.Printf("[SMTP] Failed to set Bcc address: %s\n", err.Error())
		}
	}
	msg.Subject(input.Subject)
	if input.Html {
		msg.SetBodyString(mail.TypeTextHTML, input.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, input.Body)
	}
	return msg, nil
}

func SendMail(ctx context.Context, input *SendMailInput) error {
	msg, err := NewMailMessage(input)
	if err != nil {
		return err
	}
	c, err := GetSMTPClient()
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}
