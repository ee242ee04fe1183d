package mailer

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTPMailer sends mail through a plain SMTP relay. With an empty user it
// speaks unauthenticated SMTP, which matches local catch-all servers such as
// Mailpit on port 1025.
type SMTPMailer struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

// NewSMTPMailer creates an SMTPMailer for the given relay.
func NewSMTPMailer(host string, port int, from, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		Host: strings.TrimSpace(host),
		Port: port,
		From: strings.TrimSpace(from),
		User: strings.TrimSpace(user),
		Pass: strings.TrimSpace(pass),
	}
}

func (s *SMTPMailer) send(toEmail, subject, text, html string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	var buf bytes.Buffer
	boundary := "mixed-boundary"
	fmt.Fprintf(&buf, "From: %s\r\n", s.From)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	// text part
	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", text)

	// html part
	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", html)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	// SendMail upgrades to STARTTLS when the server advertises it.
	return smtp.SendMail(addr, auth, s.From, []string{toEmail}, buf.Bytes())
}

// SendOTP emails a one-time passcode.
func (s *SMTPMailer) SendOTP(toEmail, code string, validFor time.Duration) error {
	subject := "Your ParkHub verification code"
	minutes := int(validFor.Minutes())
	text := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes)
	html := fmt.Sprintf(`<p>Your verification code is <b>%s</b>.</p>
        <p>It expires in %d minutes.</p>`, code, minutes)
	return s.send(toEmail, subject, text, html)
}

// SendApproval notifies a vehicle owner that a slot was assigned.
func (s *SMTPMailer) SendApproval(toEmail, plateNumber, slotNumber, location string) error {
	subject := "Your parking slot request was approved"
	text := fmt.Sprintf("Your request for vehicle %s was approved. Slot %s at %s is reserved for you.",
		plateNumber, slotNumber, location)
	html := fmt.Sprintf(`<p>Your request for vehicle <b>%s</b> was approved.</p>
        <p>Slot <b>%s</b> at %s is reserved for you.</p>`, plateNumber, slotNumber, location)
	return s.send(toEmail, subject, text, html)
}

// SendRejection notifies a vehicle owner that their request was rejected.
func (s *SMTPMailer) SendRejection(toEmail, plateNumber, location, reason string) error {
	subject := "Your parking slot request was rejected"
	text := fmt.Sprintf("Your request for vehicle %s (area: %s) was rejected. Reason: %s",
		plateNumber, location, reason)
	html := fmt.Sprintf(`<p>Your request for vehicle <b>%s</b> (area: %s) was rejected.</p>
        <p>Reason: %s</p>`, plateNumber, location, reason)
	return s.send(toEmail, subject, text, html)
}
