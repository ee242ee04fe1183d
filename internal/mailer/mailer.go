// Package mailer delivers transactional email for the OTP and slot request
// workflows. Delivery is a blocking call on the request path; callers decide
// whether a failure is fatal (registration, resend) or soft (approval,
// rejection).
package mailer

import "time"

// Mailer sends the application's transactional messages.
type Mailer interface {
	SendOTP(toEmail, code string, validFor time.Duration) error
	SendApproval(toEmail, plateNumber, slotNumber, location string) error
	SendRejection(toEmail, plateNumber, location, reason string) error
}
