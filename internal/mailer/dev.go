package mailer

import (
	"log/slog"
	"time"
)

// DevMailer logs messages instead of delivering them. Used when no SMTP host
// is configured and in development.
type DevMailer struct {
	Logger *slog.Logger
}

func (d *DevMailer) SendOTP(toEmail, code string, validFor time.Duration) error {
	d.Logger.Info("dev mailer: OTP email",
		slog.String("to", toEmail),
		slog.String("code", code),
		slog.Duration("valid_for", validFor),
	)
	return nil
}

func (d *DevMailer) SendApproval(toEmail, plateNumber, slotNumber, location string) error {
	d.Logger.Info("dev mailer: approval email",
		slog.String("to", toEmail),
		slog.String("plate_number", plateNumber),
		slog.String("slot_number", slotNumber),
		slog.String("location", location),
	)
	return nil
}

func (d *DevMailer) SendRejection(toEmail, plateNumber, location, reason string) error {
	d.Logger.Info("dev mailer: rejection email",
		slog.String("to", toEmail),
		slog.String("plate_number", plateNumber),
		slog.String("location", location),
		slog.String("reason", reason),
	)
	return nil
}
