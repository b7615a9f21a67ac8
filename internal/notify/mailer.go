package notify

import (
	"context"
	"fmt"

	"github.com/hairloft/salon-platform/internal/booking"
	"github.com/hairloft/salon-platform/pkg/logging"
)

// BookingMailer composes and sends booking lifecycle emails. All sends are
// best-effort; the booking flow never fails because an email did not go out.
type BookingMailer struct {
	sender EmailSender
	logger *logging.Logger
}

// NewBookingMailer creates a mailer. A nil sender disables sending.
func NewBookingMailer(sender EmailSender, logger *logging.Logger) *BookingMailer {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingMailer{sender: sender, logger: logger}
}

// AppointmentBooked sends the booking confirmation.
func (m *BookingMailer) AppointmentBooked(ctx context.Context, email, name string, appt *booking.Appointment) {
	if m == nil || m.sender == nil || email == "" {
		return
	}
	msg := EmailMessage{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Appointment confirmed for %s", appt.Date),
		Body: fmt.Sprintf(
			"Your appointment is confirmed for %s from %s to %s.\nTotal: $%.2f (incl. $%.2f tax).",
			appt.Date, appt.BookedTime.From, appt.BookedTime.To,
			cents(appt.Price.TotalCents), cents(appt.Price.TaxCents)),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		m.logger.Warn("booking confirmation email failed", "appointment_id", appt.ID, "error", err)
	}
}

// AppointmentCancelled sends the cancellation notice, mentioning the fee when
// one was charged.
func (m *BookingMailer) AppointmentCancelled(ctx context.Context, email, name string, appt *booking.Appointment, feeCents int64) {
	if m == nil || m.sender == nil || email == "" {
		return
	}
	body := fmt.Sprintf("Your appointment on %s at %s has been cancelled.", appt.Date, appt.BookedTime.From)
	if feeCents > 0 {
		body += fmt.Sprintf("\nA late-cancellation fee of $%.2f was charged.", cents(feeCents))
	}
	msg := EmailMessage{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Appointment cancelled for %s", appt.Date),
		Body:    body,
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		m.logger.Warn("cancellation email failed", "appointment_id", appt.ID, "error", err)
	}
}

func cents(c int64) float64 {
	return float64(c) / 100
}
