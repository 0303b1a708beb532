package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/rusdhi-de/clinic-api/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, to string) error
	SendBookingConfirmation(ctx context.Context, to, doctorName string, start, end time.Time) error
}

// NewService returns an SMTP-backed sender, or a noop one when no SMTP
// host is configured.
func NewService(cfg config.SMTPConfig) Service {
	if cfg.Host == "" {
		return &noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func (s *smtpService) SendWelcome(_ context.Context, to string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Welcome to the clinic")
	m.SetBody("text/plain", "Your registration is complete. You can now log in and book appointments.")
	return s.dialer.DialAndSend(m)
}

func (s *smtpService) SendBookingConfirmation(_ context.Context, to, doctorName string, start, end time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Appointment confirmed")
	m.SetBody("text/plain", fmt.Sprintf(
		"Your appointment with %s is confirmed for %s until %s.",
		doctorName,
		start.Format("Mon, 02 Jan 2006 15:04"),
		end.Format("15:04"),
	))
	return s.dialer.DialAndSend(m)
}

type noopService struct{}

func (n *noopService) SendWelcome(context.Context, string) error { return nil }

func (n *noopService) SendBookingConfirmation(context.Context, string, string, time.Time, time.Time) error {
	return nil
}
