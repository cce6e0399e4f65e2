package email

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-api/internal/config"
)

var (
	verificationTmpl = template.Must(template.New("verify").Parse(
		`<p>Welcome to the clinic portal.</p><p><a href="{{.}}">Verify your email address</a></p>`))
	resetTmpl = template.Must(template.New("reset").Parse(
		`<p>A password reset was requested for your account.</p><p><a href="{{.}}">Choose a new password</a></p><p>If you did not request this, ignore this email.</p>`))
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendVerification(ctx context.Context, to, link string) error {
	return s.send(ctx, to, "Verify your email", verificationTmpl, link)
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to, link string) error {
	return s.send(ctx, to, "Reset your password", resetTmpl, link)
}

func (s *smtpService) send(ctx context.Context, to, subject string, tmpl *template.Template, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body strings.Builder
	if err := tmpl.Execute(&body, link); err != nil {
		return fmt.Errorf("failed to render %q email: %w", subject, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %q email: %w", subject, err)
	}
	return nil
}
