package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/authgate-backend/internal/models"
)

// Service renders and sends every account notification.
type Service struct {
	sender   Sender
	appName  string
	otpTTL   time.Duration
	resetTTL time.Duration
}

func NewService(sender Sender, appName string, otpTTL, resetTTL time.Duration) *Service {
	return &Service{sender: sender, appName: appName, otpTTL: otpTTL, resetTTL: resetTTL}
}

func (s *Service) SendVerificationCode(ctx context.Context, acc *models.Account, code string) error {
	return s.send(ctx, acc, "verification", "Verify your email address", templateData{
		Code:     code,
		Validity: humanDuration(s.otpTTL),
	})
}

func (s *Service) SendWelcome(ctx context.Context, acc *models.Account) error {
	return s.send(ctx, acc, "welcome", "Welcome to "+s.appName, templateData{})
}

func (s *Service) SendPasswordReset(ctx context.Context, acc *models.Account, resetURL string) error {
	return s.send(ctx, acc, "reset", "Reset your password", templateData{
		Link:     resetURL,
		Validity: humanDuration(s.resetTTL),
	})
}

func (s *Service) SendPasswordResetSuccess(ctx context.Context, acc *models.Account) error {
	return s.send(ctx, acc, "reset_success", "Your password has been reset", templateData{})
}

func (s *Service) SendPasswordChanged(ctx context.Context, acc *models.Account) error {
	return s.send(ctx, acc, "password_changed", "Your password was changed", templateData{})
}

func (s *Service) send(ctx context.Context, acc *models.Account, tmpl, subject string, data templateData) error {
	data.AppName = s.appName
	data.Name = displayName(acc)

	html, text, err := render(tmpl, data)
	if err != nil {
		return fmt.Errorf("render %s email: %w", tmpl, err)
	}
	return s.sender.Send(ctx, Message{
		To:      acc.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
}

func displayName(acc *models.Account) string {
	if acc.FullName != "" {
		return acc.FullName
	}
	if acc.UserName != "" {
		return acc.UserName
	}
	return "there"
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d >= time.Minute:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	default:
		return d.String()
	}
}
