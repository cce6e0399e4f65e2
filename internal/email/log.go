package email

import (
	"context"

	"github.com/rs/zerolog/log"
)

// logService writes emails to the log instead of sending them. Used when
// SMTP is disabled.
type logService struct{}

func NewLogService() Service {
	return logService{}
}

func (logService) SendVerification(ctx context.Context, to, link string) error {
	log.Info().Str("to", to).Str("link", link).Msg("verification email")
	return nil
}

func (logService) SendPasswordReset(ctx context.Context, to, link string) error {
	log.Info().Str("to", to).Str("link", link).Msg("password reset email")
	return nil
}
