package email

import (
	"context"
)

// Service delivers account emails. Links are complete URLs.
type Service interface {
	SendVerification(ctx context.Context, to, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}
