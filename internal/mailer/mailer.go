package mailer

import (
	"context"

	"app/internal/logging"
)

// 開発用。実際に送らず、リンクをログに出すだけ
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to string, resetLink string) error {
	logging.FromContext(ctx).Info("password reset mail",
		"to", to,
		"link", resetLink,
	)
	return nil
}
