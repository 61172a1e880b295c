// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"context"
	"fmt"

	"deletion-server/commons"
)

type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewEmailSender builds the sender for the configured provider.
func NewEmailSender(cfg commons.MailConfig) (EmailSender, error) {
	from, err := commons.ParseFromAddress(cfg.From)
	if err != nil {
		return nil, err
	}

	provider := NotificationProviders(cfg.Provider)
	commons.Logger.Debugf("Configuring email notifications:\n- provider=%s", provider)

	switch provider {
	case SMTP:
		return NewSMTPMailer(from, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword), nil
	case Resend:
		return NewResendMailer(from, cfg.ResendAPIKey, cfg.ResendAPIURL), nil
	case Mock, "":
		commons.Logger.Warn("Mock email notifications enabled, emails will only be logged")
		return MockMailer{}, nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", provider)
	}
}
