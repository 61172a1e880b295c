// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"time"

	"deletion-server/commons"

	"gopkg.in/gomail.v2"
)

// MockMailer logs messages instead of sending them.
type MockMailer struct{}

func (MockMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	commons.Logger.Info("=== MOCK EMAIL NOTIFICATION ===")
	commons.Logger.Infof("To: %s", to)
	commons.Logger.Infof("Subject: %s", subject)
	commons.Logger.Debugf("Body:\n%s", PlainText(htmlBody))
	commons.Logger.Info("=== EMAIL MOCK COMPLETE ===")
	return nil
}

type SMTPMailer struct {
	from   *mail.Address
	dialer *gomail.Dialer
}

func NewSMTPMailer(from *mail.Address, host string, port int, username, password string) *SMTPMailer {
	dialer := gomail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: false,
	}
	return &SMTPMailer{from: from, dialer: dialer}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	commons.Logger.Debug("Sending email via SMTP")

	message := gomail.NewMessage()
	message.SetHeader("From", message.FormatAddress(m.from.Address, m.from.Name))
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", PlainText(htmlBody))
	message.AddAlternative("text/html", htmlBody)

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	commons.Logger.Info("Email sent successfully via SMTP")
	return nil
}

type ResendMailer struct {
	from       string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewResendMailer(from *mail.Address, apiKey, baseURL string) *ResendMailer {
	return &ResendMailer{
		from:       from.String(),
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	commons.Logger.Debug("Sending email via Resend")

	payload, err := json.Marshal(ResendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
		Text:    PlainText(htmlBody),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ResendErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("email send failed: %d %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("email send failed: %d %s", resp.StatusCode, string(body))
	}

	var out ResendEmailResponse
	if err := json.Unmarshal(body, &out); err == nil && out.ID != "" {
		commons.Logger.Infof("Email accepted by Resend: id=%s", out.ID)
	}
	return nil
}
