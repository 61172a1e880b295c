// SPDX-License-Identifier: GPL-3.0-only

package notifications

type NotificationProviders string

const (
	SMTP   NotificationProviders = "smtp"
	Resend NotificationProviders = "resend"
	Mock   NotificationProviders = "mock"
)

type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type ResendEmailResponse struct {
	ID string `json:"id"`
}

type ResendErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}
