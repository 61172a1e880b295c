// SPDX-License-Identifier: GPL-3.0-only

package handlers

// swagger:model IssueRequest
type IssueRequest struct {
	// Email address of the account to delete
	// required: true
	Email string `json:"email" example:"user@example.com"`
	// Current password, re-entered to prove ownership
	// required: true
	Password string `json:"password" example:"MySecretPassword@123"`
	// Optional free-text reason for leaving
	Reason *string `json:"reason" example:"No longer using the service"`
	// Optional name used to greet the user in the email
	Nickname *string `json:"nickname" example:"Jane"`
}

// swagger:model ConfirmRequest
type ConfirmRequest struct {
	// Token from the confirmation link
	// required: true
	Token string `json:"token" query:"token" example:"dt_3f2a..."`
}

// swagger:model OKResponse
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

// swagger:model ConfirmResponse
type ConfirmResponse struct {
	OK bool `json:"ok" example:"true"`
	// Email snapshot of the deleted account
	Email string `json:"email" example:"user@example.com"`
}
