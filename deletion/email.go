// SPDX-License-Identifier: GPL-3.0-only

package deletion

import (
	"fmt"
	"net/url"
	"strconv"

	"deletion-server/notifications"
)

const (
	confirmSubject  = "Confirm your account deletion"
	confirmTemplate = "delete-confirm"
)

// LinkBuilder turns a token into the link the user clicks to confirm.
type LinkBuilder struct {
	BaseURL string
	Path    string
}

func (b LinkBuilder) Build(token string) (string, error) {
	u, err := url.Parse(b.BaseURL + b.Path)
	if err != nil {
		return "", fmt.Errorf("invalid confirmation link base: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func renderConfirmEmail(link string, nickname *string) (string, error) {
	vars := map[string]any{
		"confirm_link":     link,
		"expiration_hours": strconv.Itoa(int(TokenTTL.Hours())),
	}
	if nickname != nil && *nickname != "" {
		vars["name"] = *nickname
	}
	return notifications.RenderTemplate(confirmTemplate, vars)
}
