// SPDX-License-Identifier: GPL-3.0-only

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"deletion-server/commons"
)

type gotrueClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newGoTrueClient(baseURL, apiKey string) gotrueClient {
	return gotrueClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c gotrueClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordGrantResponse struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

// GoTrueVerifier re-authenticates with the anon key, so it can do nothing a
// signed-out browser could not.
type GoTrueVerifier struct {
	client gotrueClient
}

func NewGoTrueVerifier(baseURL, anonKey string) *GoTrueVerifier {
	return &GoTrueVerifier{client: newGoTrueClient(baseURL, anonKey)}
}

func (v *GoTrueVerifier) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	resp, err := v.client.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password",
		passwordGrantRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return "", ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("identity password grant failed: %s", resp.Status)
	}

	var out passwordGrantResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode identity response: %w", err)
	}
	if out.User.ID == "" {
		return "", ErrInvalidCredentials
	}
	return out.User.ID, nil
}

// GoTrueAdmin deletes users with the service role key.
type GoTrueAdmin struct {
	client gotrueClient
}

func NewGoTrueAdmin(baseURL, serviceRoleKey string) *GoTrueAdmin {
	return &GoTrueAdmin{client: newGoTrueClient(baseURL, serviceRoleKey)}
}

func (a *GoTrueAdmin) DeleteUser(ctx context.Context, userID string) error {
	commons.Logger.Debugf("Deleting identity user: %s", userID)
	resp, err := a.client.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		commons.Logger.Infof("Identity user deleted: %s", userID)
		return nil
	case http.StatusNotFound:
		return ErrUserNotFound
	default:
		return fmt.Errorf("failed to delete identity user: %s", resp.Status)
	}
}
