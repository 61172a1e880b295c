// SPDX-License-Identifier: GPL-3.0-only

package deletion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deletion-server/commons"
	"deletion-server/crypto"
	"deletion-server/models"
)

// TokenTTL is how long a deletion token stays confirmable.
const TokenTTL = 24 * time.Hour

type IssueRequest struct {
	Email     string
	Password  string
	Reason    *string
	Nickname  *string
	IP        *string
	UserAgent *string
}

type IssuerDeps struct {
	Verifier CredentialVerifier
	Store    TokenStore
	Mailer   Mailer
	Links    LinkBuilder
	// Limiter is optional.
	Limiter Limiter
	Clock   Clock
}

type Issuer struct {
	deps IssuerDeps
}

func NewIssuer(deps IssuerDeps) *Issuer {
	if deps.Clock == nil {
		deps.Clock = realClock{}
	}
	return &Issuer{deps: deps}
}

// Issue re-authenticates the requester, stores a fresh token and mails the
// confirmation link. The returned token is non-nil whenever the row was
// stored, including when delivery fails with ErrDelivery.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (*models.DeletionToken, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	if i.deps.Limiter != nil {
		allowed, err := i.deps.Limiter.Allow(ctx, "issue:"+email)
		switch {
		case err != nil:
			commons.Logger.Warnf("Issue limiter unavailable, allowing request: %v", err)
		case !allowed:
			commons.Logger.Warn("Deletion request rate limited")
			return nil, ErrRateLimited
		}
	}

	userID, err := i.deps.Verifier.VerifyPassword(ctx, email, req.Password)
	if err != nil {
		commons.Logger.Warnf("Re-authentication failed for deletion request: %v", err)
		return nil, ErrUnauthorized
	}

	value, err := crypto.GenerateRandomString("dt_", 32, "hex")
	if err != nil {
		return nil, fmt.Errorf("%w: generate token: %w", ErrPersistence, err)
	}

	now := i.deps.Clock.Now()
	token := &models.DeletionToken{
		Token:     value,
		UserID:    userID,
		Email:     email,
		Reason:    nonEmpty(req.Reason),
		Nickname:  nonEmpty(req.Nickname),
		IP:        nonEmpty(req.IP),
		UserAgent: nonEmpty(req.UserAgent),
		Used:      false,
		CreatedAt: now,
		ExpiresAt: now.Add(TokenTTL),
	}
	if err := i.deps.Store.Insert(ctx, token); err != nil {
		commons.Logger.Errorf("Failed to store deletion token for user %s: %v", userID, err)
		return nil, err
	}

	link, err := i.deps.Links.Build(token.Token)
	if err != nil {
		return token, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	body, err := renderConfirmEmail(link, token.Nickname)
	if err != nil {
		return token, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	if err := i.deps.Mailer.Send(ctx, email, confirmSubject, body); err != nil {
		commons.Logger.Errorf("Deletion token %s stored but email delivery failed: %v", commons.ShortToken(token.Token), err)
		return token, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	commons.Logger.Infof("Deletion token %s issued for user %s", commons.ShortToken(token.Token), userID)
	return token, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
