// SPDX-License-Identifier: GPL-3.0-only

package deletion

import (
	"context"
	"time"

	"deletion-server/models"
)

// CredentialVerifier checks a password with end-user privileges only.
type CredentialVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (userID string, err error)
}

// AccountDeleter removes a user with elevated privileges. It returns
// ErrUserNotFound when there is nothing left to delete.
type AccountDeleter interface {
	DeleteUser(ctx context.Context, userID string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// TokenStore is the only place the conditional used=false -> used=true
// write is expressed.
type TokenStore interface {
	Insert(ctx context.Context, token *models.DeletionToken) error
	FindByToken(ctx context.Context, value string) (*models.DeletionToken, error)
	MarkUsedIfUnused(ctx context.Context, value string, now time.Time) (changed bool, err error)
	ListConsumedSince(ctx context.Context, since time.Time) ([]models.DeletionToken, error)
}

// Hook runs after a token is consumed and before the account is deleted.
// Its failure is logged and never affects the confirmation.
type Hook interface {
	Name() string
	AfterConsume(ctx context.Context, token models.DeletionToken) error
}

// Limiter throttles issue requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Clock is an injectable time source to enable deterministic tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}
