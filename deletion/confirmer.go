// SPDX-License-Identifier: GPL-3.0-only

package deletion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deletion-server/commons"
)

type ConfirmResult struct {
	Email string
}

type ConfirmerDeps struct {
	Store   TokenStore
	Deleter AccountDeleter
	Hooks   []Hook
	Clock   Clock
}

type Confirmer struct {
	deps ConfirmerDeps
}

func NewConfirmer(deps ConfirmerDeps) *Confirmer {
	if deps.Clock == nil {
		deps.Clock = realClock{}
	}
	return &Confirmer{deps: deps}
}

// Confirm consumes the token and deletes the account it was issued for.
// It is safe to call concurrently for the same token: only the caller whose
// conditional write lands proceeds to deletion, every other caller gets
// ErrAlreadyUsed.
func (c *Confirmer) Confirm(ctx context.Context, value string) (*ConfirmResult, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}

	token, err := c.deps.Store.FindByToken(ctx, value)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		commons.Logger.Errorf("Failed to look up deletion token: %v", err)
		return nil, err
	}

	if token.Used {
		return nil, ErrAlreadyUsed
	}
	now := c.deps.Clock.Now()
	if token.Expired(now) {
		return nil, ErrExpired
	}

	changed, err := c.deps.Store.MarkUsedIfUnused(ctx, value, now)
	if err != nil {
		commons.Logger.Errorf("Failed to consume deletion token %s: %v", commons.ShortToken(value), err)
		return nil, err
	}
	if !changed {
		commons.Logger.Infof("Deletion token %s consumed concurrently by another request", commons.ShortToken(value))
		return nil, ErrAlreadyUsed
	}

	for _, hook := range c.deps.Hooks {
		if err := hook.AfterConsume(ctx, *token); err != nil {
			commons.Logger.Warnf("Post-consume hook %s failed for user %s (ignored): %v", hook.Name(), token.UserID, err)
		}
	}

	if err := c.deps.Deleter.DeleteUser(ctx, token.UserID); err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			commons.Logger.Errorf("Token %s consumed but deleting user %s failed, reconciliation required: %v",
				commons.ShortToken(value), token.UserID, err)
			return nil, fmt.Errorf("%w: %w", ErrDeletionFailed, err)
		}
		commons.Logger.Warnf("User %s was already absent from the identity store", token.UserID)
	}

	commons.Logger.Infof("Account %s deleted via token %s", token.UserID, commons.ShortToken(value))
	return &ConfirmResult{Email: token.Email}, nil
}
