// SPDX-License-Identifier: GPL-3.0-only

package deletion

import "errors"

// Every error returned by Issuer and Confirmer wraps exactly one of these.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("invalid credentials")
	ErrRateLimited    = errors.New("too many deletion requests")
	ErrInvalidToken   = errors.New("invalid deletion token")
	ErrExpired        = errors.New("deletion token expired")
	ErrAlreadyUsed    = errors.New("deletion token already used")
	ErrPersistence    = errors.New("failed to persist deletion token")
	ErrStore          = errors.New("deletion token store unavailable")
	ErrDelivery       = errors.New("failed to deliver confirmation email")
	ErrDeletionFailed = errors.New("account deletion failed after token was consumed")
)

var (
	// ErrTokenNotFound is returned by TokenStore.FindByToken when no row matches.
	ErrTokenNotFound = errors.New("deletion token not found")
	// ErrUserNotFound is returned by AccountDeleter when the account is already gone.
	ErrUserNotFound = errors.New("user not found")
)
