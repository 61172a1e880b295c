// SPDX-License-Identifier: GPL-3.0-only

package identity

import (
	"context"
	"errors"
	"fmt"

	"deletion-server/crypto"
	"deletion-server/deletion"
	"deletion-server/models"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = deletion.ErrUserNotFound
)

// LocalVerifier checks passwords against the local users table. It never
// writes.
type LocalVerifier struct {
	db     *gorm.DB
	crypto *crypto.Crypto
}

func NewLocalVerifier(db *gorm.DB, c *crypto.Crypto) *LocalVerifier {
	return &LocalVerifier{db: db, crypto: c}
}

func (v *LocalVerifier) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := v.db.WithContext(ctx).Select("id", "password").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if err := v.crypto.VerifyPassword(password, user.Password); err != nil {
		return "", ErrInvalidCredentials
	}
	return user.ID, nil
}

// LocalAdmin hard-deletes users from the local users table.
type LocalAdmin struct {
	db *gorm.DB
}

func NewLocalAdmin(db *gorm.DB) *LocalAdmin {
	return &LocalAdmin{db: db}
}

func (a *LocalAdmin) DeleteUser(ctx context.Context, userID string) error {
	res := a.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
