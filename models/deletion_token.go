// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

// DeletionToken is a single-use account deletion confirmation. Rows are kept
// after use as an audit trail and are only ever updated by the conditional
// used=false -> used=true transition.
type DeletionToken struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"size:255;not null;uniqueIndex"`
	UserID    string    `gorm:"size:64;not null;index"`
	Email     string    `gorm:"size:320;not null"`
	Reason    *string   `gorm:"type:text;default:null"`
	Nickname  *string   `gorm:"size:255;default:null"`
	IP        *string   `gorm:"size:64;default:null"`
	UserAgent *string   `gorm:"type:text;default:null"`
	Used      bool      `gorm:"not null;default:false;index"`
	UsedAt    *time.Time
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (DeletionToken) TableName() string {
	return "delete_tokens"
}

// Expired reports whether the token is past its expiry at now.
func (t DeletionToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func init() {
	AllModels = append(AllModels, &DeletionToken{})
}
