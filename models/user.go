// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var AllModels []any

// User is the local identity store record, used when no external identity
// provider is configured.
type User struct {
	ID        string `gorm:"size:36;primaryKey"`
	Email     string `gorm:"size:320;not null;uniqueIndex"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func init() {
	AllModels = append(AllModels, &User{})
}
