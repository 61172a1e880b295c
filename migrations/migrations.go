// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"fmt"

	"deletion-server/models"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "001_create_users",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.User{}); err != nil {
					return fmt.Errorf("failed to create users table: %w", err)
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.User{})
			},
		},
		{
			ID: "002_create_delete_tokens",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.DeletionToken{}); err != nil {
					return fmt.Errorf("failed to create delete_tokens table: %w", err)
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.DeletionToken{})
			},
		},
	}
}
