// SPDX-License-Identifier: GPL-3.0-only

package hooks

import (
	"context"
	"fmt"

	"deletion-server/commons"
	"deletion-server/models"

	"gorm.io/gorm"
)

// SQLFunctionHook calls a database function with the deleted user's id so
// application tables can be cleaned up before the identity disappears.
type SQLFunctionHook struct {
	db    *gorm.DB
	name  string
	param string
}

func NewSQLFunctionHook(db *gorm.DB, name, param string) (*SQLFunctionHook, error) {
	if !commons.IsSQLIdentifier(name) {
		return nil, fmt.Errorf("invalid cleanup function name %q", name)
	}
	if !commons.IsSQLIdentifier(param) {
		return nil, fmt.Errorf("invalid cleanup parameter name %q", param)
	}
	return &SQLFunctionHook{db: db, name: name, param: param}, nil
}

func (h *SQLFunctionHook) Name() string {
	return "sql:" + h.name
}

func (h *SQLFunctionHook) AfterConsume(ctx context.Context, token models.DeletionToken) error {
	stmt := callStatement(h.db.Dialector.Name(), h.name, h.param)
	if err := h.db.WithContext(ctx).Exec(stmt, token.UserID).Error; err != nil {
		return fmt.Errorf("%s: %w", h.name, err)
	}
	commons.Logger.Debugf("Cleanup function %s ran for user %s", h.name, token.UserID)
	return nil
}

// callStatement only splices identifiers that passed IsSQLIdentifier.
func callStatement(dialect, name, param string) string {
	if dialect == "postgres" {
		return fmt.Sprintf("SELECT %s(%s => ?)", name, param)
	}
	return fmt.Sprintf("CALL %s(?)", name)
}
