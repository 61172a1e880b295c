// SPDX-License-Identifier: GPL-3.0-only

package deletion

import (
	"context"
	"errors"
	"time"

	"deletion-server/commons"
)

type ReconcileReport struct {
	Scanned     int
	Deleted     int
	AlreadyGone int
	Failed      int
}

// Reconciler retries identity deletion for every consumed token. Token rows
// are only read, so it can run at any time next to live traffic.
type Reconciler struct {
	store   TokenStore
	deleter AccountDeleter
}

func NewReconciler(store TokenStore, deleter AccountDeleter) *Reconciler {
	return &Reconciler{store: store, deleter: deleter}
}

func (r *Reconciler) Run(ctx context.Context, since time.Time, dryRun bool) (ReconcileReport, error) {
	var report ReconcileReport

	tokens, err := r.store.ListConsumedSince(ctx, since)
	if err != nil {
		return report, err
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token.UserID]; ok {
			continue
		}
		seen[token.UserID] = struct{}{}
		report.Scanned++

		if dryRun {
			commons.Logger.Infof("[dry-run] would ensure user %s is deleted (token %s)", token.UserID, commons.ShortToken(token.Token))
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := r.deleter.DeleteUser(ctx, token.UserID)
		switch {
		case err == nil:
			report.Deleted++
			commons.Logger.Infof("Reconciled leftover account %s", token.UserID)
		case errors.Is(err, ErrUserNotFound):
			report.AlreadyGone++
		default:
			report.Failed++
			commons.Logger.Errorf("Reconciliation failed for user %s: %v", token.UserID, err)
		}
	}

	return report, nil
}
