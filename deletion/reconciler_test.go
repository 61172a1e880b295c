// SPDX-License-Identifier: GPL-3.0-only

package deletion

import (
	"context"
	"errors"
	"testing"
	"time"

	"deletion-server/db/dbtest"
)

func TestReconcilerRetriesConsumedTokens(t *testing.T) {
	store := NewGormTokenStore(dbtest.New(t))
	ctx := context.Background()
	now := newFakeClock().Now()

	seed := []struct{ token, user string }{
		{"dt_1", "present"},
		{"dt_2", "present"},
		{"dt_3", "gone"},
		{"dt_4", "broken"},
		{"dt_5", "unconsumed"},
	}
	for _, s := range seed {
		if err := store.Insert(ctx, newStoredToken(s.token, s.user, now)); err != nil {
			t.Fatalf("insert %s: %v", s.token, err)
		}
		if s.user == "unconsumed" {
			continue
		}
		if _, err := store.MarkUsedIfUnused(ctx, s.token, now.Add(time.Hour)); err != nil {
			t.Fatalf("mark %s: %v", s.token, err)
		}
	}

	deleter := newFakeDeleter()
	deleter.errs["gone"] = ErrUserNotFound
	deleter.errs["broken"] = errors.New("503")
	reconciler := NewReconciler(store, deleter)

	dry, err := reconciler.Run(ctx, now, true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if dry.Scanned != 3 || deleter.count("present") != 0 {
		t.Fatalf("expected dry run to scan 3 users without deleting, got %+v", dry)
	}

	report, err := reconciler.Run(ctx, now, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := ReconcileReport{Scanned: 3, Deleted: 1, AlreadyGone: 1, Failed: 1}
	if report != want {
		t.Fatalf("expected %+v, got %+v", want, report)
	}
	if deleter.count("present") != 1 || deleter.count("unconsumed") != 0 {
		t.Fatalf("unexpected delete calls %v", deleter.calls)
	}

	stored, err := store.FindByToken(ctx, "dt_5")
	if err != nil || stored.Used {
		t.Fatalf("expected unconsumed token untouched, got %+v err=%v", stored, err)
	}
}
