// SPDX-License-Identifier: GPL-3.0-only

package deletion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type confirmFixture struct {
	*issueFixture
	deleter   *fakeDeleter
	hook      *fakeHook
	confirmer *Confirmer
}

func newConfirmFixture(t *testing.T) *confirmFixture {
	t.Helper()
	f := &confirmFixture{
		issueFixture: newIssueFixture(t),
		deleter:      newFakeDeleter(),
		hook:         &fakeHook{},
	}
	f.confirmer = NewConfirmer(ConfirmerDeps{
		Store:   f.store,
		Deleter: f.deleter,
		Hooks:   []Hook{f.hook},
		Clock:   f.clock,
	})
	return f
}

func (f *confirmFixture) issue(t *testing.T) string {
	t.Helper()
	token, err := f.issuer.Issue(context.Background(), IssueRequest{Email: "user@example.com", Password: "Correct#Horse1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token.Token
}

func TestConfirmConsumesOnceAndDeletes(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()
	value := f.issue(t)
	f.clock.t = f.clock.t.Add(time.Hour)

	res, err := f.confirmer.Confirm(ctx, value)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.Email != "user@example.com" {
		t.Fatalf("expected stored email, got %s", res.Email)
	}

	stored, err := f.store.FindByToken(ctx, value)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !stored.Used || stored.UsedAt == nil || !stored.UsedAt.Equal(f.clock.Now()) {
		t.Fatalf("expected token consumed at %v, got used=%v used_at=%v", f.clock.Now(), stored.Used, stored.UsedAt)
	}
	if n := f.deleter.count("user-1"); n != 1 {
		t.Fatalf("expected one deletion, got %d", n)
	}
	if len(f.hook.calls) != 1 || f.hook.calls[0].UserID != "user-1" {
		t.Fatalf("expected hook called once for user-1, got %+v", f.hook.calls)
	}

	if _, err := f.confirmer.Confirm(ctx, value); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed on second confirm, got %v", err)
	}
	if n := f.deleter.count("user-1"); n != 1 {
		t.Fatalf("expected deletion not repeated, got %d", n)
	}
	if len(f.hook.calls) != 1 {
		t.Fatalf("expected hook not repeated, got %d", len(f.hook.calls))
	}
}

func TestConfirmExpiredLeavesTokenUnused(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()
	value := f.issue(t)

	f.clock.t = f.clock.t.Add(24 * time.Hour)
	if _, err := f.confirmer.Confirm(ctx, value); err != nil {
		t.Fatalf("expected confirm exactly at expiry to succeed, got %v", err)
	}

	value = f.issue(t)
	f.clock.t = f.clock.t.Add(24*time.Hour + time.Second)
	if _, err := f.confirmer.Confirm(ctx, value); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	stored, err := f.store.FindByToken(ctx, value)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Used || stored.UsedAt != nil {
		t.Fatalf("expected expired token untouched, got used=%v used_at=%v", stored.Used, stored.UsedAt)
	}
	if n := f.deleter.count("user-1"); n != 1 {
		t.Fatalf("expected no deletion for expired token, got %d total", n)
	}
}

func TestConfirmInvalidInputs(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	if _, err := f.confirmer.Confirm(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.confirmer.Confirm(ctx, "dt_unknown"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestConfirmStoreUnavailable(t *testing.T) {
	f := newConfirmFixture(t)
	f.confirmer.deps.Store = brokenStore{TokenStore: f.store, findErr: ErrStore}

	if _, err := f.confirmer.Confirm(context.Background(), "dt_any"); !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestConfirmConcurrentCallsDeleteOnce(t *testing.T) {
	f := newConfirmFixture(t)
	value := f.issue(t)

	const callers = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			_, errs[idx] = f.confirmer.Confirm(context.Background(), value)
		}(i)
	}
	close(start)
	wg.Wait()

	success, alreadyUsed := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrAlreadyUsed):
			alreadyUsed++
		default:
			t.Fatalf("unexpected confirm error: %v", err)
		}
	}
	if success != 1 || alreadyUsed != callers-1 {
		t.Fatalf("expected 1 success and %d already-used, got success=%d alreadyUsed=%d", callers-1, success, alreadyUsed)
	}
	if n := f.deleter.count("user-1"); n != 1 {
		t.Fatalf("expected exactly one deletion, got %d", n)
	}
}

func TestConfirmDeletionFailureKeepsTokenConsumed(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()
	value := f.issue(t)
	f.deleter.errs["user-1"] = errors.New("identity store 503")

	if _, err := f.confirmer.Confirm(ctx, value); !errors.Is(err, ErrDeletionFailed) {
		t.Fatalf("expected ErrDeletionFailed, got %v", err)
	}
	stored, err := f.store.FindByToken(ctx, value)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !stored.Used {
		t.Fatal("expected token to stay consumed after deletion failure")
	}

	if _, err := f.confirmer.Confirm(ctx, value); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected replay to be rejected, got %v", err)
	}
	if n := f.deleter.count("user-1"); n != 1 {
		t.Fatalf("expected no retry of deletion, got %d", n)
	}
}

func TestConfirmTreatsMissingUserAsDeleted(t *testing.T) {
	f := newConfirmFixture(t)
	value := f.issue(t)
	f.deleter.errs["user-1"] = ErrUserNotFound

	res, err := f.confirmer.Confirm(context.Background(), value)
	if err != nil {
		t.Fatalf("expected success when user already gone, got %v", err)
	}
	if res.Email != "user@example.com" {
		t.Fatalf("unexpected email %s", res.Email)
	}
}

func TestConfirmHookFailureDoesNotBlockDeletion(t *testing.T) {
	f := newConfirmFixture(t)
	value := f.issue(t)
	f.hook.err = errors.New("rpc delete_user_account does not exist")

	if _, err := f.confirmer.Confirm(context.Background(), value); err != nil {
		t.Fatalf("expected hook failure to be ignored, got %v", err)
	}
	if n := f.deleter.count("user-1"); n != 1 {
		t.Fatalf("expected deletion despite hook failure, got %d", n)
	}
}
