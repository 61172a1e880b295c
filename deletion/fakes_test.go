// SPDX-License-Identifier: GPL-3.0-only

package deletion

import (
	"context"
	"errors"
	"sync"
	"time"

	"deletion-server/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

type fakeVerifier struct {
	passwords map[string]string
	ids       map[string]string
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{
		passwords: map[string]string{"user@example.com": "Correct#Horse1"},
		ids:       map[string]string{"user@example.com": "user-1"},
	}
}

func (v *fakeVerifier) VerifyPassword(_ context.Context, email, password string) (string, error) {
	if p, ok := v.passwords[email]; !ok || p != password {
		return "", errors.New("invalid login credentials")
	}
	return v.ids[email], nil
}

type fakeDeleter struct {
	mu    sync.Mutex
	calls map[string]int
	errs  map[string]error
}

func newFakeDeleter() *fakeDeleter {
	return &fakeDeleter{calls: map[string]int{}, errs: map[string]error{}}
}

func (d *fakeDeleter) DeleteUser(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[userID]++
	return d.errs[userID]
}

func (d *fakeDeleter) count(userID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[userID]
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeHook struct {
	mu    sync.Mutex
	calls []models.DeletionToken
	err   error
}

func (h *fakeHook) Name() string { return "fake" }

func (h *fakeHook) AfterConsume(_ context.Context, token models.DeletionToken) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, token)
	return h.err
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

// brokenStore fails the selected operations and delegates the rest.
type brokenStore struct {
	TokenStore
	insertErr error
	findErr   error
}

func (s brokenStore) Insert(ctx context.Context, token *models.DeletionToken) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.TokenStore.Insert(ctx, token)
}

func (s brokenStore) FindByToken(ctx context.Context, value string) (*models.DeletionToken, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.TokenStore.FindByToken(ctx, value)
}
