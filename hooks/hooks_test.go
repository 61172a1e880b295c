// SPDX-License-Identifier: GPL-3.0-only

package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"deletion-server/db/dbtest"
	"deletion-server/models"

	"github.com/google/uuid"
)

func TestNewSQLFunctionHookRejectsUnsafeNames(t *testing.T) {
	conn := dbtest.New(t)
	if _, err := NewSQLFunctionHook(conn, "cleanup(); drop table users", "p_user_id"); err == nil {
		t.Fatal("expected unsafe function name to be rejected")
	}
	if _, err := NewSQLFunctionHook(conn, "delete_user_account", "p user"); err == nil {
		t.Fatal("expected unsafe parameter name to be rejected")
	}
	hook, err := NewSQLFunctionHook(conn, "public.delete_user_account", "p_user_id")
	if err != nil {
		t.Fatalf("NewSQLFunctionHook: %v", err)
	}
	if hook.Name() != "sql:public.delete_user_account" {
		t.Fatalf("unexpected hook name %s", hook.Name())
	}
}

func TestCallStatement(t *testing.T) {
	if got := callStatement("postgres", "delete_user_account", "p_user_id"); got != "SELECT delete_user_account(p_user_id => ?)" {
		t.Fatalf("unexpected postgres statement %q", got)
	}
	if got := callStatement("mysql", "delete_user_account", "p_user_id"); got != "CALL delete_user_account(?)" {
		t.Fatalf("unexpected mysql statement %q", got)
	}
}

func TestSQLFunctionHookSurfacesDatabaseErrors(t *testing.T) {
	hook, err := NewSQLFunctionHook(dbtest.New(t), "delete_user_account", "p_user_id")
	if err != nil {
		t.Fatalf("NewSQLFunctionHook: %v", err)
	}
	// sqlite has no stored procedures.
	if err := hook.AfterConsume(context.Background(), models.DeletionToken{UserID: "user-1"}); err == nil {
		t.Fatal("expected an error from sqlite")
	}
}

type recordedPublish struct {
	key, id string
	body    []byte
}

type fakePublisher struct {
	published []recordedPublish
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey, messageID string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, recordedPublish{key: routingKey, id: messageID, body: body})
	return nil
}

func TestBrokerHookPublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	hook := NewBrokerHook(pub)
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	used := created.Add(2 * time.Hour)
	reason := "moving on"

	token := models.DeletionToken{
		Token:     "dt_abc",
		UserID:    "user-1",
		Email:     "user@example.com",
		Reason:    &reason,
		CreatedAt: created,
		UsedAt:    &used,
	}
	if err := hook.AfterConsume(context.Background(), token); err != nil {
		t.Fatalf("AfterConsume: %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.published))
	}

	msg := pub.published[0]
	if msg.key != DeletionConfirmedEvent {
		t.Errorf("unexpected routing key %s", msg.key)
	}
	var event DeletionConfirmed
	if err := json.Unmarshal(msg.body, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if _, err := uuid.Parse(event.EventID); err != nil || event.EventID != msg.id {
		t.Errorf("expected uuid event id matching message id, got %q / %q", event.EventID, msg.id)
	}
	if event.UserID != "user-1" || event.Email != "user@example.com" || event.Reason == nil || *event.Reason != reason {
		t.Errorf("unexpected event payload %+v", event)
	}
	if !event.ConfirmedAt.Equal(used) || !event.RequestedAt.Equal(created) {
		t.Errorf("unexpected timestamps %+v", event)
	}
}

func TestBrokerHookReturnsPublishError(t *testing.T) {
	hook := NewBrokerHook(&fakePublisher{err: errors.New("channel closed")})
	if err := hook.AfterConsume(context.Background(), models.DeletionToken{UserID: "user-1"}); err == nil {
		t.Fatal("expected publish error")
	}
}
