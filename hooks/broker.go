// SPDX-License-Identifier: GPL-3.0-only

package hooks

import (
	"context"
	"encoding/json"
	"time"

	"deletion-server/commons"
	"deletion-server/models"

	"github.com/google/uuid"
)

const DeletionConfirmedEvent = "account.deletion_confirmed"

type EventPublisher interface {
	Publish(ctx context.Context, routingKey, messageID string, body []byte) error
}

type DeletionConfirmed struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Reason      *string   `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// BrokerHook announces a confirmed deletion so downstream services can purge
// their own copies of the user's data.
type BrokerHook struct {
	publisher EventPublisher
	now       func() time.Time
}

func NewBrokerHook(publisher EventPublisher) *BrokerHook {
	return &BrokerHook{publisher: publisher, now: func() time.Time { return time.Now().UTC() }}
}

func (h *BrokerHook) Name() string {
	return "broker:" + DeletionConfirmedEvent
}

func (h *BrokerHook) AfterConsume(ctx context.Context, token models.DeletionToken) error {
	confirmedAt := h.now()
	if token.UsedAt != nil {
		confirmedAt = *token.UsedAt
	}
	event := DeletionConfirmed{
		EventID:     uuid.New().String(),
		Type:        DeletionConfirmedEvent,
		UserID:      token.UserID,
		Email:       token.Email,
		Reason:      token.Reason,
		RequestedAt: token.CreatedAt,
		ConfirmedAt: confirmedAt,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := h.publisher.Publish(ctx, DeletionConfirmedEvent, event.EventID, body); err != nil {
		return err
	}
	commons.Logger.Debugf("Published %s event %s for user %s", DeletionConfirmedEvent, event.EventID, token.UserID)
	return nil
}
