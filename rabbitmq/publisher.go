// SPDX-License-Identifier: GPL-3.0-only

package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"deletion-server/commons"

	amqp "github.com/rabbitmq/amqp091-go"
)

func NewPublisher(c PublisherConfig) (*Publisher, error) {
	if c.AMQPURL == "" {
		return nil, errors.New("amqp url is required")
	}
	if c.Exchange == "" {
		return nil, errors.New("exchange name is required")
	}
	parsedURL, err := url.Parse(c.AMQPURL)
	if err != nil || (parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps") {
		return nil, fmt.Errorf("invalid amqp url %q", redactURL(c.AMQPURL))
	}
	commons.Logger.Debugf("AMQP publisher configured for %s (exchange=%s)", redactURL(c.AMQPURL), c.Exchange)
	return &Publisher{config: c}, nil
}

func (p *Publisher) connect() error {
	if p.channel != nil && !p.channel.IsClosed() {
		return nil
	}
	p.closeLocked()

	conn, err := amqp.Dial(p.config.AMQPURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.config.Exchange, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	p.conn = conn
	p.channel = ch
	commons.Logger.Infof("AMQP channel ready (exchange=%s)", p.config.Exchange)
	return nil
}

// Publish sends a persistent JSON message to the configured exchange.
func (p *Publisher) Publish(ctx context.Context, routingKey, messageID string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connect(); err != nil {
		commons.Logger.Errorf("AMQP connection failed: %v", err)
		return err
	}

	err := p.channel.PublishWithContext(ctx, p.config.Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Body:         body,
	})
	if err != nil {
		p.closeLocked()
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *Publisher) closeLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	return u.Redacted()
}
