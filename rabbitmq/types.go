// SPDX-License-Identifier: GPL-3.0-only

package rabbitmq

import (
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const ExchangeKind = "topic"

type PublisherConfig struct {
	AMQPURL  string
	Exchange string
}

// Publisher holds one lazily dialed connection and channel. The connection
// is re-established on the next publish once the broker closes it.
type Publisher struct {
	config  PublisherConfig
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}
