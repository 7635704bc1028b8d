package messaging

import (
	"context"
)

// Vendor names a queue implementation.
type Vendor string

const (
	// VendorMemory keeps messages in process.
	VendorMemory Vendor = "memory"
	// VendorFS persists messages as JSON files on any afs URL.
	VendorFS Vendor = "fs"
)

// Queue is a typed message queue.
type Queue[T any] interface {
	// Publish adds a message with payload t.
	Publish(ctx context.Context, t *T) error

	// Consume returns the next message. Implementations that cannot block
	// return a nil message when the queue is empty.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a delivered payload awaiting acknowledgment.
type Message[T any] interface {
	// T returns the payload.
	T() *T

	// Ack marks the message as handled.
	Ack() error

	// Nack reports a failed delivery; the queue decides whether to retry or
	// dead-letter it.
	Nack(err error) error

	// Attempts returns how many times the message was delivered before.
	Attempts() int
}
