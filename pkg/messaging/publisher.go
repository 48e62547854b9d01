// Package messaging defines the event publishing contract shared by transports.
package messaging

import (
	"context"
)

const (
	// ProductsStream is the JetStream stream holding every product event.
	ProductsStream = "PRODUCTS"
	// ProductsSubjects is the wildcard bound to ProductsStream.
	ProductsSubjects = "products.>"

	ProductsCreatedSubject = "products.created"
	ProductsUpdatedSubject = "products.updated"
	ProductsDeletedSubject = "products.deleted"
)

// Event is a message routed by subject.
type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// IdentifiedEvent carries a stable id that brokers may use for deduplication.
type IdentifiedEvent interface {
	Event
	ID() string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}
