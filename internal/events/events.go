// Package events defines the product change events published to the message broker.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
)

// Type names the kind of change a ProductEvent describes.
type Type string

const (
	ProductCreated Type = "created"
	ProductUpdated Type = "updated"
	ProductDeleted Type = "deleted"
)

var _ messaging.IdentifiedEvent = ProductEvent{}

// ProductEvent is published after a product write succeeds.
// Deletion payloads carry no name and price.
type ProductEvent struct {
	Type       Type      `json:"type"`
	ProductID  int64     `json:"product_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	OccurredAt time.Time `json:"occurred_at"`
}

type deletedPayload struct {
	Type       Type      `json:"type"`
	ProductID  int64     `json:"product_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductEvent) Subject() string {
	switch e.Type {
	case ProductUpdated:
		return messaging.ProductsUpdatedSubject
	case ProductDeleted:
		return messaging.ProductsDeletedSubject
	default:
		return messaging.ProductsCreatedSubject
	}
}

func (e ProductEvent) Payload() ([]byte, error) {
	if e.Type == ProductDeleted {
		return json.Marshal(deletedPayload{Type: e.Type, ProductID: e.ProductID, OccurredAt: e.OccurredAt})
	}
	return json.Marshal(e)
}

// ID identifies the event for broker side deduplication.
func (e ProductEvent) ID() string {
	return fmt.Sprintf("product-%d-%s-%d", e.ProductID, e.Type, e.OccurredAt.UnixNano())
}
