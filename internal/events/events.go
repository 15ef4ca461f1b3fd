// Package events announces book lifecycle changes to other services.
// Delivery is fire-and-forget over Redis pub/sub: a lost event never undoes
// or blocks the catalog write that produced it.
package events

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
)

type Type string

const (
	BookAdded    Type = "book.added"
	BookUpdated  Type = "book.updated"
	BookDeleted  Type = "book.deleted"
	BookBorrowed Type = "book.borrowed"
	BookReturned Type = "book.returned"
)

type BookEvent struct {
	Type       Type      `json:"type"`
	BookID     int64     `json:"book_id"`
	UserID     *int64    `json:"user_id,omitempty"` // borrower, only for book.borrowed
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookEvent(t Type, bookID int64) BookEvent {
	return BookEvent{Type: t, BookID: bookID, OccurredAt: time.Now().UTC()}
}

func (e BookEvent) WithUser(userID int64) BookEvent {
	e.UserID = &userID
	return e
}

func (e BookEvent) Marshal() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}

func Unmarshal(data []byte) (BookEvent, error) {
	var e BookEvent
	err := jsoniter.ConfigFastest.Unmarshal(data, &e)
	return e, err
}

type Publisher interface {
	Publish(ctx context.Context, event BookEvent) error
	Close() error
}

// NopPublisher drops every event. Used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookEvent) error { return nil }
func (NopPublisher) Close() error                             { return nil }
