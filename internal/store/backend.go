package store

import (
	"context"
	"time"
)

// Backend persists JSON documents grouped into named collections.
//
// The byte slices handed to fn are only valid for the duration of the call.
type Backend interface {
	Scan(ctx context.Context, collection string, fn func(doc []byte) error) error
	Get(ctx context.Context, collection string, ids []string, fn func(doc []byte) error) error
	Put(ctx context.Context, collection, id string, doc []byte) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// Observer is notified once per collection query. Metrics and tests use it
// to count store round trips.
type Observer interface {
	ObserveQuery(collection, op string, elapsed time.Duration)
}

// SearchIndexer keeps a free-text index in sync with writes.
type SearchIndexer interface {
	IndexDocument(ctx context.Context, collection, id string, doc map[string]any) error
	DeleteDocument(ctx context.Context, collection, id string) error
}

type noopObserver struct{}

func (noopObserver) ObserveQuery(string, string, time.Duration) {}

type noopIndexer struct{}

func (noopIndexer) IndexDocument(context.Context, string, string, map[string]any) error { return nil }
func (noopIndexer) DeleteDocument(context.Context, string, string) error               { return nil }
