// Package store is the document persistence layer. It exposes filtered,
// projected, paged reads over one collection per entity type, backed by
// badger or sqlite.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/store/sqlite"
)

// Options selects and locates the backend.
type Options struct {
	Driver   string // badger (default) or sqlite
	Path     string
	InMemory bool
}

// Store groups the typed collections over a single backend.
type Store struct {
	backend  Backend
	logger   *slog.Logger
	observer Observer
	indexer  SearchIndexer

	Animals              *Collection[domain.Animal]
	Shelters             *Collection[domain.Shelter]
	Users                *Collection[domain.User]
	Breeds               *Collection[domain.Breed]
	AnimalTypes          *Collection[domain.AnimalType]
	Files                *Collection[domain.File]
	Notifications        *Collection[domain.Notification]
	AdoptionApplications *Collection[domain.AdoptionApplication]
	Conversations        *Collection[domain.Conversation]
	Messages             *Collection[domain.Message]
	Reports              *Collection[domain.Report]

	counters map[domain.EntityType]counter
}

type counter interface {
	Count(ctx context.Context, f Filter) (int64, error)
}

// Open opens the configured backend and wraps it in a Store.
func Open(opts Options, logger *slog.Logger) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch opts.Driver {
	case "", "badger":
		backend, err = OpenBadger(filepath.Join(opts.Path, "documents"), opts.InMemory, logger)
	case "sqlite":
		backend, err = sqlite.Open(filepath.Join(opts.Path, "pawhaven.db"), logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return New(backend, logger), nil
}

// New wraps an open backend.
func New(backend Backend, logger *slog.Logger) *Store {
	s := &Store{
		backend:  backend,
		logger:   logger,
		observer: noopObserver{},
		indexer:  noopIndexer{},
	}

	s.Animals = NewCollection[domain.Animal](s, domain.TypeAnimal.Collection())
	s.Shelters = NewCollection[domain.Shelter](s, domain.TypeShelter.Collection())
	s.Users = NewCollection[domain.User](s, domain.TypeUser.Collection())
	s.Breeds = NewCollection[domain.Breed](s, domain.TypeBreed.Collection())
	s.AnimalTypes = NewCollection[domain.AnimalType](s, domain.TypeAnimalType.Collection())
	s.Files = NewCollection[domain.File](s, domain.TypeFile.Collection())
	s.Notifications = NewCollection[domain.Notification](s, domain.TypeNotification.Collection())
	s.AdoptionApplications = NewCollection[domain.AdoptionApplication](s, domain.TypeAdoptionApplication.Collection())
	s.Conversations = NewCollection[domain.Conversation](s, domain.TypeConversation.Collection())
	s.Messages = NewCollection[domain.Message](s, domain.TypeMessage.Collection())
	s.Reports = NewCollection[domain.Report](s, domain.TypeReport.Collection())

	s.counters = map[domain.EntityType]counter{
		domain.TypeAnimal:              s.Animals,
		domain.TypeShelter:             s.Shelters,
		domain.TypeUser:                s.Users,
		domain.TypeBreed:               s.Breeds,
		domain.TypeAnimalType:          s.AnimalTypes,
		domain.TypeFile:                s.Files,
		domain.TypeNotification:        s.Notifications,
		domain.TypeAdoptionApplication: s.AdoptionApplications,
		domain.TypeConversation:        s.Conversations,
		domain.TypeMessage:             s.Messages,
		domain.TypeReport:              s.Reports,
	}
	return s
}

// SetObserver installs a query observer. Call before serving requests.
func (s *Store) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	s.observer = o
}

// SetSearchIndexer installs the search indexer. It is set after store
// creation because the index is opened after the store.
func (s *Store) SetSearchIndexer(i SearchIndexer) {
	if i == nil {
		i = noopIndexer{}
	}
	s.indexer = i
}

// Count counts documents of the given entity type matching f.
func (s *Store) Count(ctx context.Context, t domain.EntityType, f Filter) (int64, error) {
	c, ok := s.counters[t]
	if !ok {
		return 0, fmt.Errorf("no collection for entity type %q", t)
	}
	return c.Count(ctx, f)
}

// Reindex feeds every stored document to the search indexer and returns
// how many were indexed. Used when the index is new or was wiped.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	n := 0
	for _, t := range domain.EntityTypes() {
		collection := t.Collection()
		err := s.backend.Scan(ctx, collection, func(raw []byte) error {
			var fields map[string]any
			if err := json.Unmarshal(raw, &fields); err != nil {
				return fmt.Errorf("failed to decode %s document: %w", collection, err)
			}
			id, _ := fields["id"].(string)
			if err := s.indexer.IndexDocument(ctx, collection, id, fields); err != nil {
				return err
			}
			n++
			return nil
		})
		if err != nil {
			return n, fmt.Errorf("reindex %s: %w", collection, err)
		}
	}
	return n, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
