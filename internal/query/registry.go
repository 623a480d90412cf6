package query

import (
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/schema"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

// Registry holds one query per entity type.
type Registry struct {
	Animals              *Query[domain.Animal]
	Shelters             *Query[domain.Shelter]
	Users                *Query[domain.User]
	Breeds               *Query[domain.Breed]
	AnimalTypes          *Query[domain.AnimalType]
	Files                *Query[domain.File]
	Notifications        *Query[domain.Notification]
	AdoptionApplications *Query[domain.AdoptionApplication]
	Conversations        *Query[domain.Conversation]
	Messages             *Query[domain.Message]
	Reports              *Query[domain.Report]
}

// NewRegistry builds the queries over st. searcher may be nil.
func NewRegistry(st *store.Store, schemas *schema.Registry, searcher Searcher, opts Options) *Registry {
	return &Registry{
		Animals:              New(schemas.MustEntity(domain.TypeAnimal), st.Animals, searcher, opts),
		Shelters:             New(schemas.MustEntity(domain.TypeShelter), st.Shelters, searcher, opts),
		Users:                New(schemas.MustEntity(domain.TypeUser), st.Users, searcher, opts),
		Breeds:               New(schemas.MustEntity(domain.TypeBreed), st.Breeds, searcher, opts),
		AnimalTypes:          New(schemas.MustEntity(domain.TypeAnimalType), st.AnimalTypes, searcher, opts),
		Files:                New(schemas.MustEntity(domain.TypeFile), st.Files, searcher, opts),
		Notifications:        New(schemas.MustEntity(domain.TypeNotification), st.Notifications, searcher, opts),
		AdoptionApplications: New(schemas.MustEntity(domain.TypeAdoptionApplication), st.AdoptionApplications, searcher, opts),
		Conversations:        New(schemas.MustEntity(domain.TypeConversation), st.Conversations, searcher, opts),
		Messages:             New(schemas.MustEntity(domain.TypeMessage), st.Messages, searcher, opts),
		Reports:              New(schemas.MustEntity(domain.TypeReport), st.Reports, searcher, opts),
	}
}
