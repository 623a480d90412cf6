package builder

import (
	"context"

	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
)

// ShelterBuilder builds dto.Shelter graphs, including the reverse animals
// relation.
type ShelterBuilder struct {
	base
}

// NewShelterBuilder is the transient provider for ShelterBuilder.
func NewShelterBuilder(i do.Injector) (*ShelterBuilder, error) {
	b, err := newBase(i)
	return &ShelterBuilder{base: b}, err
}

// Build implements Builder.
func (b *ShelterBuilder) Build(ctx context.Context, shelters []*domain.Shelter, fields []string) ([]*dto.Shelter, error) {
	split, has := b.split(domain.TypeShelter, fields)

	out := make([]*dto.Shelter, len(shelters))
	for i, s := range shelters {
		d := &dto.Shelter{}
		if has["id"] {
			d.ID = ptr(s.ID)
		}
		if has["shelterName"] {
			d.ShelterName = ptr(s.ShelterName)
		}
		if has["description"] {
			d.Description = ptr(s.Description)
		}
		if has["website"] {
			d.Website = ptr(s.Website)
		}
		if has["location"] {
			d.Location = ptr(s.Location)
		}
		if has["userId"] {
			d.UserID = ptr(s.UserID)
		}
		if has["verificationStatus"] {
			d.VerificationStatus = ptr(s.VerificationStatus)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(s.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(s.UpdatedAt)
		}
		out[i] = d
	}

	var (
		users   map[string]*dto.User
		animals map[string][]*dto.Animal
	)
	q := b.deps.Queries
	g, gctx := errgroup.WithContext(ctx)
	if sub, ok := split.Foreign["user"]; ok {
		g.Go(func() (err error) {
			users, err = related[domain.User, dto.User, *UserBuilder](gctx, &b.base, q.Users,
				keys(shelters, func(s *domain.Shelter) []string { return one(s.UserID) }), sub)
			return err
		})
	}
	if sub, ok := split.Foreign["animals"]; ok {
		rel, _ := b.deps.Schemas.MustEntity(domain.TypeShelter).Relation("animals")
		g.Go(func() (err error) {
			animals, err = reverse[domain.Animal, dto.Animal, *AnimalBuilder](gctx, &b.base, q.Animals, rel.ForeignKey,
				keys(shelters, func(s *domain.Shelter) []string { return one(s.ID) }), sub,
				func(a *domain.Animal) string { return a.ShelterID })
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, s := range shelters {
		out[i].User = users[s.UserID]
		out[i].Animals = animals[s.ID]
	}
	return out, nil
}
