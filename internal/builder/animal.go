package builder

import (
	"context"

	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
)

// AnimalBuilder builds dto.Animal graphs.
type AnimalBuilder struct {
	base
}

// NewAnimalBuilder is the transient provider for AnimalBuilder.
func NewAnimalBuilder(i do.Injector) (*AnimalBuilder, error) {
	b, err := newBase(i)
	return &AnimalBuilder{base: b}, err
}

// Build implements Builder.
func (b *AnimalBuilder) Build(ctx context.Context, animals []*domain.Animal, fields []string) ([]*dto.Animal, error) {
	split, has := b.split(domain.TypeAnimal, fields)

	out := make([]*dto.Animal, len(animals))
	for i, a := range animals {
		d := &dto.Animal{}
		if has["id"] {
			d.ID = ptr(a.ID)
		}
		if has["name"] {
			d.Name = ptr(a.Name)
		}
		if has["description"] {
			d.Description = ptr(a.Description)
		}
		if has["gender"] {
			d.Gender = ptr(a.Gender)
		}
		if has["age"] {
			d.Age = ptr(a.Age)
		}
		if has["weight"] {
			d.Weight = ptr(a.Weight)
		}
		if has["healthStatus"] {
			d.HealthStatus = ptr(a.HealthStatus)
		}
		if has["status"] {
			d.Status = ptr(a.Status)
		}
		if has["shelterId"] {
			d.ShelterID = ptr(a.ShelterID)
		}
		if has["breedId"] {
			d.BreedID = ptr(a.BreedID)
		}
		if has["animalTypeId"] {
			d.AnimalTypeID = ptr(a.AnimalTypeID)
		}
		if has["photoIds"] {
			d.PhotoIDs = list(a.PhotoIDs)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(a.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(a.UpdatedAt)
		}
		out[i] = d
	}

	var (
		shelters    map[string]*dto.Shelter
		breeds      map[string]*dto.Breed
		animalTypes map[string]*dto.AnimalType
		photos      map[string]*dto.File
	)
	q := b.deps.Queries
	g, gctx := errgroup.WithContext(ctx)
	if sub, ok := split.Foreign["shelter"]; ok {
		g.Go(func() (err error) {
			shelters, err = related[domain.Shelter, dto.Shelter, *ShelterBuilder](gctx, &b.base, q.Shelters,
				keys(animals, func(a *domain.Animal) []string { return one(a.ShelterID) }), sub)
			return err
		})
	}
	if sub, ok := split.Foreign["breed"]; ok {
		g.Go(func() (err error) {
			breeds, err = related[domain.Breed, dto.Breed, *BreedBuilder](gctx, &b.base, q.Breeds,
				keys(animals, func(a *domain.Animal) []string { return one(a.BreedID) }), sub)
			return err
		})
	}
	if sub, ok := split.Foreign["animalType"]; ok {
		g.Go(func() (err error) {
			animalTypes, err = related[domain.AnimalType, dto.AnimalType, *AnimalTypeBuilder](gctx, &b.base, q.AnimalTypes,
				keys(animals, func(a *domain.Animal) []string { return one(a.AnimalTypeID) }), sub)
			return err
		})
	}
	if sub, ok := split.Foreign["photos"]; ok {
		g.Go(func() (err error) {
			photos, err = related[domain.File, dto.File, *FileBuilder](gctx, &b.base, q.Files,
				keys(animals, func(a *domain.Animal) []string { return a.PhotoIDs }), sub)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, a := range animals {
		out[i].Shelter = shelters[a.ShelterID]
		out[i].Breed = breeds[a.BreedID]
		out[i].AnimalType = animalTypes[a.AnimalTypeID]
		out[i].Photos = pick(photos, a.PhotoIDs)
	}
	return out, nil
}
