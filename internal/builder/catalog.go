package builder

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
)

// BreedBuilder builds dto.Breed graphs.
type BreedBuilder struct {
	base
}

// NewBreedBuilder is the transient provider for BreedBuilder.
func NewBreedBuilder(i do.Injector) (*BreedBuilder, error) {
	b, err := newBase(i)
	return &BreedBuilder{base: b}, err
}

// Build implements Builder.
func (b *BreedBuilder) Build(ctx context.Context, breeds []*domain.Breed, fields []string) ([]*dto.Breed, error) {
	split, has := b.split(domain.TypeBreed, fields)

	out := make([]*dto.Breed, len(breeds))
	for i, br := range breeds {
		d := &dto.Breed{}
		if has["id"] {
			d.ID = ptr(br.ID)
		}
		if has["name"] {
			d.Name = ptr(br.Name)
		}
		if has["description"] {
			d.Description = ptr(br.Description)
		}
		if has["animalTypeId"] {
			d.AnimalTypeID = ptr(br.AnimalTypeID)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(br.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(br.UpdatedAt)
		}
		out[i] = d
	}

	if sub, ok := split.Foreign["animalType"]; ok {
		types, err := related[domain.AnimalType, dto.AnimalType, *AnimalTypeBuilder](ctx, &b.base, b.deps.Queries.AnimalTypes,
			keys(breeds, func(br *domain.Breed) []string { return one(br.AnimalTypeID) }), sub)
		if err != nil {
			return nil, err
		}
		for i, br := range breeds {
			out[i].AnimalType = types[br.AnimalTypeID]
		}
	}
	return out, nil
}

// AnimalTypeBuilder builds dto.AnimalType values. Animal types have no
// relations.
type AnimalTypeBuilder struct {
	base
}

// NewAnimalTypeBuilder is the transient provider for AnimalTypeBuilder.
func NewAnimalTypeBuilder(i do.Injector) (*AnimalTypeBuilder, error) {
	b, err := newBase(i)
	return &AnimalTypeBuilder{base: b}, err
}

// Build implements Builder.
func (b *AnimalTypeBuilder) Build(_ context.Context, types []*domain.AnimalType, fields []string) ([]*dto.AnimalType, error) {
	_, has := b.split(domain.TypeAnimalType, fields)

	out := make([]*dto.AnimalType, len(types))
	for i, at := range types {
		d := &dto.AnimalType{}
		if has["id"] {
			d.ID = ptr(at.ID)
		}
		if has["name"] {
			d.Name = ptr(at.Name)
		}
		if has["description"] {
			d.Description = ptr(at.Description)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(at.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(at.UpdatedAt)
		}
		out[i] = d
	}
	return out, nil
}
