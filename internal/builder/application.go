package builder

import (
	"context"

	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
)

// ApplicationBuilder builds dto.AdoptionApplication graphs.
type ApplicationBuilder struct {
	base
}

// NewApplicationBuilder is the transient provider for ApplicationBuilder.
func NewApplicationBuilder(i do.Injector) (*ApplicationBuilder, error) {
	b, err := newBase(i)
	return &ApplicationBuilder{base: b}, err
}

// Build implements Builder.
func (b *ApplicationBuilder) Build(ctx context.Context, apps []*domain.AdoptionApplication, fields []string) ([]*dto.AdoptionApplication, error) {
	split, has := b.split(domain.TypeAdoptionApplication, fields)

	out := make([]*dto.AdoptionApplication, len(apps))
	for i, a := range apps {
		d := &dto.AdoptionApplication{}
		if has["id"] {
			d.ID = ptr(a.ID)
		}
		if has["userId"] {
			d.UserID = ptr(a.UserID)
		}
		if has["animalId"] {
			d.AnimalID = ptr(a.AnimalID)
		}
		if has["shelterId"] {
			d.ShelterID = ptr(a.ShelterID)
		}
		if has["status"] {
			d.Status = ptr(a.Status)
		}
		if has["applicationDetails"] {
			d.ApplicationDetails = ptr(a.ApplicationDetails)
		}
		if has["attachedFileIds"] {
			d.AttachedFileIDs = list(a.AttachedFileIDs)
		}
		if has["rejectReason"] {
			d.RejectReason = ptr(a.RejectReason)
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
		users    map[string]*dto.User
		animals  map[string]*dto.Animal
		shelters map[string]*dto.Shelter
		files    map[string]*dto.File
	)
	q := b.deps.Queries
	g, gctx := errgroup.WithContext(ctx)
	if sub, ok := split.Foreign["user"]; ok {
		g.Go(func() (err error) {
			users, err = related[domain.User, dto.User, *UserBuilder](gctx, &b.base, q.Users,
				keys(apps, func(a *domain.AdoptionApplication) []string { return one(a.UserID) }), sub)
			return err
		})
	}
	if sub, ok := split.Foreign["animal"]; ok {
		g.Go(func() (err error) {
			animals, err = related[domain.Animal, dto.Animal, *AnimalBuilder](gctx, &b.base, q.Animals,
				keys(apps, func(a *domain.AdoptionApplication) []string { return one(a.AnimalID) }), sub)
			return err
		})
	}
	if sub, ok := split.Foreign["shelter"]; ok {
		g.Go(func() (err error) {
			shelters, err = related[domain.Shelter, dto.Shelter, *ShelterBuilder](gctx, &b.base, q.Shelters,
				keys(apps, func(a *domain.AdoptionApplication) []string { return one(a.ShelterID) }), sub)
			return err
		})
	}
	if sub, ok := split.Foreign["attachedFiles"]; ok {
		g.Go(func() (err error) {
			files, err = related[domain.File, dto.File, *FileBuilder](gctx, &b.base, q.Files,
				keys(apps, func(a *domain.AdoptionApplication) []string { return a.AttachedFileIDs }), sub)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, a := range apps {
		out[i].User = users[a.UserID]
		out[i].Animal = animals[a.AnimalID]
		out[i].Shelter = shelters[a.ShelterID]
		out[i].AttachedFiles = pick(files, a.AttachedFileIDs)
	}
	return out, nil
}
