package builder

import (
	"context"

	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
)

// UserBuilder builds dto.User graphs.
type UserBuilder struct {
	base
}

// NewUserBuilder is the transient provider for UserBuilder.
func NewUserBuilder(i do.Injector) (*UserBuilder, error) {
	b, err := newBase(i)
	return &UserBuilder{base: b}, err
}

// Build implements Builder.
func (b *UserBuilder) Build(ctx context.Context, users []*domain.User, fields []string) ([]*dto.User, error) {
	split, has := b.split(domain.TypeUser, fields)

	out := make([]*dto.User, len(users))
	for i, u := range users {
		d := &dto.User{}
		if has["id"] {
			d.ID = ptr(u.ID)
		}
		if has["name"] {
			d.Name = ptr(u.Name)
		}
		if has["email"] {
			d.Email = ptr(u.Email)
		}
		if has["phone"] {
			d.Phone = ptr(u.Phone)
		}
		if has["location"] {
			d.Location = ptr(u.Location)
		}
		if has["role"] {
			d.Role = ptr(u.Role)
		}
		if has["shelterId"] {
			d.ShelterID = ptr(u.ShelterID)
		}
		if has["profilePhotoId"] {
			d.ProfilePhotoID = ptr(u.ProfilePhotoID)
		}
		if has["isVerified"] {
			d.IsVerified = ptr(u.IsVerified)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(u.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(u.UpdatedAt)
		}
		out[i] = d
	}

	var (
		shelters map[string]*dto.Shelter
		photos   map[string]*dto.File
	)
	q := b.deps.Queries
	g, gctx := errgroup.WithContext(ctx)
	if sub, ok := split.Foreign["shelter"]; ok {
		g.Go(func() (err error) {
			shelters, err = related[domain.Shelter, dto.Shelter, *ShelterBuilder](gctx, &b.base, q.Shelters,
				keys(users, func(u *domain.User) []string { return one(u.ShelterID) }), sub)
			return err
		})
	}
	if sub, ok := split.Foreign["profilePhoto"]; ok {
		g.Go(func() (err error) {
			photos, err = related[domain.File, dto.File, *FileBuilder](gctx, &b.base, q.Files,
				keys(users, func(u *domain.User) []string { return one(u.ProfilePhotoID) }), sub)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, u := range users {
		out[i].Shelter = shelters[u.ShelterID]
		out[i].ProfilePhoto = photos[u.ProfilePhotoID]
	}
	return out, nil
}
