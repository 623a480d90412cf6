package builder

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
)

// FileBuilder builds dto.File graphs.
type FileBuilder struct {
	base
}

// NewFileBuilder is the transient provider for FileBuilder.
func NewFileBuilder(i do.Injector) (*FileBuilder, error) {
	b, err := newBase(i)
	return &FileBuilder{base: b}, err
}

// Build implements Builder.
func (b *FileBuilder) Build(ctx context.Context, files []*domain.File, fields []string) ([]*dto.File, error) {
	split, has := b.split(domain.TypeFile, fields)

	out := make([]*dto.File, len(files))
	for i, f := range files {
		d := &dto.File{}
		if has["id"] {
			d.ID = ptr(f.ID)
		}
		if has["filename"] {
			d.Filename = ptr(f.Filename)
		}
		if has["fileType"] {
			d.FileType = ptr(f.FileType)
		}
		if has["mimeType"] {
			d.MimeType = ptr(f.MimeType)
		}
		if has["size"] {
			d.Size = ptr(f.Size)
		}
		if has["sourceUrl"] {
			d.SourceURL = ptr(f.SourceURL)
		}
		if has["ownerId"] {
			d.OwnerID = ptr(f.OwnerID)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(f.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(f.UpdatedAt)
		}
		out[i] = d
	}

	if sub, ok := split.Foreign["owner"]; ok {
		owners, err := related[domain.User, dto.User, *UserBuilder](ctx, &b.base, b.deps.Queries.Users,
			keys(files, func(f *domain.File) []string { return one(f.OwnerID) }), sub)
		if err != nil {
			return nil, err
		}
		for i, f := range files {
			out[i].Owner = owners[f.OwnerID]
		}
	}
	return out, nil
}
