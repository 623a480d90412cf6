package builder

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
)

type NotificationBuilder struct {
	base
}

func NewNotificationBuilder(i do.Injector) (*NotificationBuilder, error) {
	b, err := newBase(i)
	return &NotificationBuilder{base: b}, err
}

// Build implements Builder.
func (b *NotificationBuilder) Build(ctx context.Context, notifications []*domain.Notification, fields []string) ([]*dto.Notification, error) {
	split, has := b.split(domain.TypeNotification, fields)

	out := make([]*dto.Notification, len(notifications))
	for i, n := range notifications {
		d := &dto.Notification{}
		if has["id"] {
			d.ID = ptr(n.ID)
		}
		if has["userId"] {
			d.UserID = ptr(n.UserID)
		}
		if has["type"] {
			d.Type = ptr(n.Type)
		}
		if has["title"] {
			d.Title = ptr(n.Title)
		}
		if has["content"] {
			d.Content = ptr(n.Content)
		}
		if has["isRead"] {
			d.IsRead = ptr(n.IsRead)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(n.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(n.UpdatedAt)
		}
		out[i] = d
	}

	if sub, ok := split.Foreign["user"]; ok {
		users, err := related[domain.User, dto.User, *UserBuilder](ctx, &b.base, b.deps.Queries.Users,
			keys(notifications, func(n *domain.Notification) []string { return one(n.UserID) }), sub)
		if err != nil {
			return nil, err
		}
		for i, n := range notifications {
			out[i].User = users[n.UserID]
		}
	}
	return out, nil
}
