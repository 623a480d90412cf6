package builder

import (
	"context"

	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
)

// ConversationBuilder builds dto.Conversation graphs.
type ConversationBuilder struct {
	base
}

// NewConversationBuilder is the transient provider for ConversationBuilder.
func NewConversationBuilder(i do.Injector) (*ConversationBuilder, error) {
	b, err := newBase(i)
	return &ConversationBuilder{base: b}, err
}

// Build implements Builder.
func (b *ConversationBuilder) Build(ctx context.Context, convs []*domain.Conversation, fields []string) ([]*dto.Conversation, error) {
	split, has := b.split(domain.TypeConversation, fields)

	out := make([]*dto.Conversation, len(convs))
	for i, c := range convs {
		d := &dto.Conversation{}
		if has["id"] {
			d.ID = ptr(c.ID)
		}
		if has["userIds"] {
			d.UserIDs = list(c.UserIDs)
		}
		if has["lastMessageId"] {
			d.LastMessageID = ptr(c.LastMessageID)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(c.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(c.UpdatedAt)
		}
		out[i] = d
	}

	var (
		users    map[string]*dto.User
		messages map[string]*dto.Message
	)
	q := b.deps.Queries
	g, gctx := errgroup.WithContext(ctx)
	if sub, ok := split.Foreign["users"]; ok {
		g.Go(func() (err error) {
			users, err = related[domain.User, dto.User, *UserBuilder](gctx, &b.base, q.Users,
				keys(convs, func(c *domain.Conversation) []string { return c.UserIDs }), sub)
			return err
		})
	}
	if sub, ok := split.Foreign["lastMessage"]; ok {
		g.Go(func() (err error) {
			messages, err = related[domain.Message, dto.Message, *MessageBuilder](gctx, &b.base, q.Messages,
				keys(convs, func(c *domain.Conversation) []string { return one(c.LastMessageID) }), sub)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, c := range convs {
		out[i].Users = pick(users, c.UserIDs)
		out[i].LastMessage = messages[c.LastMessageID]
	}
	return out, nil
}

// MessageBuilder builds dto.Message graphs. Sender and recipient are both
// users and are fetched together.
type MessageBuilder struct {
	base
}

// NewMessageBuilder is the transient provider for MessageBuilder.
func NewMessageBuilder(i do.Injector) (*MessageBuilder, error) {
	b, err := newBase(i)
	return &MessageBuilder{base: b}, err
}

// Build implements Builder.
func (b *MessageBuilder) Build(ctx context.Context, messages []*domain.Message, fields []string) ([]*dto.Message, error) {
	split, has := b.split(domain.TypeMessage, fields)

	out := make([]*dto.Message, len(messages))
	for i, m := range messages {
		d := &dto.Message{}
		if has["id"] {
			d.ID = ptr(m.ID)
		}
		if has["conversationId"] {
			d.ConversationID = ptr(m.ConversationID)
		}
		if has["senderId"] {
			d.SenderID = ptr(m.SenderID)
		}
		if has["recipientId"] {
			d.RecipientID = ptr(m.RecipientID)
		}
		if has["content"] {
			d.Content = ptr(m.Content)
		}
		if has["isRead"] {
			d.IsRead = ptr(m.IsRead)
		}
		if has["createdAt"] {
			d.CreatedAt = ptr(m.CreatedAt)
		}
		if has["updatedAt"] {
			d.UpdatedAt = ptr(m.UpdatedAt)
		}
		out[i] = d
	}

	var (
		conversations       map[string]*dto.Conversation
		senders, recipients map[string]*dto.User
	)
	q := b.deps.Queries
	g, gctx := errgroup.WithContext(ctx)
	if sub, ok := split.Foreign["conversation"]; ok {
		g.Go(func() (err error) {
			conversations, err = related[domain.Conversation, dto.Conversation, *ConversationBuilder](gctx, &b.base, q.Conversations,
				keys(messages, func(m *domain.Message) []string { return one(m.ConversationID) }), sub)
			return err
		})
	}
	senderFields, wantSender := split.Foreign["sender"]
	recipientFields, wantRecipient := split.Foreign["recipient"]
	if wantSender || wantRecipient {
		g.Go(func() (err error) {
			senders, recipients, err = dual[domain.User, dto.User, *UserBuilder](gctx, &b.base, q.Users,
				pair{
					ids:       keys(messages, func(m *domain.Message) []string { return one(m.SenderID) }),
					fields:    senderFields,
					requested: wantSender,
				},
				pair{
					ids:       keys(messages, func(m *domain.Message) []string { return one(m.RecipientID) }),
					fields:    recipientFields,
					requested: wantRecipient,
				})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, m := range messages {
		out[i].Conversation = conversations[m.ConversationID]
		out[i].Sender = senders[m.SenderID]
		out[i].Recipient = recipients[m.RecipientID]
	}
	return out, nil
}
