package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/builder"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/dto"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/logger"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/validation"
)

// QueryService is the entry point for entity lookups. It validates the
// lookup, runs the query pipeline for the caller and logs the outcome.
type QueryService struct {
	factory   *builder.Factory
	queries   *query.Registry
	logger    *slog.Logger
	validator *validation.Validator
}

// NewQueryService creates a new query service.
func NewQueryService(factory *builder.Factory, queries *query.Registry, logger *slog.Logger) *QueryService {
	return &QueryService{
		factory:   factory,
		queries:   queries,
		logger:    logger,
		validator: validation.New(),
	}
}

// Animals looks up animals.
func (s *QueryService) Animals(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.Animal, error) {
	return lookup[domain.Animal, dto.Animal, *builder.AnimalBuilder](ctx, s, s.queries.Animals, p, l)
}

// Shelters looks up shelters.
func (s *QueryService) Shelters(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.Shelter, error) {
	return lookup[domain.Shelter, dto.Shelter, *builder.ShelterBuilder](ctx, s, s.queries.Shelters, p, l)
}

// Users looks up user accounts.
func (s *QueryService) Users(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.User, error) {
	return lookup[domain.User, dto.User, *builder.UserBuilder](ctx, s, s.queries.Users, p, l)
}

// Breeds looks up breeds.
func (s *QueryService) Breeds(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.Breed, error) {
	return lookup[domain.Breed, dto.Breed, *builder.BreedBuilder](ctx, s, s.queries.Breeds, p, l)
}

// AnimalTypes looks up animal types.
func (s *QueryService) AnimalTypes(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.AnimalType, error) {
	return lookup[domain.AnimalType, dto.AnimalType, *builder.AnimalTypeBuilder](ctx, s, s.queries.AnimalTypes, p, l)
}

// Files looks up uploaded files.
func (s *QueryService) Files(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.File, error) {
	return lookup[domain.File, dto.File, *builder.FileBuilder](ctx, s, s.queries.Files, p, l)
}

// Notifications looks up notifications.
func (s *QueryService) Notifications(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.Notification, error) {
	return lookup[domain.Notification, dto.Notification, *builder.NotificationBuilder](ctx, s, s.queries.Notifications, p, l)
}

// AdoptionApplications looks up adoption applications.
func (s *QueryService) AdoptionApplications(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.AdoptionApplication, error) {
	return lookup[domain.AdoptionApplication, dto.AdoptionApplication, *builder.ApplicationBuilder](ctx, s, s.queries.AdoptionApplications, p, l)
}

// Conversations looks up conversations.
func (s *QueryService) Conversations(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.Conversation, error) {
	return lookup[domain.Conversation, dto.Conversation, *builder.ConversationBuilder](ctx, s, s.queries.Conversations, p, l)
}

// Messages looks up messages.
func (s *QueryService) Messages(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.Message, error) {
	return lookup[domain.Message, dto.Message, *builder.MessageBuilder](ctx, s, s.queries.Messages, p, l)
}

// Reports looks up moderation reports.
func (s *QueryService) Reports(ctx context.Context, p authz.Principal, l query.Lookup) ([]*dto.Report, error) {
	return lookup[domain.Report, dto.Report, *builder.ReportBuilder](ctx, s, s.queries.Reports, p, l)
}

func lookup[T, D any, B interface {
	builder.Scoped
	builder.Builder[T, D]
}](ctx context.Context, s *QueryService, q *query.Query[T], p authz.Principal, l query.Lookup) ([]*D, error) {
	log := logger.FromContext(ctx, s.logger).With("entity", q.Type())

	if err := s.validator.Validate(l); err != nil {
		log.Debug("lookup rejected", "error", err)
		return nil, err
	}

	start := time.Now()
	out, err := builder.Run[T, D, B](ctx, s.factory, q, p, l)
	elapsed := time.Since(start)

	var de *domainerrors.Error
	switch {
	case err == nil:
		log.Debug("lookup served", "results", len(out), "fields", len(l.Fields), "elapsed", elapsed)
		return out, nil
	case domainerrors.As(err, &de) && de.Code != domainerrors.CodeInternal && de.Code != domainerrors.CodeConfiguration:
		log.Debug("lookup refused", "code", de.Code, "elapsed", elapsed)
		return nil, err
	case domainerrors.As(err, &de):
		log.Error("lookup misconfigured", "error", err)
		return nil, err
	default:
		log.Error("lookup failed", "error", err, "elapsed", elapsed)
		return nil, domainerrors.Wrapf(err, domainerrors.CodeInternal, "failed to look up %s", q.Type())
	}
}
