package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pawhaven/pawhaven-server/internal/cache"
	"github.com/pawhaven/pawhaven-server/internal/store"
	"github.com/pawhaven/pawhaven-server/internal/validation"
)

// UserCounter counts user accounts matching a filter.
type UserCounter interface {
	Count(ctx context.Context, f store.Filter) (int64, error)
}

// AvailabilityService answers "is this email free?" for sign-up forms.
// Answers are cached briefly; write paths call Forget after creating or
// renaming an account.
type AvailabilityService struct {
	users     UserCounter
	cache     cache.Cache
	ttl       time.Duration
	logger    *slog.Logger
	validator *validation.Validator
}

// NewAvailabilityService creates a new availability service. A nil cache
// disables caching.
func NewAvailabilityService(users UserCounter, c cache.Cache, ttl time.Duration, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{
		users:     users,
		cache:     c,
		ttl:       ttl,
		logger:    logger,
		validator: validation.New(),
	}
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// NormalizeEmail returns the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	// Casers keep state; one per call.
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(email)))
}

// EmailAvailable reports whether no account uses email.
func (s *AvailabilityService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	if err := s.validator.Validate(emailRequest{Email: strings.TrimSpace(email)}); err != nil {
		return false, err
	}
	email = NormalizeEmail(email)
	key := availabilityKey(email)

	if s.cache != nil {
		var available bool
		hit, err := cache.GetJSON(ctx, s.cache, key, &available)
		if err != nil {
			s.logger.Warn("availability cache read failed", "error", err)
		}
		if hit {
			return available, nil
		}
	}

	n, err := s.users.Count(ctx, store.Eq("email", email))
	if err != nil {
		return false, fmt.Errorf("failed to count accounts: %w", err)
	}
	available := n == 0

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, available, s.ttl); err != nil {
			s.logger.Warn("availability cache write failed", "error", err)
		}
	}
	return available, nil
}

// Forget drops the cached answer for email.
func (s *AvailabilityService) Forget(ctx context.Context, email string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, availabilityKey(NormalizeEmail(email)))
}

func availabilityKey(email string) string {
	return "availability:email:" + email
}
