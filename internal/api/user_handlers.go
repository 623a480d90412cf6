package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "emailAvailability",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/email-availability",
		Summary:     "Check email availability",
		Description: "Reports whether an email address is free for a new account",
		Tags:        []string{"Users"},
	}, s.handleEmailAvailability)
}

// EmailAvailabilityInput names the address to check.
type EmailAvailabilityInput struct {
	Email string `query:"email" required:"true" maxLength:"254" doc:"Email address"`
}

// EmailAvailabilityOutput reports whether the address is free.
type EmailAvailabilityOutput struct {
	Body struct {
		Available bool `json:"available" doc:"True when no account uses the address"`
	}
}

func (s *Server) handleEmailAvailability(ctx context.Context, in *EmailAvailabilityInput) (*EmailAvailabilityOutput, error) {
	available, err := s.services.Availability.EmailAvailable(ctx, in.Email)
	if err != nil {
		return nil, toAPIError(err)
	}
	out := &EmailAvailabilityOutput{}
	out.Body.Available = available
	return out, nil
}
