package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/furukawa-sg/sg-reserve-api/internal/dto"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
)

type signupGateway interface {
	CreateSignupRequest(ctx context.Context, payload dto.SignupForward) error
}

// SignupService relays approval-based registration requests. Accounts are
// created by an operator after review; this side only validates and forwards.
type SignupService struct {
	gateway  signupGateway
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSignupService constructs the signup relay.
func NewSignupService(gateway signupGateway, logger *zap.Logger) *SignupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignupService{
		gateway:  gateway,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create validates the form and forwards it upstream with the legacy alias
// keys filled in.
func (s *SignupService) Create(ctx context.Context, req dto.SignupRequest) error {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	grade := strings.TrimSpace(req.Grade)

	if name == "" || grade == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name and grade are required")
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "a valid email address is required")
	}

	forward := dto.SignupForward{
		Name:  name,
		Email: email,
		Grade: grade,

		UserName:    name,
		Mail:        email,
		MailAddress: email,
		GradeName:   grade,

		Kind:        "student",
		RequestType: "signup_request",
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.gateway.CreateSignupRequest(ctx, forward); err != nil {
		return err
	}

	s.logger.Info("signup_request_forwarded", zap.String("grade", grade))
	return nil
}
