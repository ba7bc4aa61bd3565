// Package feedback forwards end-user feedback about registry content to the
// main organization responsible for it.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
	"ptv/pkg/logger"
)

// VmFeedback is the feedback form posted by a citizen.
type VmFeedback struct {
	OrganizationID id.ID  `json:"organizationId" validate:"required"`
	EntityID       *id.ID `json:"entityId,omitempty"`
	EntityType     string `json:"entityType,omitempty" validate:"omitempty,oneof=service channel organization general_description"`
	Language       string `json:"language" validate:"required,min=2,max=3"`
	Subject        string `json:"subject" validate:"required,max=200"`
	Body           string `json:"body" validate:"required,max=4000"`
	SenderName     string `json:"senderName,omitempty" validate:"max=200"`
	SenderEmail    string `json:"senderEmail,omitempty" validate:"omitempty,email"`
}

// Email is the message handed to the email service.
type Email struct {
	OrganizationID id.ID  `json:"organizationId"`
	EntityID       *id.ID `json:"entityId,omitempty"`
	EntityType     string `json:"entityType,omitempty"`
	Language       string `json:"language"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	ReplyTo        string `json:"replyTo,omitempty"`
	SenderName     string `json:"senderName,omitempty"`
}

// SendResult is the answer of the email service.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Result is the outcome returned to the HTTP layer.
type Result struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

// OrganizationCache resolves an organization to the root of its hierarchy.
type OrganizationCache interface {
	MainOrganization(orgID id.ID) (id.ID, error)
}

// TokenProvider supplies the bearer token for the email service.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// EmailSender delivers feedback emails.
type EmailSender interface {
	Send(ctx context.Context, token string, email Email) (SendResult, error)
}

// Service processes feedback.
type Service struct {
	orgs     OrganizationCache
	tokens   TokenProvider
	sender   EmailSender
	validate *validator.Validate
}

// NewService creates a new feedback service.
func NewService(orgs OrganizationCache, tokens TokenProvider, sender EmailSender) *Service {
	return &Service{
		orgs:     orgs,
		tokens:   tokens,
		sender:   sender,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ProcessFeedback validates vm and emails it to the main organization of the
// organization it concerns.
func (s *Service) ProcessFeedback(ctx context.Context, vm VmFeedback) (*Result, error) {
	if err := s.validate.Struct(vm); err != nil {
		return nil, validationError(err)
	}

	mainOrg, err := s.orgs.MainOrganization(vm.OrganizationID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("feedback token: %w", err)
	}

	res, err := s.sender.Send(ctx, token, Email{
		OrganizationID: mainOrg,
		EntityID:       vm.EntityID,
		EntityType:     vm.EntityType,
		Language:       vm.Language,
		Subject:        vm.Subject,
		Body:           vm.Body,
		ReplyTo:        vm.SenderEmail,
		SenderName:     vm.SenderName,
	})
	if err != nil {
		return nil, fmt.Errorf("send feedback: %w", err)
	}
	if !res.Success {
		return nil, apperror.NewBusinessRule("FEEDBACK_NOT_SENT", "feedback could not be delivered").
			WithDetail("reason", res.Message)
	}

	logger.Info(ctx, "feedback sent", "organization", mainOrg, "entity_type", vm.EntityType)
	return &Result{Status: http.StatusOK, Message: "feedback sent"}, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewValidation(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return apperror.NewValidation("invalid feedback").WithDetail("fields", fields)
}
