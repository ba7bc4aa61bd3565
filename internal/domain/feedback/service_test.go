package feedback

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ptv/internal/core/apperror"
	"ptv/internal/core/id"
)

type mockOrgs struct{ mock.Mock }

func (m *mockOrgs) MainOrganization(orgID id.ID) (id.ID, error) {
	args := m.Called(orgID)
	return args.Get(0).(id.ID), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, token string, email Email) (SendResult, error) {
	args := m.Called(ctx, token, email)
	return args.Get(0).(SendResult), args.Error(1)
}

func validFeedback() VmFeedback {
	return VmFeedback{
		OrganizationID: id.New(),
		Language:       "fi",
		Subject:        "Aukioloajat",
		Body:           "Aukioloajat ovat vanhentuneet.",
		SenderEmail:    "matti@example.fi",
	}
}

func TestProcessFeedback_SendsToMainOrganization(t *testing.T) {
	vm := validFeedback()
	mainOrg := id.New()

	orgs := &mockOrgs{}
	orgs.On("MainOrganization", vm.OrganizationID).Return(mainOrg, nil)
	tokens := &mockTokens{}
	tokens.On("Token", mock.Anything).Return("tok", nil)
	sender := &mockSender{}
	sender.On("Send", mock.Anything, "tok", mock.MatchedBy(func(e Email) bool {
		return e.OrganizationID == mainOrg && e.ReplyTo == vm.SenderEmail && e.Subject == vm.Subject
	})).Return(SendResult{Success: true}, nil)

	res, err := NewService(orgs, tokens, sender).ProcessFeedback(context.Background(), vm)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	orgs.AssertNumberOfCalls(t, "MainOrganization", 1)
	sender.AssertNumberOfCalls(t, "Send", 1)
	mock.AssertExpectationsForObjects(t, orgs, tokens, sender)
}

func TestProcessFeedback_EmailServiceRejects(t *testing.T) {
	vm := validFeedback()
	orgs := &mockOrgs{}
	orgs.On("MainOrganization", vm.OrganizationID).Return(vm.OrganizationID, nil)
	tokens := &mockTokens{}
	tokens.On("Token", mock.Anything).Return("tok", nil)
	sender := &mockSender{}
	sender.On("Send", mock.Anything, "tok", mock.Anything).Return(SendResult{Success: false, Message: "mailbox full"}, nil)

	res, err := NewService(orgs, tokens, sender).ProcessFeedback(context.Background(), vm)

	assert.Nil(t, res)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "FEEDBACK_NOT_SENT", appErr.Code)
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestProcessFeedback_InvalidInputStopsEarly(t *testing.T) {
	vm := validFeedback()
	vm.Body = ""
	vm.SenderEmail = "not-an-email"
	orgs, tokens, sender := &mockOrgs{}, &mockTokens{}, &mockSender{}

	_, err := NewService(orgs, tokens, sender).ProcessFeedback(context.Background(), vm)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, map[string]string{"Body": "required", "SenderEmail": "email"}, appErr.Details["fields"])
	orgs.AssertNotCalled(t, "MainOrganization", mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessFeedback_UnknownOrganization(t *testing.T) {
	vm := validFeedback()
	orgs := &mockOrgs{}
	orgs.On("MainOrganization", vm.OrganizationID).Return(id.Nil(), apperror.NewNotFound("organization", vm.OrganizationID))
	tokens, sender := &mockTokens{}, &mockSender{}

	_, err := NewService(orgs, tokens, sender).ProcessFeedback(context.Background(), vm)

	assert.True(t, apperror.IsNotFound(err))
	tokens.AssertNotCalled(t, "Token", mock.Anything)
}

func TestProcessFeedback_TokenFailure(t *testing.T) {
	vm := validFeedback()
	orgs := &mockOrgs{}
	orgs.On("MainOrganization", vm.OrganizationID).Return(vm.OrganizationID, nil)
	tokens := &mockTokens{}
	tokens.On("Token", mock.Anything).Return("", errors.New("signing key missing"))
	sender := &mockSender{}

	_, err := NewService(orgs, tokens, sender).ProcessFeedback(context.Background(), vm)

	assert.ErrorContains(t, err, "signing key missing")
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}
