package handler

import (
	"context"
	"encoding/json"
	"net/url"

	"cert-portal/client"

	"github.com/stretchr/testify/mock"
)

// MockCollaborator is a testify mock for the Collaborator interface.
type MockCollaborator struct {
	mock.Mock
}

func (m *MockCollaborator) Authenticate(ctx context.Context, username, password string) (*client.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuthResult), args.Error(1)
}

func (m *MockCollaborator) GetUsers(ctx context.Context) ([]client.UserRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.UserRecord), args.Error(1)
}

func (m *MockCollaborator) AddUser(ctx context.Context, username, email, password, role string) (*client.OpResult, error) {
	args := m.Called(ctx, username, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.OpResult), args.Error(1)
}

func (m *MockCollaborator) UpdateUser(ctx context.Context, originalUsername, username, email, password, role string) (*client.OpResult, error) {
	args := m.Called(ctx, originalUsername, username, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.OpResult), args.Error(1)
}

func (m *MockCollaborator) DeleteUser(ctx context.Context, username string) (*client.OpResult, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.OpResult), args.Error(1)
}

func (m *MockCollaborator) Verify(ctx context.Context, certificateNo string) (map[string]any, error) {
	args := m.Called(ctx, certificateNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockCollaborator) AddRecord(ctx context.Context, fields url.Values) (map[string]any, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockCollaborator) ListRecords(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
