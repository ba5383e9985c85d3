// Package handler contains the portal's HTTP handlers.
package handler

import (
	"context"
	"encoding/json"
	"net/url"

	"cert-portal/client"
)

// Collaborator is the remote spreadsheet endpoint the portal proxies to.
// Implemented by client.SheetsClient; faked in tests.
type Collaborator interface {
	Authenticate(ctx context.Context, username, password string) (*client.AuthResult, error)
	GetUsers(ctx context.Context) ([]client.UserRecord, error)
	AddUser(ctx context.Context, username, email, password, role string) (*client.OpResult, error)
	UpdateUser(ctx context.Context, originalUsername, username, email, password, role string) (*client.OpResult, error)
	DeleteUser(ctx context.Context, username string) (*client.OpResult, error)
	Verify(ctx context.Context, certificateNo string) (map[string]any, error)
	AddRecord(ctx context.Context, fields url.Values) (map[string]any, error)
	ListRecords(ctx context.Context) (json.RawMessage, error)
}
