package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cert-portal/client"
	"cert-portal/middleware"
	"cert-portal/session"
	"cert-portal/utils/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminFixture(t *testing.T) (*AdminHandler, *MockCollaborator) {
	t.Helper()
	collab := new(MockCollaborator)
	return NewAdminHandler(collab, validator.New()), collab
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) opFailure {
	t.Helper()
	var body opFailure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAdminList(t *testing.T) {
	t.Run("relays the user list", func(t *testing.T) {
		h, collab := newAdminFixture(t)
		collab.On("GetUsers", mock.Anything).Return([]client.UserRecord{
			{Username: "u1", Email: "u1@x.y", Role: "user"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)

		require.NoError(t, h.List(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		var users []client.UserRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		require.Len(t, users, 1)
		assert.Equal(t, "u1", users[0].Username)
	})

	t.Run("upstream failure maps to 500", func(t *testing.T) {
		h, collab := newAdminFixture(t)
		collab.On("GetUsers", mock.Anything).Return(nil, client.ErrUpstreamTransport)

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)

		require.NoError(t, h.List(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAdminAdd(t *testing.T) {
	valid := `{"username":"newuser","email":"n@x.y","password":"secret99","role":"user"}`

	t.Run("valid user is relayed", func(t *testing.T) {
		h, collab := newAdminFixture(t)
		collab.On("AddUser", mock.Anything, "newuser", "n@x.y", "secret99", "user").
			Return(&client.OpResult{Success: true, Message: "User added"}, nil)

		req, rec := jsonRequest(http.MethodPost, "/admin/users", valid)
		c := echo.New().NewContext(req, rec)

		require.NoError(t, h.Add(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		collab.AssertExpectations(t)
	})

	t.Run("short username is rejected locally", func(t *testing.T) {
		h, collab := newAdminFixture(t)

		req, rec := jsonRequest(http.MethodPost, "/admin/users",
			`{"username":"ab","email":"n@x.y","password":"secret99","role":"user"}`)
		c := echo.New().NewContext(req, rec)

		require.NoError(t, h.Add(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeFailure(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "Username must be at least 3 characters long", body.Message)
		collab.AssertNotCalled(t, "AddUser")
	})

	t.Run("short password is rejected locally", func(t *testing.T) {
		h, collab := newAdminFixture(t)

		req, rec := jsonRequest(http.MethodPost, "/admin/users",
			`{"username":"newuser","email":"n@x.y","password":"pw","role":"user"}`)
		c := echo.New().NewContext(req, rec)

		require.NoError(t, h.Add(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Password must be at least 6 characters long", decodeFailure(t, rec).Message)
		collab.AssertNotCalled(t, "AddUser")
	})

	t.Run("unknown role is rejected locally", func(t *testing.T) {
		h, collab := newAdminFixture(t)

		req, rec := jsonRequest(http.MethodPost, "/admin/users",
			`{"username":"newuser","email":"n@x.y","password":"secret99","role":"root"}`)
		c := echo.New().NewContext(req, rec)

		require.NoError(t, h.Add(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, `Role must be either "user" or "admin"`, decodeFailure(t, rec).Message)
		collab.AssertNotCalled(t, "AddUser")
	})

	t.Run("missing fields are rejected locally", func(t *testing.T) {
		h, collab := newAdminFixture(t)

		req, rec := jsonRequest(http.MethodPost, "/admin/users", `{"username":"newuser"}`)
		c := echo.New().NewContext(req, rec)

		require.NoError(t, h.Add(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		collab.AssertNotCalled(t, "AddUser")
	})
}

func TestAdminUpdate(t *testing.T) {
	t.Run("blank password passes validation and is relayed blank", func(t *testing.T) {
		h, collab := newAdminFixture(t)
		collab.On("UpdateUser", mock.Anything, "olduser", "newuser", "n@x.y", "", "admin").
			Return(&client.OpResult{Success: true}, nil)

		req, rec := jsonRequest(http.MethodPut, "/admin/users/olduser",
			`{"username":"newuser","email":"n@x.y","role":"admin"}`)
		c := echo.New().NewContext(req, rec)
		c.SetParamNames("username")
		c.SetParamValues("olduser")

		require.NoError(t, h.Update(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		collab.AssertExpectations(t)
	})

	t.Run("short optional password is still rejected", func(t *testing.T) {
		h, collab := newAdminFixture(t)

		req, rec := jsonRequest(http.MethodPut, "/admin/users/olduser",
			`{"username":"newuser","email":"n@x.y","password":"pw","role":"admin"}`)
		c := echo.New().NewContext(req, rec)
		c.SetParamNames("username")
		c.SetParamValues("olduser")

		require.NoError(t, h.Update(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		collab.AssertNotCalled(t, "UpdateUser")
	})
}

func TestAdminDelete(t *testing.T) {
	t.Run("self-delete is rejected without an upstream call", func(t *testing.T) {
		h, collab := newAdminFixture(t)

		store := session.NewMemoryStore()
		codec := session.NewCookieCodec("test-secret", false)
		gate := middleware.NewGate(store, codec)

		sess := session.New("boss", "boss@x.y", session.RoleAdmin, time.Hour)
		require.NoError(t, store.Create(t.Context(), sess))
		issueRec := httptest.NewRecorder()
		require.NoError(t, codec.Issue(issueRec, sess))

		req := httptest.NewRequest(http.MethodDelete, "/admin/users/boss", nil)
		req.AddCookie(issueRec.Result().Cookies()[0])
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)
		c.SetParamNames("username")
		c.SetParamValues("boss")

		gated := gate.RequireRole(session.RoleAdmin)(h.Delete)
		require.NoError(t, gated(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "You cannot delete your own account", decodeFailure(t, rec).Message)
		collab.AssertNotCalled(t, "DeleteUser")
	})

	t.Run("other users are relayed", func(t *testing.T) {
		h, collab := newAdminFixture(t)
		collab.On("DeleteUser", mock.Anything, "victim").
			Return(&client.OpResult{Success: true, Message: "User deleted"}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/admin/users/victim", nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)
		c.SetParamNames("username")
		c.SetParamValues("victim")

		require.NoError(t, h.Delete(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		collab.AssertExpectations(t)
	})
}
