package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cert-portal/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateFixture(t *testing.T) (*Gate, session.Store, *session.CookieCodec) {
	t.Helper()
	store := session.NewMemoryStore()
	codec := session.NewCookieCodec("test-secret", false)
	return NewGate(store, codec), store, codec
}

func requestWithSession(t *testing.T, store session.Store, codec *session.CookieCodec, role string) *http.Request {
	t.Helper()

	sess := session.New("alice", "alice@example.com", role, time.Hour)
	require.NoError(t, store.Create(t.Context(), sess))

	rec := httptest.NewRecorder()
	require.NoError(t, codec.Issue(rec, sess))

	req := httptest.NewRequest(http.MethodGet, "/good", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	return req
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireSession(t *testing.T) {
	e := echo.New()

	t.Run("anonymous request redirects to login", func(t *testing.T) {
		gate, _, _ := newGateFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/good", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := gate.RequireSession()(okHandler)(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("forged cookie redirects to login", func(t *testing.T) {
		gate, _, _ := newGateFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/good", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "forged"})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := gate.RequireSession()(okHandler)(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("live session passes and is bound to the context", func(t *testing.T) {
		gate, store, codec := newGateFixture(t)

		req := requestWithSession(t, store, codec, session.RoleUser)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var seen *session.Session
		err := gate.RequireSession()(func(c echo.Context) error {
			seen = SessionFrom(c)
			return c.String(http.StatusOK, "ok")
		})(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "alice", seen.UserID)
	})

	t.Run("logged-out session redirects to login", func(t *testing.T) {
		gate, store, codec := newGateFixture(t)

		req := requestWithSession(t, store, codec, session.RoleUser)
		sid := codec.Read(req)
		require.NoError(t, store.Delete(t.Context(), sid))

		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := gate.RequireSession()(okHandler)(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	t.Run("wrong role gets structured forbidden, not a redirect", func(t *testing.T) {
		gate, store, codec := newGateFixture(t)

		req := requestWithSession(t, store, codec, session.RoleUser)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := gate.RequireRole(session.RoleAdmin)(okHandler)(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, session.RoleAdmin, body["requiredRole"])
		assert.Equal(t, session.RoleUser, body["userRole"])
		assert.NotEmpty(t, body["error"])
	})

	t.Run("matching role passes", func(t *testing.T) {
		gate, store, codec := newGateFixture(t)

		req := requestWithSession(t, store, codec, session.RoleAdmin)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := gate.RequireRole(session.RoleAdmin)(okHandler)(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("anonymous request still redirects", func(t *testing.T) {
		gate, _, _ := newGateFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := gate.RequireRole(session.RoleAdmin)(okHandler)(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})
}
