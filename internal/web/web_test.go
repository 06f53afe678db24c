package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Peeetk/shop-backend/account/service"
	"github.com/Peeetk/shop-backend/account/storage/jsonfile"
	"github.com/Peeetk/shop-backend/internal/allowlist"
	"github.com/Peeetk/shop-backend/internal/checkout"
	"github.com/Peeetk/shop-backend/internal/config"
	"github.com/Peeetk/shop-backend/internal/web/webpath"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	bodies []string
}

func (f *fakeNotifier) Send(_ context.Context, _, _, body string) error {
	f.bodies = append(f.bodies, body)
	return nil
}

func newTestServer(t *testing.T, resetMode string) (*Server, *fakeNotifier) {
	t.Helper()
	log := logrus.New()
	store, err := jsonfile.New(log, filepath.Join(t.TempDir(), "accounts.json"))
	require.NoError(t, err)
	notify := &fakeNotifier{}
	accounts, err := service.New(log, service.Config{
		SigningKey: "test-key",
		ResetMode:  resetMode,
		ResetURL:   "http://localhost/reset-password",
	}, store, allowlist.NewStatic("alice@example.com"), notify)
	require.NoError(t, err)
	server := New(log, config.Server{Host: "127.0.0.1", Port: 0}, accounts, checkout.New(log, checkout.Config{}))
	return server, notify
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestRegisterAndLogin(t *testing.T) {
	server, _ := newTestServer(t, service.ResetModeToken)
	app := server.App()

	status, body := doJSON(t, app, http.MethodPost, webpath.ApiRegister, map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", user["email"])

	status, body = doJSON(t, app, http.MethodPost, webpath.ApiLogin, map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	token, ok := body["token"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, webpath.ApiMe, nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterRejections(t *testing.T) {
	server, _ := newTestServer(t, service.ResetModeToken)
	app := server.App()

	tests := []struct {
		name       string
		payload    map[string]string
		wantStatus int
	}{
		{
			name:       "missing fields",
			payload:    map[string]string{"email": "alice@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password",
			payload:    map[string]string{"email": "alice@example.com", "password": "abc"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not on allow-list",
			payload:    map[string]string{"email": "mallory@example.com", "password": "secret1"},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, webpath.ApiRegister, tt.payload)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, false, body["success"])
		})
	}

	status, _ := doJSON(t, app, http.MethodPost, webpath.ApiRegister, map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiRegister, map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)
}

// Wrong password and unknown account must produce identical responses.
func TestLoginNoEnumeration(t *testing.T) {
	server, _ := newTestServer(t, service.ResetModeToken)
	app := server.App()

	status, _ := doJSON(t, app, http.MethodPost, webpath.ApiRegister, map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)

	statusWrong, bodyWrong := doJSON(t, app, http.MethodPost, webpath.ApiLogin, map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	statusGhost, bodyGhost := doJSON(t, app, http.MethodPost, webpath.ApiLogin, map[string]string{
		"email": "ghost@example.com", "password": "secret1",
	})

	assert.Equal(t, http.StatusUnauthorized, statusWrong)
	assert.Equal(t, statusWrong, statusGhost)
	assert.Equal(t, bodyWrong, bodyGhost)
}

func TestChangePasswordEndpoint(t *testing.T) {
	server, _ := newTestServer(t, service.ResetModeToken)
	app := server.App()

	status, _ := doJSON(t, app, http.MethodPost, webpath.ApiRegister, map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiChangePassword, map[string]string{
		"email": "alice@example.com", "oldPassword": "wrong", "newPassword": "secret2",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiChangePassword, map[string]string{
		"email": "ghost@example.com", "oldPassword": "secret1", "newPassword": "secret2",
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiChangePassword, map[string]string{
		"email": "alice@example.com", "oldPassword": "secret1", "newPassword": "secret2",
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiLogin, map[string]string{
		"email": "alice@example.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestForgotAndResetEndpoints(t *testing.T) {
	server, notify := newTestServer(t, service.ResetModeToken)
	app := server.App()

	status, _ := doJSON(t, app, http.MethodPost, webpath.ApiRegister, map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	notify.bodies = nil

	// A ghost address gets the same acknowledgment and no mail.
	status, body := doJSON(t, app, http.MethodPost, webpath.ApiForgotPassword, map[string]string{
		"email": "ghost@example.com",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, notify.bodies)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiForgotPassword, map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, notify.bodies, 1)

	_, rest, ok := strings.Cut(notify.bodies[0], "?token=")
	require.True(t, ok)
	token := rest
	if i := strings.IndexAny(token, " \n"); i >= 0 {
		token = token[:i]
	}

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiResetPassword, map[string]string{
		"token": "garbage", "newPassword": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiResetPassword, map[string]string{
		"token": token, "newPassword": "secret2",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiLogin, map[string]string{
		"email": "alice@example.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusOK, status)
}

// In direct mode the reset-password route is not mounted at all.
func TestDirectModeHasNoResetRoute(t *testing.T) {
	server, _ := newTestServer(t, service.ResetModeDirect)
	app := server.App()

	status, _ := doJSON(t, app, http.MethodPost, webpath.ApiResetPassword, map[string]string{
		"token": "anything", "newPassword": "secret2",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteAccountEndpoint(t *testing.T) {
	server, _ := newTestServer(t, service.ResetModeToken)
	app := server.App()

	status, _ := doJSON(t, app, http.MethodPost, webpath.ApiRegister, map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiDeleteAccount, map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiDeleteAccount, map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, webpath.ApiLogin, map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCheckoutEmptyCart(t *testing.T) {
	server, _ := newTestServer(t, service.ResetModeToken)
	app := server.App()

	status, body := doJSON(t, app, http.MethodPost, webpath.ApiCheckout, map[string]any{
		"items": []any{},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestMeRejectsBadToken(t *testing.T) {
	server, _ := newTestServer(t, service.ResetModeToken)
	app := server.App()

	req := httptest.NewRequest(http.MethodGet, webpath.ApiMe, nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
