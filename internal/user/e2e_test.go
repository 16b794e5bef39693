package user_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-backend/internal/auth"
	"auth-backend/internal/password"
	"auth-backend/internal/token"
	"auth-backend/internal/user"
)

// full login → me → update flow through the real auth gate, wired the same
// way cmd/api wires it.
func TestLoginMeUpdate_EndToEnd(t *testing.T) {
	hasher, err := password.New(password.MethodPBKDF2SHA256, 1000)
	require.NoError(t, err)
	codec, err := token.NewCodec("test-secret", "HS256", 24*time.Hour)
	require.NoError(t, err)

	service := user.NewService(user.NewInMemoryRepository(nil), hasher)
	handler := user.NewHandler(service, codec)

	app := fiber.New()
	handler.RegisterPublicRoutes(app)
	app.Use("/user", auth.New(auth.Config{Codec: codec, Users: service}))
	handler.RegisterProtectedRoutes(app)

	_, err = service.Register("test@example.com", "password123", "Test", "User")
	require.NoError(t, err)

	do := func(method, path, authorization, payload string) (int, map[string]any) {
		t.Helper()
		var body io.Reader
		if payload != "" {
			body = strings.NewReader(payload)
		}
		req := httptest.NewRequest(method, path, body)
		if payload != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		res, err := app.Test(req)
		require.NoError(t, err)
		b, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		out := map[string]any{}
		require.NoError(t, json.Unmarshal(b, &out), "body: %s", b)
		return res.StatusCode, out
	}

	// login
	code, body := do("POST", "/auth/login", "", `{"email":"test@example.com","password":"password123"}`)
	require.Equal(t, fiber.StatusOK, code)
	require.Equal(t, true, body["success"])
	bearer, _ := body["token"].(string)
	require.NotEmpty(t, bearer)

	loginUser := body["user"].(map[string]any)
	assert.Equal(t, "test@example.com", loginUser["email"])
	assert.Equal(t, "Test", loginUser["first_name"])
	assert.Equal(t, "User", loginUser["last_name"])

	// me returns the same profile
	code, body = do("GET", "/user/me", "Bearer "+bearer, "")
	require.Equal(t, fiber.StatusOK, code)
	meUser := body["user"].(map[string]any)
	assert.Equal(t, loginUser["id"], meUser["id"])
	assert.Equal(t, loginUser["updated_at"], meUser["updated_at"])

	before, err := time.Parse(time.RFC3339Nano, meUser["updated_at"].(string))
	require.NoError(t, err)

	// update first name only
	code, body = do("PATCH", "/user/update", "Bearer "+bearer, `{"first_name":"John"}`)
	require.Equal(t, fiber.StatusOK, code)
	updatedUser := body["user"].(map[string]any)
	assert.Equal(t, "John", updatedUser["first_name"])
	assert.Equal(t, "User", updatedUser["last_name"])

	after, err := time.Parse(time.RFC3339Nano, updatedUser["updated_at"].(string))
	require.NoError(t, err)
	assert.True(t, after.After(before), "updated_at must move forward, got %v -> %v", before, after)

	// the same token keeps working and reflects the update
	code, body = do("GET", "/user/me", "Bearer "+bearer, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "John", body["user"].(map[string]any)["first_name"])

	// and the protected surface stays closed without it
	code, _ = do("GET", "/user/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
}
