package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type memRevocations map[string]bool

func (m memRevocations) Revoke(_ context.Context, jti string, _ time.Time) error {
	m[jti] = true
	return nil
}

func (m memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return m[jti], nil
}

func TestAuthenticator_Required(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, "quill-api", "quill-clients", time.Hour)
	expiredTokens := auth.NewTokenManager(testSecret, "quill-api", "quill-clients", -time.Hour)
	revocations := memRevocations{}
	authn := NewAuthenticator(tokens, revocations)

	app := fiber.New()
	app.Get("/test", authn.Required(), func(c *fiber.Ctx) error {
		userID, _ := UserID(c)
		return c.JSON(fiber.Map{"userID": userID})
	})

	valid, _, err := tokens.Issue(123, "alice")
	require.NoError(t, err)
	expired, _, err := expiredTokens.Issue(123, "alice")
	require.NoError(t, err)
	revoked, revokedClaims, err := tokens.Issue(9, "gone")
	require.NoError(t, err)
	revocations[revokedClaims.ID] = true

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK, 123},
		{"Lowercase scheme", "bearer " + valid, http.StatusOK, 123},
		{"Missing Header", "", http.StatusUnauthorized, 0},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0},
		{"Malformed Token", "Bearer malformed.token.here", http.StatusUnauthorized, 0},
		{"Expired Token", "Bearer " + expired, http.StatusUnauthorized, 0},
		{"Revoked Token", "Bearer " + revoked, http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, float64(tt.expectedUserID), body["userID"])
			} else {
				assert.Equal(t, "UNAUTHORIZED", body["code"])
			}
		})
	}
}

func TestAuthenticator_Optional(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, "quill-api", "quill-clients", time.Hour)
	authn := NewAuthenticator(tokens, nil)

	app := fiber.New()
	app.Get("/feed", authn.Optional(), func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		return c.JSON(fiber.Map{"authenticated": ok, "userID": userID})
	})

	valid, _, err := tokens.Issue(5, "bob")
	require.NoError(t, err)

	for header, want := range map[string]bool{
		"":                false,
		"Bearer junk":     false,
		"Bearer " + valid: true,
	} {
		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, want, body["authenticated"], header)
	}
}
