// Package middleware provides request logging, authentication, rate limiting and tracing middleware.
package middleware

import (
	"errors"
	"strings"

	"quill/internal/auth"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by Authenticator.
const (
	LocalUserID = "userID"
	LocalClaims = "tokenClaims"
)

var errNoToken = errors.New("no bearer token")

// Authenticator resolves bearer tokens into a request-scoped user id.
type Authenticator struct {
	tokens  *auth.TokenManager
	revoked auth.RevocationStore
}

// NewAuthenticator returns an Authenticator. revoked may be nil.
func NewAuthenticator(tokens *auth.TokenManager, revoked auth.RevocationStore) *Authenticator {
	return &Authenticator{tokens: tokens, revoked: revoked}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", errNoToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}

func (a *Authenticator) identify(c *fiber.Ctx) (*auth.Claims, error) {
	raw, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	if a.revoked != nil {
		revoked, err := a.revoked.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			// Redis outage must not lock everyone out.
			Logger.WarnContext(c.UserContext(), "token revocation check failed", "error", err)
		} else if revoked {
			return nil, errors.New("token has been revoked")
		}
	}
	return claims, nil
}

func (a *Authenticator) attach(c *fiber.Ctx, claims *auth.Claims) {
	userID, _ := claims.UserID()
	c.Locals(LocalUserID, userID)
	c.Locals(LocalClaims, claims)
	c.SetUserContext(WithUserID(c.UserContext(), userID))
}

// Required rejects requests without a valid, unrevoked bearer token.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := a.identify(c)
		if err != nil {
			msg := "Invalid or expired token"
			switch {
			case errors.Is(err, errNoToken):
				msg = "Authorization required"
			case !errors.Is(err, auth.ErrInvalidToken):
				msg = err.Error()
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}
		a.attach(c, claims)
		return c.Next()
	}
}

// Optional attaches identity when a valid token is present and never rejects.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := a.identify(c); err == nil {
			a.attach(c, claims)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}

// Claims returns the verified token claims, if any.
func Claims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*auth.Claims)
	return claims, ok
}
