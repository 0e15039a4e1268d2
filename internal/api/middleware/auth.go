package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// Context keys set by Auth.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

// Authenticator verifies Basic credentials against the user store.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// Auth accepts either a Bearer JWT signed with jwtSecret or Basic
// credentials checked through authn, and injects user id, username and role
// into the context.
func Auth(jwtSecret string, authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="fitness-club"`)
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			scheme, credentials, ok := strings.Cut(authHeader, " ")
			if !ok || credentials == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			var (
				id       int64
				username string
				role     domain.Role
				err      error
			)
			switch {
			case strings.EqualFold(scheme, "bearer"):
				id, username, role, err = parseToken(credentials, jwtSecret)
			case strings.EqualFold(scheme, "basic") && authn != nil:
				id, username, role, err = basicUser(c, authn)
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			if err != nil {
				return err
			}

			c.Set(ContextUserID, id)
			c.Set(ContextUsername, username)
			c.Set(ContextRole, string(role))

			return next(c)
		}
	}
}

func parseToken(raw, secret string) (int64, string, domain.Role, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return 0, "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	sub, _ := claims.GetSubject()
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	roleClaim, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleClaim)
	if err != nil {
		return 0, "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token role")
	}
	username, _ := claims["username"].(string)
	return id, username, role, nil
}

func basicUser(c echo.Context, authn Authenticator) (int64, string, domain.Role, error) {
	username, password, ok := c.Request().BasicAuth()
	if !ok {
		return 0, "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid basic credentials")
	}

	user, err := authn.Authenticate(c.Request().Context(), username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="fitness-club"`)
			return 0, "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return 0, "", "", err
	}
	return user.ID, user.Username, user.Role, nil
}
