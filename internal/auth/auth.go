// Package auth provides stateless JWT session tokens and the HTTP middleware
// that resolves a bearer token into the authenticated user.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/favaddr/internal/logger"
	"github.com/patric-chuzhbe/favaddr/internal/models"
)

type userKeeper interface {
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

type tokenVerifier interface {
	Verify(tokenString string) (int64, error)
}

// Auth authenticates requests carrying an `Authorization: Bearer` header.
type Auth struct {
	db     userKeeper
	tokens tokenVerifier
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserKey is the context key holding the authenticated *models.User.
const UserKey ContextKey = "user"

const bearerPrefix = "Bearer "

// New creates the authentication middleware provider.
func New(db userKeeper, tokens tokenVerifier) *Auth {
	return &Auth{
		db:     db,
		tokens: tokens,
	}
}

// AuthenticateUser rejects the request with 403 unless it carries a valid
// token of an existing user; on success the user is stored in the request
// context for the downstream handler.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		tokenString, ok := bearerToken(request)
		if !ok {
			writeForbidden(response)
			return
		}

		userID, err := a.tokens.Verify(tokenString)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.tokens.Verify()`: ", zap.Error(err))
			writeForbidden(response)
			return
		}

		usr, err := a.db.GetUserByID(request.Context(), userID)
		if errors.Is(err, models.ErrNotFound) {
			writeForbidden(response)
			return
		}
		if err != nil {
			logger.Log.Errorln("Error calling the `a.db.GetUserByID()`: ", zap.Error(err))
			response.Header().Set("Content-Type", "application/json")
			response.WriteHeader(http.StatusInternalServerError)
			_, _ = response.Write([]byte(`{"message":"Internal server error"}`))
			return
		}

		h.ServeHTTP(response, request.WithContext(WithUser(request.Context(), usr)))
	}

	return http.HandlerFunc(middleware)
}

// UserFromContext returns the user attached by AuthenticateUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	usr, ok := ctx.Value(UserKey).(*models.User)
	return usr, ok && usr != nil
}

// WithUser returns a copy of ctx carrying usr.
func WithUser(ctx context.Context, usr *models.User) context.Context {
	return context.WithValue(ctx, UserKey, usr)
}

func bearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	tokenString := strings.TrimSpace(header[len(bearerPrefix):])

	return tokenString, tokenString != ""
}

func writeForbidden(response http.ResponseWriter) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusForbidden)
	_, _ = response.Write([]byte(`{"message":"Forbidden"}`))
}
