package router

import (
	"errors"
	"net/http"

	"github.com/patric-chuzhbe/favaddr/internal/models"
)

// PostUsers registers an account: POST /users {"email","password"}.
func (router *Router) PostUsers(response http.ResponseWriter, request *http.Request) {
	withBodyLimit(response, request)

	var credentials models.Credentials
	if err := decodeJSON(request, &credentials, router.validate); err != nil {
		router.writeError(response, request, err)
		return
	}

	usr, err := router.users.Register(request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		router.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.UserResponse{Item: usr})
}

// PostUsersTokens logs in: POST /users/tokens {"email","password"} -> {"token"}.
func (router *Router) PostUsersTokens(response http.ResponseWriter, request *http.Request) {
	withBodyLimit(response, request)

	// length limits are not checked here, so every bad password reads as
	// invalid credentials
	var credentials models.Credentials
	if err := decodeJSON(request, &credentials, nil); err != nil {
		router.writeError(response, request, err)
		return
	}

	token, err := router.users.Login(request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		router.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.TokenResponse{Token: token})
}

// GetUsersMe returns the profile of the authenticated user.
func (router *Router) GetUsersMe(response http.ResponseWriter, request *http.Request) {
	usr, ok := userFromRequest(response, request)
	if !ok {
		return
	}

	profile, err := router.users.Profile(request.Context(), usr.ID)
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(response, http.StatusForbidden, models.ErrorResponse{Message: "Forbidden"})
		return
	}
	if err != nil {
		router.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.UserResponse{Item: profile})
}
