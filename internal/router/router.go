// Package router wires the HTTP API of the service: chi routes, JSON request
// decoding and validation, and the mapping of service errors to status codes.
package router

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/cors"

	"github.com/patric-chuzhbe/favaddr/internal/auth"
	"github.com/patric-chuzhbe/favaddr/internal/gzippedhttp"
	"github.com/patric-chuzhbe/favaddr/internal/logger"
	"github.com/patric-chuzhbe/favaddr/internal/models"
	"github.com/patric-chuzhbe/favaddr/internal/service"
)

type usersService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
}

type addressesService interface {
	Create(ctx context.Context, userID int64, name, searchWord, description string) (*models.Address, error)
	List(ctx context.Context, userID int64) ([]models.Address, error)
	Search(ctx context.Context, userID int64, radiusKm float64, origin models.Coordinate) ([]models.Address, error)
	Update(ctx context.Context, userID, addressID int64, patch models.AddressPatch) (*models.Address, error)
	Delete(ctx context.Context, userID, addressID int64) error
}

type systemService interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (*models.InternalStatsResponse, error)
}

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}

type subnetGuard interface {
	TrustedOnly(h http.Handler) http.Handler
}

// Router holds the handlers of the API.
type Router struct {
	users     usersService
	addresses addressesService
	system    systemService
	validate  *validator.Validate
}

type initOptions struct {
	basePath           string
	corsAllowedOrigins []string
}

// InitOption configures New.
type InitOption func(*initOptions)

// WithBasePath mounts the API under path. "" and "/" mount it at the root.
func WithBasePath(path string) InitOption {
	return func(options *initOptions) {
		options.basePath = path
	}
}

// WithCORSAllowedOrigins sets the origins allowed to call the API from a browser.
func WithCORSAllowedOrigins(origins []string) InitOption {
	return func(options *initOptions) {
		options.corsAllowedOrigins = origins
	}
}

// New builds the chi router. /ping stays at the root; everything else is
// mounted under the base path, "/api" unless configured otherwise.
func New(
	users usersService,
	addresses addressesService,
	system systemService,
	authMiddleware authenticator,
	ipChecker subnetGuard,
	optionsProto ...InitOption,
) *chi.Mux {
	options := &initOptions{
		basePath:           "/api",
		corsAllowedOrigins: []string{"*"},
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	myRouter := &Router{
		users:     users,
		addresses: addresses,
		system:    system,
		validate:  newValidator(),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		middleware.Recoverer,
		cors.New(cors.Options{
			AllowedOrigins: options.corsAllowedOrigins,
			AllowedMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodDelete,
			},
			AllowedHeaders: []string{"Authorization", "Content-Type", logger.RequestIDHeader},
			ExposedHeaders: []string{logger.RequestIDHeader},
		}).Handler,
		middleware.Compress(5, "application/json"),
		gzippedhttp.DecompressRequest,
	)

	router.Get(`/ping`, myRouter.GetPing)

	api := func(r chi.Router) {
		r.Post(`/users`, myRouter.PostUsers)
		r.Post(`/users/tokens`, myRouter.PostUsersTokens)
		r.With(ipChecker.TrustedOnly).Get(`/internal/stats`, myRouter.GetInternalStats)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AuthenticateUser)
			r.Get(`/users/me`, myRouter.GetUsersMe)
			r.Post(`/addresses`, myRouter.PostAddresses)
			r.Get(`/addresses`, myRouter.GetAddresses)
			r.Post(`/addresses/searches`, myRouter.PostAddressesSearches)
			r.Put(`/addresses/{id}`, myRouter.PutAddress)
			r.Delete(`/addresses/{id}`, myRouter.DeleteAddress)
		})
	}

	if options.basePath == "" || options.basePath == "/" {
		api(router)
	} else {
		router.Route(options.basePath, api)
	}

	return router
}

// GetPing answers 200 while the storage is reachable.
func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.system.Ping(request.Context()); err != nil {
		router.writeError(response, request, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetInternalStats reports the number of users and stored addresses.
func (router *Router) GetInternalStats(response http.ResponseWriter, request *http.Request) {
	stats, err := router.system.Stats(request.Context())
	if err != nil {
		router.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func userFromRequest(response http.ResponseWriter, request *http.Request) (*models.User, bool) {
	usr, ok := auth.UserFromContext(request.Context())
	if !ok {
		writeJSON(response, http.StatusForbidden, models.ErrorResponse{Message: "Forbidden"})
	}

	return usr, ok
}

func addressIDFromRequest(request *http.Request) (int64, error) {
	addressID, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil || addressID <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", service.ErrValidation)
	}

	return addressID, nil
}
