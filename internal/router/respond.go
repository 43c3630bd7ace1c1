package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/favaddr/internal/logger"
	"github.com/patric-chuzhbe/favaddr/internal/models"
	"github.com/patric-chuzhbe/favaddr/internal/service"
)

const maxRequestBodySize = 1 << 20

var errRequestTooLarge = errors.New("request body too large")

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// decodeJSON reads exactly one JSON document into dst, rejecting unknown
// fields, and validates it when validate is not nil.
func decodeJSON(request *http.Request, dst any, validate *validator.Validate) error {
	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errRequestTooLarge
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", service.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %s", service.ErrValidation, err.Error())
	}
	if decoder.More() {
		return fmt.Errorf("%w: unexpected data after the JSON body", service.ErrValidation)
	}

	if validate == nil {
		return nil
	}

	err := validate.Struct(dst)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return fmt.Errorf("%w: %s", service.ErrValidation, describeFieldError(validationErrors[0]))
	}

	return err
}

func describeFieldError(fieldError validator.FieldError) string {
	field := fieldError.Namespace()
	if _, rest, found := strings.Cut(field, "."); found {
		field = rest
	}

	switch fieldError.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return field + " must be greater than " + fieldError.Param()
	case "min", "max":
		return fmt.Sprintf("%s is out of range (%s=%s)", field, fieldError.Tag(), fieldError.Param())
	default:
		return field + " is invalid"
	}
}

func withBodyLimit(response http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(response, request.Body, maxRequestBodySize)
}

func writeJSON(response http.ResponseWriter, status int, body any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)

	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Errorln("Error calling the `json.NewEncoder(response).Encode()`: ", zap.Error(err))
	}
}

// writeError maps err to the status code and message of the API. Causes of
// 500 responses are logged and never sent to the client.
func (router *Router) writeError(response http.ResponseWriter, request *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, errRequestTooLarge):
		status, message = http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.Is(err, service.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrDuplicateEmail):
		status, message = http.StatusBadRequest, "Email already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, message = http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, service.ErrLocationNotFound):
		status, message = http.StatusNotFound, "Location not found"
	case errors.Is(err, models.ErrNotFound):
		status, message = http.StatusNotFound, "Address not found"
	default:
		logger.Log.Errorw("request failed",
			"method", request.Method,
			"uri", request.RequestURI,
			"request_id", request.Header.Get(logger.RequestIDHeader),
			zap.Error(err),
		)
	}

	writeJSON(response, status, models.ErrorResponse{Message: message})
}
