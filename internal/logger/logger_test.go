package logger

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init("debug"))
	assert.NotNil(t, Log)

	assert.Error(t, Init("chatty"))
}

func TestWithLoggingHTTPMiddlewareRequestID(t *testing.T) {
	handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTeapot, recorder.Code)
	_, err := uuid.Parse(recorder.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set(RequestIDHeader, "given-id")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "given-id", recorder.Header().Get(RequestIDHeader))
}

func TestWithLoggingHTTPMiddlewareLevels(t *testing.T) {
	previous := Log
	t.Cleanup(func() { Log = previous })

	testCases := []struct {
		status    int
		wantLevel zapcore.Level
	}{
		{status: 0, wantLevel: zapcore.InfoLevel},
		{status: http.StatusNoContent, wantLevel: zapcore.InfoLevel},
		{status: http.StatusForbidden, wantLevel: zapcore.WarnLevel},
		{status: http.StatusInternalServerError, wantLevel: zapcore.ErrorLevel},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			Log = zap.New(core).Sugar()

			handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.status != 0 {
					w.WriteHeader(tc.status)
				}
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/addresses", nil))

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.wantLevel, entries[0].Level)
			assert.Contains(t, entries[0].Message, "/api/addresses")

			wantStatus := tc.status
			if wantStatus == 0 {
				wantStatus = http.StatusOK
			}
			assert.Contains(t, entries[0].Message, fmt.Sprintf("status %d", wantStatus))
		})
	}
}
