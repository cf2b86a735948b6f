package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func runRequestIDMiddleware(t *testing.T, header string) (string, *httptest.ResponseRecorder) {
	t.Helper()

	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return seen, recorder
}

func TestRequestIDMiddleware_GeneratesWhenAbsent(t *testing.T) {
	seen, recorder := runRequestIDMiddleware(t, "")

	require.NotEmpty(t, seen)
	require.Equal(t, seen, recorder.Header().Get(RequestIDHeader))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
}

func TestRequestIDMiddleware_HonorsClientID(t *testing.T) {
	seen, recorder := runRequestIDMiddleware(t, "fw-update-8831")

	require.Equal(t, "fw-update-8831", seen)
	require.Equal(t, "fw-update-8831", recorder.Header().Get(RequestIDHeader))
}

func TestRequestIDMiddleware_ReplacesOversizedID(t *testing.T) {
	oversized := strings.Repeat("x", maxRequestIDLen+1)
	seen, _ := runRequestIDMiddleware(t, oversized)

	require.NotEqual(t, oversized, seen)
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
}

func TestRequestIDFrom_MissingMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	require.Empty(t, RequestIDFrom(req.Context()))
}
