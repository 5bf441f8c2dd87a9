package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_None(t *testing.T) {
	shutdown, err := Setup(context.Background(), "storefront-test", ExporterNone, "")

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_Stdout(t *testing.T) {
	shutdown, err := Setup(context.Background(), "storefront-test", ExporterStdout, "")

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, err := Setup(context.Background(), "storefront-test", "zipkin", "")

	assert.Error(t, err)
}

func TestHandler_PassesThrough(t *testing.T) {
	h := Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), "test")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
