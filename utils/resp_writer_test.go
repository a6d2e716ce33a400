package utils

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseWriterBuffersUntilFlush(t *testing.T) {
	t.Parallel()

	real := httptest.NewRecorder()

	var body bytes.Buffer
	w := NewRespWriter(&body, real.Header())
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusTeapot)
	_, err := w.Write([]byte("short and stout"))
	require.NoError(t, err)

	// nothing reached the real writer yet
	require.Empty(t, real.Body.String())

	// headers added after the handler ran still make it out
	w.Header().Set("X-Late-Header", "1")
	require.NoError(t, w.FlushTo(real))

	require.Equal(t, http.StatusTeapot, real.Code)
	require.Equal(t, "short and stout", real.Body.String())
	require.Equal(t, "1", real.Header().Get("X-Late-Header"))
	require.Equal(t, "text/plain", real.Header().Get("Content-Type"))
}

func TestResponseWriterDefaultCode(t *testing.T) {
	t.Parallel()

	var body bytes.Buffer
	w := NewRespWriter(&body, http.Header{})
	require.Equal(t, 200, w.Code)
}
