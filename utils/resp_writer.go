package utils

import (
	"bytes"
	"net/http"
)

var _ http.ResponseWriter = &ResponseWriter{}

// ResponseWriter buffers a handler's response so headers can still be
// added after the handler has run, before anything reaches the wire.
type ResponseWriter struct {
	Body    *bytes.Buffer
	Headers http.Header
	Code    int
}

func NewRespWriter(body *bytes.Buffer, header http.Header) ResponseWriter {
	return ResponseWriter{
		Body:    body,
		Headers: header,
		Code:    200,
	}
}

func (r *ResponseWriter) Header() http.Header {
	return r.Headers
}

func (r *ResponseWriter) Write(b []byte) (int, error) {
	return r.Body.Write(b)
}

func (r *ResponseWriter) WriteHeader(statusCode int) {
	r.Code = statusCode
}

// FlushTo replays the buffered status code and body onto the real
// writer. The header map is shared with w, so headers added after the
// handler ran are included.
func (r *ResponseWriter) FlushTo(w http.ResponseWriter) error {
	w.WriteHeader(r.Code)
	_, err := w.Write(r.Body.Bytes())
	return err
}
