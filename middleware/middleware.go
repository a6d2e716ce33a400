// Package middleware hooks the inspection engine into a request
// lifecycle: one engine instance per request, started before the
// handler runs and finalized after it returns. The response body is
// buffered so the stats headers can still be injected once the report
// is ready.
package middleware

import (
	"bytes"
	"net/http"

	"github.com/queryinspect/queryinspect/component/collector"
	"github.com/queryinspect/queryinspect/component/inspector"
	"github.com/queryinspect/queryinspect/config"
	"github.com/queryinspect/queryinspect/utils"

	"github.com/gin-gonic/gin"
)

// Inspect returns a gin middleware reporting on the queries each
// request executes. Disabled or ignored requests pass through without
// buffering, logging or header injection.
func Inspect(cfg config.Inspect, col *collector.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || cfg.IgnorePath(c.Request.URL.Path) {
			c.Next()
			return
		}

		engine := inspector.NewEngine(cfg, nil)
		engine.Start(c.Request.URL.Path, col.Count())

		w := &bufferedGinWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()
		c.Writer = w.ResponseWriter

		report, ok := engine.Finalize(col.All())
		if ok {
			for name, value := range report.Headers {
				c.Writer.Header().Set(name, value)
			}
		}
		w.flush()
	}
}

// bufferedGinWriter delays the response until the report's headers are
// known. Only the write path is intercepted; everything else defers to
// the wrapped gin writer.
type bufferedGinWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
	code int
}

func (w *bufferedGinWriter) WriteHeader(code int) {
	w.code = code
}

// WriteHeaderNow must not reach the wire before the report's headers
// are set; the status goes out in flush.
func (w *bufferedGinWriter) WriteHeaderNow() {}

func (w *bufferedGinWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferedGinWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

func (w *bufferedGinWriter) Status() int {
	if w.code != 0 {
		return w.code
	}
	return http.StatusOK
}

func (w *bufferedGinWriter) Size() int {
	return w.body.Len()
}

func (w *bufferedGinWriter) Written() bool {
	return w.code != 0 || w.body.Len() > 0
}

func (w *bufferedGinWriter) flush() {
	w.ResponseWriter.WriteHeader(w.Status())
	if w.body.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.body.Bytes())
	} else {
		w.ResponseWriter.WriteHeaderNow()
	}
}

// Handler is the framework-neutral variant of Inspect for plain
// net/http hosts.
func Handler(cfg config.Inspect, col *collector.Collector, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Enabled || cfg.IgnorePath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		engine := inspector.NewEngine(cfg, nil)
		engine.Start(r.URL.Path, col.Count())

		var body bytes.Buffer
		buffered := utils.NewRespWriter(&body, w.Header())
		next.ServeHTTP(&buffered, r)

		report, ok := engine.Finalize(col.All())
		if ok {
			for name, value := range report.Headers {
				w.Header().Set(name, value)
			}
		}
		_ = buffered.FlushTo(w)
	})
}
