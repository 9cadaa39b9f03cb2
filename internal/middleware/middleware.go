package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/metrics"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type Middleware struct {
	limiter *IPRateLimiter
	logger  *logger_i.Logger
}

// New builds the request pipeline. A nil limiter disables rate limiting.
func New(limiter *IPRateLimiter) *Middleware {
	return &Middleware{limiter: limiter, logger: logger_i.NewLogger("middleware")}
}

// Wrap is a chi middleware: trace id, then rate limit, then the handler
// behind a status recorder.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := m.processRequest(requestResponseStruct{req: r, writer: rec, logger: m.logger})

		if handleBadRequest(re) {
			next.ServeHTTP(rec, re.req)
		}

		path := routePattern(re.req)
		metrics.HttpRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.Status)).Inc() //metrics
		re.logger.Info("Request served", "method", r.Method, "path", r.URL.Path, "status", rec.Status, "duration", time.Since(start))
	})
}

func (m *Middleware) processRequest(re requestResponseStruct) requestResponseStruct {
	re = injectTrace(re)
	return m.rateLimiter(re)
}

// routePattern keeps the metric label bounded: /documents/{id} rather than
// one series per document.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
