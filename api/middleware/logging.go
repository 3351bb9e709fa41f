package middleware

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

const ctxTrace contextKey = "request_trace"

// requestTrace is filled in by inner middleware so the completion line can
// name the caller.
type requestTrace struct {
	userID string
	role   string
}

func traceFromContext(ctx context.Context) *requestTrace {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(ctxTrace).(*requestTrace)
	return t
}

// Logging writes request.start and request.complete for every request.
// Server errors complete at error level, client errors at warn.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			trace := &requestTrace{}
			ctx := context.WithValue(r.Context(), ctxTrace, trace)
			ctx = logg.WithFields(ctx, map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			logg.Info(ctx, "request.start")

			rec := &statusRecorder{ResponseWriter: w}
			began := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			fields := map[string]any{
				"status":      rec.code(),
				"bytes":       rec.bytes,
				"duration_ms": time.Since(began).Milliseconds(),
			}
			if trace.userID != "" {
				fields["user_id"] = trace.userID
				fields["role"] = trace.role
			}
			if route := routePattern(r); route != r.URL.Path {
				fields["route"] = route
			}
			ctx = logg.WithFields(ctx, fields)

			switch code := rec.code(); {
			case code >= http.StatusInternalServerError:
				logg.Error(ctx, "request.complete", nil)
			case code >= http.StatusBadRequest:
				logg.Warn(ctx, "request.complete")
			default:
				logg.Info(ctx, "request.complete")
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack hands the connection to websocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
