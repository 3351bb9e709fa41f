package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/marketplace-backend/api/responses"
	"github.com/angelmondragon/marketplace-backend/api/validators"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

const maxRateLimitBody = 64 << 10

// WindowLimiter counts hits per scope in fixed windows.
type WindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy throttles one auth surface per client IP and per email.
// A zero limit disables that dimension.
type RateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

// LoginRateLimit is the policy for POST /auth/login.
func LoginRateLimit(cfg config.AuthRateLimitConfig) RateLimitPolicy {
	return RateLimitPolicy{Name: "login", Window: cfg.LoginWindow, IPLimit: cfg.LoginIPLimit, EmailLimit: cfg.LoginEmailLimit}
}

// RegisterRateLimit is the policy for POST /auth/register.
func RegisterRateLimit(cfg config.AuthRateLimitConfig) RateLimitPolicy {
	return RateLimitPolicy{Name: "register", Window: cfg.RegisterWindow, IPLimit: cfg.RegisterIPLimit, EmailLimit: cfg.RegisterEmailLimit}
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0)
}

type rateCheck struct {
	dimension string
	subject   string
	limit     int
}

// AuthRateLimit rejects requests past either limit of policy with
// RATE_LIMIT_EXCEEDED and a Retry-After of one window. A nil limiter or a
// disabled policy passes everything through.
func AuthRateLimit(policy RateLimitPolicy, limiter WindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		if limiter == nil || !policy.enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			checks := make([]rateCheck, 0, 2)
			if policy.IPLimit > 0 {
				if ip := clientIP(r); ip != "" {
					checks = append(checks, rateCheck{dimension: "ip", subject: ip, limit: policy.IPLimit})
				}
			}
			if policy.EmailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if email := validators.NormalizeEmail(emailFromBody(body)); email != "" {
					checks = append(checks, rateCheck{dimension: "email", subject: hashValue(email), limit: policy.EmailLimit})
				}
			}

			for _, c := range checks {
				scope := strings.Join([]string{"auth", policy.Name, c.dimension, c.subject}, ":")
				allowed, count, err := limiter.FixedWindowAllow(ctx, scope, int64(c.limit), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":    policy.Name,
						"dimension": c.dimension,
						"attempts":  count,
						"limit":     c.limit,
					}), "auth.rate_limited")
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Round(time.Second).Seconds())))
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many attempts, please try again later"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return ""
	}
	return body.Email
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
