package handler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/voicedesk/receptionist-service/pkg/logger"
	"github.com/voicedesk/receptionist-service/pkg/redis"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated caller extracted from the bearer token.
type Identity struct {
	ClerkUserID string
	Email       string
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	return id, ok
}

// ContextWithIdentity attaches an identity to the context. Exposed for
// handler tests.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		logger.Base().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.RequestURI),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

// CORSMiddleware adds CORS headers for the configured frontend origin
func CORSMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware validates the bearer token and attaches the caller
// identity to the request context. Requests without a valid token get 401.
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				sendErrorResponse(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			identity, err := parseIdentityToken(tokenString, secretKey)
			if err != nil {
				logger.Base().Warn("invalid bearer token",
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				sendErrorResponse(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseIdentityToken validates an HS256 token and extracts identity claims.
func parseIdentityToken(tokenString, secretKey string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}
	email, _ := claims["email"].(string)

	return &Identity{ClerkUserID: sub, Email: email}, nil
}

// RateLimiter enforces a fixed-window request limit per client IP. With
// Redis the window is shared across instances; without it a local token
// bucket approximates the same limit in-process.
type RateLimiter struct {
	name     string
	limit    int
	window   time.Duration
	redisSvc redis.ServiceInterface
	local    *rate.Limiter
}

// NewRateLimiter creates a rate limiter for a route group. redisSvc may
// be nil.
func NewRateLimiter(name string, limit int, window time.Duration, redisSvc redis.ServiceInterface) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		name:     name,
		limit:    limit,
		window:   window,
		redisSvc: redisSvc,
		local:    rate.NewLimiter(rate.Limit(float64(limit)/window.Seconds()), limit),
	}
}

// Middleware returns the HTTP middleware enforcing this limiter.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r) {
			logger.Base().Warn("rate limit exceeded",
				zap.String("group", rl.name),
				zap.String("remote_addr", r.RemoteAddr),
			)
			sendErrorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(r *http.Request) bool {
	if rl.redisSvc != nil {
		key := rl.redisSvc.GenerateKey(redis.RATE_LIMIT, rl.name+":"+clientIP(r))
		count, err := rl.redisSvc.IncrWindow(r.Context(), key, rl.window)
		if err == nil {
			return count <= int64(rl.limit)
		}
		logger.Base().Warn("redis rate limit check failed, using local limiter", zap.Error(err))
	}
	return rl.local.Allow()
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
