package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/bookstore/auth"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const (
	clientSweepInterval = time.Minute
	clientIdleTimeout   = 3 * time.Minute
)

type contextKey int

const requestIDKey contextKey = iota

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				s.serverErrorResponse(w, r, fmt.Errorf("panic: %v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestID propagates an incoming X-Request-ID or assigns a new one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// requireKey rejects requests whose auth.HeaderName credential the service
// does not accept. The body is left unread.
func (s *Server) requireKey(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.Authorize(r.Header.Get(auth.HeaderName)); err != nil {
			s.unauthorizedResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", requestIDFrom(r.Context()),
		)
	})
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimit applies a token bucket per client IP. Idle clients are evicted
// during request handling.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.rps <= 0 {
		return next
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastSweep = time.Now()
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		mu.Lock()
		now := time.Now()
		if now.Sub(lastSweep) > clientSweepInterval {
			for k, c := range clients {
				if now.Sub(c.lastSeen) > clientIdleTimeout {
					delete(clients, k)
				}
			}
			lastSweep = now
		}
		c, found := clients[ip]
		if !found {
			c = &client{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
			clients[ip] = c
		}
		c.lastSeen = now
		allowed := c.limiter.Allow()
		mu.Unlock()

		if !allowed {
			s.rateLimitExceededResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
