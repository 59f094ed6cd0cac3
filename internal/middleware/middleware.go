package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"taskList/internal/logger"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIdKey contextKey = "request_id"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get("X-Request-ID")
		if requestId == "" {
			requestId = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestId)

		ctx := context.WithValue(r.Context(), RequestIdKey, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIdKey).(string); ok {
		return id
	}
	return ""
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := GetRequestID(r.Context())

		logger.HttpRequestInfo(r, "HTTP_IN: Начало запроса", zap.String("request_id", requestId))

		// httpsnoop сохраняет Flusher/Hijacker исходного writer
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		logLevel := zap.InfoLevel
		if metrics.Code >= 400 && metrics.Code < 500 {
			logLevel = zap.WarnLevel
		} else if metrics.Code >= 500 {
			logLevel = zap.ErrorLevel
		}
		logger.Log(
			logLevel,
			"HTTP_OUT: Завершение запроса",
			zap.String("request_id", requestId),
			zap.Int("status", metrics.Code),
			zap.Int64("bytes_written", metrics.Written),
			zap.Duration("ms", metrics.Duration),
		)
	})
}

// SecurityHeaders запрещает встраивание страницы и сторонние ресурсы
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; base-uri 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

type clientInfo struct {
	count   int
	resetAt time.Time
}

// rateLimiter - фиксированное окно на каждый IP. Истёкшие окна вычищаются
// не чаще раза за окно, иначе карта растёт с каждым новым адресом.
type rateLimiter struct {
	mtx       sync.Mutex
	rpm       int
	window    time.Duration
	now       func() time.Time
	clients   map[string]*clientInfo
	nextSweep time.Time
}

func newRateLimiter(rpm int, window time.Duration, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		rpm:       rpm,
		window:    window,
		now:       now,
		clients:   make(map[string]*clientInfo),
		nextSweep: now().Add(window),
	}
}

// allow учитывает запрос и возвращает остаток, время сброса окна и решение
func (l *rateLimiter) allow(ip string) (remaining int, resetAt time.Time, ok bool) {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	if !now.Before(l.nextSweep) {
		l.sweep(now)
	}

	info, exists := l.clients[ip]
	switch {
	case !exists:
		info = &clientInfo{count: 1, resetAt: now.Add(l.window)}
		l.clients[ip] = info
	case now.After(info.resetAt):
		info.count = 1
		info.resetAt = now.Add(l.window)
	case info.count >= l.rpm:
		return 0, info.resetAt, false
	default:
		info.count++
	}

	return max(l.rpm-info.count, 0), info.resetAt, true
}

func (l *rateLimiter) sweep(now time.Time) {
	for ip, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, ip)
		}
	}
	l.nextSweep = now.Add(l.window)
}

func (l *rateLimiter) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIp(r)
		remaining, resetAt, ok := l.allow(ip)

		if !ok {
			retryAfter := int(resetAt.Sub(l.now()).Seconds())
			logger.Warn("HTTP: Превышен лимит запросов",
				zap.String("client_ip", ip),
				zap.String("request_id", GetRequestID(r.Context())))

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)

			json.NewEncoder(w).Encode(map[string]any{
				"error":       "rate_limit_exceeded",
				"message":     "Слишком много запросов. Попробуйте позже.",
				"retry_after": retryAfter,
				"request_id":  GetRequestID(r.Context()),
			})
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		next.ServeHTTP(w, r)
	})
}

// RateLimit - фиксированное окно в минуту на каждый IP; rpm <= 0 отключает лимит
func RateLimit(rpm int) func(http.Handler) http.Handler {
	if rpm <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return newRateLimiter(rpm, time.Minute, time.Now).handler
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
