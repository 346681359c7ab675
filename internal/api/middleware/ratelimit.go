// ratelimit.go — ограничение частоты запросов по IP клиента.
// Token bucket (golang.org/x/time/rate) на клиента, бакеты живут в
// LRU-кэше с TTL: неактивные клиенты вытесняются автоматически.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	apierrors "github.com/cozyclean/backend/internal/api/errors"
)

// Ёмкость LRU-кэша бакетов: верхняя граница числа одновременно
// отслеживаемых клиентов на инстанс.
const limiterCacheSize = 16384

// rateLimitedTotal — количество запросов, отклонённых лимитером.
var rateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cc_http_rate_limited_total",
		Help: "Количество HTTP-запросов, отклонённых rate limiter'ом",
	},
	[]string{"scope"},
)

// RateLimiter — per-IP ограничитель частоты для группы маршрутов.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
	scope    string
}

// NewRateLimiter создаёт ограничитель: perMinute запросов в минуту
// с каждого IP, burst — допустимый всплеск. scope — имя группы
// маршрутов для метрики (например "global" или "login").
func NewRateLimiter(perMinute, burst int, scope string) *RateLimiter {
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, 10*time.Minute),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		scope:    scope,
	}
}

// limiterFor возвращает бакет клиента, создавая его при первом обращении.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if lim, ok := rl.limiters.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.Add(key, lim)
	return lim
}

// Middleware возвращает HTTP middleware, отклоняющий запросы сверх
// лимита со статусом 429 и заголовком Retry-After.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !rl.limiterFor(key).Allow() {
				rateLimitedTotal.WithLabelValues(rl.scope).Inc()
				// Секунды до пополнения одного токена
				retryAfter := 1
				if rl.limit > 0 {
					retryAfter = int(1 / float64(rl.limit))
				}
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				apierrors.RateLimited(w, "Слишком много запросов, повторите позже")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP извлекает IP клиента из RemoteAddr.
// X-Forwarded-For намеренно не читается: доверять ему можно только
// за собственным reverse proxy, а он у нас снимает заголовок сам.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
