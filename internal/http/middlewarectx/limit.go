package middlewarectx

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
)

// idleTTL — через сколько без запросов bucket пользователя удаляется.
const idleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter хранит отдельный token bucket на каждого пользователя.
// Запросы без пользователя в контексте делят общий bucket.
// Buckets, простаивающие дольше idleTTL, удаляются при очередном обращении.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rps       rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

// NewRateLimiter создаёт ограничитель с rps запросами в секунду и запасом burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

// Len возвращает количество отслеживаемых пользователей.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= idleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) >= idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Allow сообщает, можно ли выполнить ещё один запрос по ключу.
func (l *RateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

// RateLimitMiddleware отвечает 429, когда пользователь исчерпал лимит.
func RateLimitMiddleware(log *slog.Logger, l *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := UserIDFrom(r.Context())
			if !l.Allow(userID) {
				log.Warn("too many requests", slog.String("user_id", userID), slog.String("path", r.URL.Path))
				response.Fail(w, r, apperr.New(apperr.CodeRateLimited, "Too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
