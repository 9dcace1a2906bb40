package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/barcheckout/internal/api/response"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/barcheckout/internal/util"
)

// NewRateLimitMiddleware 已登入以 user id 限流, 否則以來源 ip 限流
func NewRateLimitMiddleware(limiter ratelimit.ILimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.Context(), rateLimitKey(r)) {
				response.ErrorJSON(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if payload := util.GetTokenPayloadFromContext(r.Context()); payload != nil {
		return "user:" + strconv.FormatInt(payload.UserID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
