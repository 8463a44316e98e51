package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/rahmadiyan/health-store/api/web"
	"github.com/rahmadiyan/health-store/api/weberr"
	"github.com/rahmadiyan/health-store/rate"
)

// RateLimit rejects clients exceeding their per-IP budget with a 429.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Check(host) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, err.Error(), http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
