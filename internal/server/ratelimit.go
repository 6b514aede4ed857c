package server

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"storefront/internal/dto"
	"storefront/internal/infrastructure/httpresponse"
)

// NewUploadLimiter lets each client IP make at most requests calls per
// window on the routes it wraps. Extra calls get a 429 error envelope.
func NewUploadLimiter(requests int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("rate limit exceeded", zap.String("client", r.RemoteAddr), zap.String("path", r.URL.Path))
			httpresponse.WriteJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{
				Status:    http.StatusTooManyRequests,
				Code:      "RATE_LIMITED",
				Message:   "rate limit exceeded",
				Timestamp: time.Now().UTC(),
			}, logger)
		}),
	)
}
