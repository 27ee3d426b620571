package main

import (
	"net/http"

	"github.com/devphaseX/voltvista-payments/internal/ratelimiter"
)

// rateLimitMiddleware limits initiation endpoints per client address. The
// counter is shared by every route it is attached to.
func (app *application) rateLimitMiddleware() func(http.Handler) http.Handler {
	mw := ratelimiter.NewRateLimit(app.limiterStore, app.rate, ratelimiter.IPKey, app.rateLimitExceededResponse)
	return mw.Handler
}
