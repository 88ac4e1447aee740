package middlewares

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/rasoilabs/rasoipos/utils"
)

// PINRateLimiter slows down PIN guessing on the auth endpoints. One
// shared bucket is enough for a single-counter device: five attempts,
// then one more every twelve seconds.
func PINRateLimiter() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(12*time.Second), 5)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			utils.RespondError(c, http.StatusTooManyRequests,
				errors.New("too many attempts, wait a moment"))
			c.Abort()
			return
		}
		c.Next()
	}
}
