package middleware

import (
	"expvar"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HTTPRequests counts finished requests by status class ("2xx", "4xx", ...)
// and is served on /debug/vars.
var HTTPRequests = expvar.NewMap("http_requests")

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		HTTPRequests.Add("total", 1)
		HTTPRequests.Add(strconv.Itoa(c.Writer.Status()/100)+"xx", 1)
	}
}
