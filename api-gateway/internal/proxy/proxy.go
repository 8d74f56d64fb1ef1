// Package proxy forwards gateway requests to the backing services.
package proxy

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/services/shared/middleware"
)

// hop-by-hop headers are meaningful for a single connection only.
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// To returns a handler that replays the request against serviceURL with the
// same path and query, streaming both bodies.
func To(client *http.Client, serviceURL string) gin.HandlerFunc {
	serviceURL = strings.TrimSuffix(serviceURL, "/")
	return func(c *gin.Context) {
		log := middleware.RequestLogger(c)

		targetURL := serviceURL + c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, c.Request.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create request"})
			return
		}
		req.ContentLength = c.Request.ContentLength
		copyHeaders(req.Header, c.Request.Header)
		if id := c.Writer.Header().Get(middleware.RequestIDHeader); id != "" {
			req.Header.Set(middleware.RequestIDHeader, id)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Error(c.Request.Context(), "proxy request failed", "target", targetURL, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"message": "Service unavailable"})
			return
		}
		defer resp.Body.Close()

		copyHeaders(c.Writer.Header(), resp.Header)
		c.Status(resp.StatusCode)
		if _, err := io.Copy(c.Writer, resp.Body); err != nil {
			log.Warn(c.Request.Context(), "failed to relay response body", "target", targetURL, "error", err)
		}
	}
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if _, hop := hopHeaders[http.CanonicalHeaderKey(key)]; hop {
			continue
		}
		dst.Del(key)
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
