package api

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lifeoc/event-relay/app/metrics"
	"github.com/lifeoc/event-relay/app/relay"
)

const requestIDKey = "request_id"

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	if m != nil {
		r.Use(metricsMiddleware(m))
	}

	setupRoutes(r, handler, apiAccessKey, m)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string, m *metrics.Metrics) {
	r.GET("/health", handler.GetHealth)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	inbound := r.Group("/")
	if apiAccessKey != "" {
		inbound.Use(authMiddleware(apiAccessKey))
		slog.Info("Inbound endpoint requires an API key")
	} else {
		slog.Info("Inbound endpoint is open (API_ACCESS_KEY not set)")
	}
	{
		inbound.POST("/events", handler.PostEmail)
		// function URLs post to the root path
		inbound.POST("/", handler.PostEmail)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "Event Relay",
			"version":     handler.version,
			"description": "Publishes flyer images from forwarded emails as Sunday events",
			"endpoints": map[string]string{
				"events":  "/events (POST, HTML email body)",
				"health":  "/health",
				"metrics": "/metrics",
			},
			"api_status": map[string]interface{}{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(relay.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// metricsMiddleware counts every response, including those rejected before
// the relay runs.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveResponse(c.Request.Method, route, c.Writer.Status())
	}
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := apiKeyFrom(c.GetHeader("X-API-Key"), c.GetHeader("Authorization"))

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if !validKey(providedKey, apiAccessKey) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func apiKeyFrom(apiKeyHeader, authorization string) string {
	if apiKeyHeader != "" {
		return apiKeyHeader
	}
	if strings.HasPrefix(authorization, "Bearer ") {
		return strings.TrimPrefix(authorization, "Bearer ")
	}
	return ""
}

func validKey(provided, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
