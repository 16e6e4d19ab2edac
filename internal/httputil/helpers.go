package httputil

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sharepoint-portal/portal-backend/internal/exceptions"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID assigns every request an id, echoing a caller supplied one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// WriteError renders err. ServiceErrors other than internal ones are returned with their message;
// anything else is logged and reported as a generic failure carrying the request id.
func WriteError(c *gin.Context, logger *zap.Logger, err error) {
	requestID := GetRequestID(c)
	if se, ok := exceptions.As(err); ok && se.Kind != exceptions.KindInternal {
		body := gin.H{"error": se.Message}
		if se.Code != "" {
			body["code"] = se.Code
		}
		c.JSON(se.StatusCode, body)
		return
	}

	logger.Error("Request failed",
		zap.String("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":     "internal server error",
		"requestId": requestID,
	})
}

// ParseUUIDParam parses a path parameter or writes a 400.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// IntQuery reads an integer query parameter, falling back to def.
func IntQuery(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
