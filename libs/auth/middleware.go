package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thinkful-ei-bee/thingful/libs/metrics"
)

const (
	MessageMissingToken = "Missing bearer token"
	MessageUnauthorized = "Unauthorized request"
)

const (
	reasonMissingToken   = "missing_token"
	reasonInvalidToken   = "invalid_token"
	reasonUnknownSubject = "unknown_subject"
	reasonLookupError    = "lookup_error"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Middleware guards the routes it is attached to. A request passes only with a
// well-formed bearer token, a valid HS256 signature under secret and a subject
// that resolves to a user. Bad signatures and unknown subjects share one
// response so callers cannot probe for user names.
func Middleware(secret []byte, users UserFinder, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			reject(c, logger, reasonMissingToken, MessageMissingToken)
			return
		}

		claims, err := ParseJWT(token, secret)
		if err != nil {
			reject(c, logger, reasonInvalidToken, MessageUnauthorized)
			return
		}

		user, err := users.FindByUserName(c.Request.Context(), claims.Subject)
		if err != nil {
			reason := reasonUnknownSubject
			if !errors.Is(err, ErrUserNotFound) {
				reason = reasonLookupError
				logger.Error("user lookup failed", "error", err, "path", c.Request.URL.Path)
			}
			reject(c, logger, reason, MessageUnauthorized)
			return
		}

		c.Set(ContextUserKey, user)
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
		c.Next()
	}
}

func reject(c *gin.Context, logger *slog.Logger, reason, message string) {
	metrics.AuthRejections.WithLabelValues(reason).Inc()
	logger.Warn("request rejected",
		slog.String("reason", reason),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: message})
}
