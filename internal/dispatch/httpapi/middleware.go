package httpapi

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ndrandal/quant-gateway/internal/audit"
	"github.com/ndrandal/quant-gateway/internal/gwerrors"
)

// authMiddleware enforces the bearer-token scheme of spec.md §6. Missing
// token yields AUTH_MISSING, a token outside the configured set yields
// AUTH_INVALID; both are compared in constant time against every
// configured token so the check's cost does not leak which prefix
// matched.
func authMiddleware(tokens []string, auditStore *audit.Store, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			reject(c, auditStore, log, gwerrors.New(gwerrors.AuthMissing, "missing Authorization header"))
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			reject(c, auditStore, log, gwerrors.New(gwerrors.AuthInvalid, "malformed Authorization header"))
			return
		}

		if !tokenAllowed(tokens, token) {
			reject(c, auditStore, log, gwerrors.New(gwerrors.AuthInvalid, "unknown token"))
			return
		}
		c.Next()
	}
}

func tokenAllowed(tokens []string, candidate string) bool {
	matched := false
	for _, t := range tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(candidate)) == 1 {
			matched = true
		}
	}
	return matched
}

func reject(c *gin.Context, auditStore *audit.Store, log *zap.SugaredLogger, err *gwerrors.Error) {
	if auditStore != nil {
		auditStore.RecordAuthFailure(c.Request.Context(), "http", c.ClientIP(), err.Message)
	}
	writeError(c, err)
	c.Abort()
}
