package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ndrandal/quant-gateway/internal/gwerrors"
)

// envelope is the one response shape the HTTP surface uses consistently,
// resolving the source ambiguity spec.md §9(c) flags (bare object vs
// wrapped) in favor of always wrapping.
type envelope struct {
	Success bool        `json:"success"`
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Code: "OK", Data: data})
}

// writeError maps the gateway error taxonomy onto HTTP status per spec.md
// §4.7/§7; EMPTY_SYMBOLS gets its own 422 carve-out to match client
// expectations.
func writeError(c *gin.Context, err error) {
	kind := gwerrors.KindOf(err)
	status := statusFor(kind)

	msg := err.Error()
	if ge, ok := err.(*gwerrors.Error); ok {
		msg = ge.Message
	}

	c.JSON(status, envelope{Success: false, Code: kind.String(), Message: msg})
}

func statusFor(kind gwerrors.Kind) int {
	switch kind {
	case gwerrors.AuthMissing, gwerrors.AuthInvalid:
		return http.StatusUnauthorized
	case gwerrors.EmptySymbols:
		return http.StatusUnprocessableEntity
	case gwerrors.InvalidArgument:
		return http.StatusBadRequest
	case gwerrors.FailedPrecondition:
		return http.StatusBadRequest
	case gwerrors.NotFound:
		return http.StatusNotFound
	case gwerrors.SubLimit:
		return http.StatusTooManyRequests
	case gwerrors.UpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
