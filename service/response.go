// SPDX-License-Identifier: MIT

package service

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/katalvlaran/deprisk/riskgraph"
)

// APIError is the body of every failed request.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// errBadRequest marks malformed input detected before the engine is called.
var errBadRequest = errors.New("service: bad request")

// classify maps an engine error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, riskgraph.ErrInvalidHandle):
		return http.StatusNotFound, "invalid_handle"
	case errors.Is(err, riskgraph.ErrDuplicateHandle):
		return http.StatusConflict, "duplicate_handle"
	case errors.Is(err, riskgraph.ErrCapacityExceeded):
		return http.StatusInsufficientStorage, "capacity_exceeded"
	case errors.Is(err, riskgraph.ErrSelfLoopRejected):
		return http.StatusBadRequest, "self_loop"
	case errors.Is(err, riskgraph.ErrInvalidRisk):
		return http.StatusBadRequest, "invalid_risk"
	case errors.Is(err, riskgraph.ErrInvalidWeight):
		return http.StatusBadRequest, "invalid_weight"
	case errors.Is(err, riskgraph.ErrLengthMismatch), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, riskgraph.ErrGateCycle):
		return http.StatusUnprocessableEntity, "gate_cycle"
	case errors.Is(err, riskgraph.ErrArithmeticPrecondition):
		return http.StatusUnprocessableEntity, "arithmetic_precondition"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: err.Error(), Code: code}})
}

// requestLogger logs one line per request, at a level chosen by status.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", strings.ToUpper(c.Request.Method)),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)),
		}
		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		default:
			log.Debug("http request", fields...)
		}
	}
}
