package server

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	sumsquares "github.com/chemandante/sum-squares/pkg/sum-squares"
)

// ServiceVersion is the HTTP API version.
const ServiceVersion = "1.0.0"

const requestIDKey = "request_id"

// Handlers contains the HTTP handlers for the decomposition engine.
type Handlers struct {
	engine    *sumsquares.Engine
	maxNumber *big.Int
	logger    *zap.Logger
}

// NewHandlers creates handlers for the given engine. Requests for numbers
// above maxNumber are refused.
func NewHandlers(engine *sumsquares.Engine, maxNumber *big.Int, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{engine: engine, maxNumber: maxNumber, logger: logger}
}

// HandleDecompose handles GET /v1/decompositions/:arity/:n.
//
// Query Parameters:
//
//	verify - "true" adds the Jacobi check (arity 4 only)
//
// Response:
//
//	200 OK: DecompositionResponse
//	400 Bad Request: invalid arity, number or query
//	422 Unprocessable Entity: number above the configured maximum
//	500 Internal Server Error: engine failure
func (h *Handlers) HandleDecompose(c *gin.Context) {
	logger := h.logger.With(zap.String("request_id", c.GetString(requestIDKey)))

	arity, err := sumsquares.ParseArity(c.Param("arity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "arity must be 2, 3 or 4",
			Code:  "INVALID_ARITY",
		})
		return
	}

	n, ok := new(big.Int).SetString(c.Param("n"), 10)
	if !ok || n.Sign() < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Number must be natural, i.e. N >= 1",
			Code:  "INVALID_NUMBER",
		})
		return
	}

	if h.maxNumber != nil && n.Cmp(h.maxNumber) > 0 {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "number exceeds the server limit of " + h.maxNumber.String(),
			Code:  "NUMBER_TOO_LARGE",
		})
		return
	}

	verify := false
	if raw := c.Query("verify"); raw != "" {
		verify, err = strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "verify must be a boolean",
				Code:  "INVALID_QUERY",
			})
			return
		}
		if verify && arity != sumsquares.FourSquares {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "verify is only available for four squares",
				Code:  "INVALID_QUERY",
			})
			return
		}
	}

	result, err := h.engine.Decompose(c.Request.Context(), n, arity)
	if err != nil {
		status, code := statusFor(err)
		logger.Warn("decomposition failed",
			zap.String("n", n.String()),
			zap.Int("arity", int(arity)),
			zap.Error(err))
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	resp := newDecompositionResponse(result)
	resp.Digest = h.engine.Digest(result)
	resp.DigestFunction = h.engine.DigestFunction()

	if verify {
		v, err := h.engine.Verify(result.Number, result.Decompositions)
		if err != nil {
			status, code := statusFor(err)
			c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
			return
		}
		resp.Verification = &VerificationResponse{
			Expected: v.Expected.String(),
			Actual:   v.Actual.String(),
			Complete: v.Complete,
			Sound:    v.Sound,
		}
	}

	logger.Debug("decomposition served",
		zap.String("n", n.String()),
		zap.Int("arity", int(arity)),
		zap.Int("count", resp.Count))
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   ServiceVersion,
		CacheSize: h.engine.CacheSize(),
	})
}

func newDecompositionResponse(r *sumsquares.Result) DecompositionResponse {
	decompositions := make([][]string, len(r.Decompositions))
	for i, d := range r.Decompositions {
		roots := make([]string, len(d))
		for j, x := range d {
			roots[j] = x.String()
		}
		decompositions[i] = roots
	}
	return DecompositionResponse{
		Number:         r.Number.String(),
		Arity:          int(r.Arity),
		Feasible:       r.Feasible,
		Reason:         r.Reason,
		Count:          r.Count(),
		Decompositions: decompositions,
	}
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "CANCELED"
	}
	switch sumsquares.CodeOf(err) {
	case sumsquares.ErrInvalidInput:
		return http.StatusBadRequest, "INVALID_NUMBER"
	case sumsquares.ErrInvalidArity:
		return http.StatusBadRequest, "INVALID_ARITY"
	case sumsquares.ErrIncomplete:
		return http.StatusInternalServerError, "INCOMPLETE"
	case sumsquares.ErrFactorization:
		return http.StatusInternalServerError, "FACTORIZATION_FAILED"
	}
	return http.StatusInternalServerError, "DECOMPOSITION_FAILED"
}

// requestLogger tags every request with an id and logs it when done.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := getOrCreateRequestID(c)
		c.Set(requestIDKey, requestID)

		c.Next()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	}
}

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
