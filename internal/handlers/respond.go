// Package handlers exposes the reconciliation core over a JSON REST API.
// Handlers parse and validate transport concerns only; all business rules
// live in the service layer.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/samantr/randp-backend/internal/apperr"
)

// writeError maps a classified service error onto an HTTP status and a
// JSON body carrying the kind and message.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	var status int
	switch kind {
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Unauthorized:
		status = http.StatusUnauthorized
	case apperr.DuplicateAllocation, apperr.AllocationExists, apperr.HasAttachments,
		apperr.Conflict, apperr.ConflictingDuplicate:
		status = http.StatusConflict
	case apperr.Invalid, apperr.InvalidAmount, apperr.AllocationNotAllowed,
		apperr.OverAllocation, apperr.NotOwned:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		c.JSON(status, gin.H{"error": "internal error", "code": kind.String()})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": kind.String()})
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, apperr.New(apperr.Invalid, "invalid %s: %s", name, c.Param(name)))
		return 0, false
	}
	return id, true
}

// queryID parses an integer query parameter, returning 0 when absent.
func queryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		writeError(c, apperr.New(apperr.Invalid, "invalid %s: %s", name, raw))
		return 0, false
	}
	return id, true
}
