package api

import (
	"errors"
	"net/http"

	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const unexpectedErrorMessage = "An unexpected error occurred"

// respondWithError maps a service failure onto a status code. Validation and
// conflict failures are both client errors (400); anything uncategorised is
// logged and answered with a generic 500.
func respondWithError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   verr.Error(),
			"details": verr.Details.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		_ = c.Error(err)
		logger.Error("unexpected error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(ContextRequestIDKey)),
			zap.Error(err),
		)
		abortWithError(c, http.StatusInternalServerError, unexpectedErrorMessage)
	}
}

// bindJSON decodes the body, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// paramObjectID parses a hex id path parameter, answering 400 itself on failure.
func paramObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseOptionalObjectID parses an optional hex id from a request body.
func parseOptionalObjectID(s string) (*primitive.ObjectID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseObjectIDOrNil parses a hex id from a request body; an empty string
// yields the nil id, which the service rules report as missing.
func parseObjectIDOrNil(s string) (primitive.ObjectID, error) {
	if s == "" {
		return primitive.NilObjectID, nil
	}
	return primitive.ObjectIDFromHex(s)
}
